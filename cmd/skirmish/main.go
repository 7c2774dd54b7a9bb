package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freeeve/broadside/internal/repository"
	redisrepo "github.com/freeeve/broadside/internal/repository/redis"
	"github.com/freeeve/broadside/internal/repository/store"
	"github.com/freeeve/broadside/internal/sim"
	"github.com/freeeve/broadside/pkg/tactics"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	var (
		scenario    string
		numMatches  int
		workers     int
		dbURL       string
		redisURL    string
		follow      string
		tacticsPath string
		maxSeconds  float64
		seed        int64
		openArena   bool
		dryRun      bool
		jsonOut     bool
		list        bool
	)

	flag.StringVar(&scenario, "scenario", "skirmish", "Built-in scenario or fleet string (e.g. red=2 frigate,cruiser;blue=battleship)")
	flag.IntVar(&numMatches, "n", 1, "Number of matches to run")
	flag.IntVar(&workers, "workers", 1, "Concurrency (parallel matches)")
	flag.StringVar(&dbURL, "db", "", "Database URL, postgres:// or sqlite://<path> (or use DATABASE_URL env)")
	flag.StringVar(&redisURL, "redis", "", "Redis URL for -follow (or use REDIS_URL env)")
	flag.StringVar(&follow, "follow", "", "Wait for a server match to finish and print its result")
	flag.StringVar(&tacticsPath, "tactics", "", "Tactics document (YAML or JSON)")
	flag.Float64Var(&maxSeconds, "max-seconds", 300, "Simulated seconds before a draw")
	flag.Int64Var(&seed, "seed", 0, "Base seed (0 = random)")
	flag.BoolVar(&openArena, "open", false, "Arena without obstacles")
	flag.BoolVar(&dryRun, "dry-run", false, "Skip database writes")
	flag.BoolVar(&jsonOut, "json", false, "Output results as JSON")
	flag.BoolVar(&list, "list", false, "List built-in scenarios and exit")

	flag.Parse()

	if list {
		for _, name := range sim.BuiltinScenarios() {
			sc, _ := sim.ParseScenario(name)
			fmt.Printf("  %-10s %s\n", name, sc.String())
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	if follow != "" {
		if redisURL == "" {
			redisURL = os.Getenv("REDIS_URL")
		}
		if err := followMatch(ctx, redisURL, follow); err != nil {
			log.Fatal().Err(err).Str("matchId", follow).Msg("Follow failed")
		}
		return
	}

	sc, err := sim.ParseScenario(scenario)
	if err != nil {
		log.Fatal().Err(err).Msg("Bad scenario")
	}

	tcfg, err := tactics.Load(tacticsPath)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load tactics document, using defaults")
	}

	// Resolve DB URL
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		dbURL = "sqlite://skirmish.db"
	}

	// Connect to DB (unless dry-run)
	var repo repository.MatchRepository
	if !dryRun {
		r, closer, err := store.Open(dbURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Database connection failed")
		}
		defer closer.Close()
		repo = r
	}

	// Run matches
	results := make([]*sim.MatchResult, numMatches)
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, max(workers, 1))
	errCount := 0
	start := time.Now()

	for i := 0; i < numMatches; i++ {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			matchSeed := seed
			if seed != 0 {
				matchSeed = seed + int64(idx)
			}

			cfg := sim.ArenaConfig{
				Name:       fmt.Sprintf("%s-%d", sc.Name, idx+1),
				Scenario:   scenario,
				Seed:       matchSeed,
				MaxSeconds: maxSeconds,
				OpenArena:  openArena,
				DryRun:     dryRun,
			}

			result, err := sim.RunMatch(ctx, cfg, tcfg, repo, nil)
			if err != nil {
				log.Error().Err(err).Int("match", idx+1).Msg("Match failed")
				mu.Lock()
				errCount++
				mu.Unlock()
				return
			}

			mu.Lock()
			results[idx] = result
			mu.Unlock()

			log.Info().Int("match", idx+1).Str("winner", result.Winner).Float64("seconds", result.Seconds).Int("ticks", result.Ticks).Msg("Match completed")
		}(i)
	}

	wg.Wait()

	if jsonOut {
		printJSON(os.Stdout, results, numMatches, errCount)
	} else {
		printSummary(os.Stdout, results, sc, maxSeconds, errCount, time.Since(start))
		if !dryRun {
			fmt.Printf("\nMatches saved to %s\n", dbURL)
		}
	}
}

// followMatch blocks until the server publishes the result of a match.
func followMatch(ctx context.Context, redisURL, matchID string) error {
	if redisURL == "" {
		return fmt.Errorf("-follow needs a redis URL")
	}
	client, err := redisrepo.NewClient(redisURL)
	if err != nil {
		return err
	}
	defer client.Close()

	events, err := client.Subscribe(ctx, matchID)
	if err != nil {
		return err
	}
	log.Info().Str("matchId", matchID).Msg("Waiting for match result")
	for ev := range events {
		var env struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(ev, &env); err != nil {
			continue
		}
		if env.Type == "match_finished" {
			fmt.Println(string(env.Data))
			return nil
		}
	}
	return ctx.Err()
}

type teamStats struct {
	wins      int
	survivors int
}

func printSummary(w io.Writer, results []*sim.MatchResult, sc *sim.Scenario, maxSeconds float64, errCount int, elapsed time.Duration) {
	byTeam := make(map[string]*teamStats)
	for _, t := range sc.Teams {
		byTeam[t.Name] = &teamStats{}
	}

	completed, draws, stopped := 0, 0, 0
	var decisions, retargets, ticks int64
	var seconds float64
	for _, r := range results {
		if r == nil {
			continue
		}
		completed++
		decisions += int64(r.Decisions)
		retargets += int64(r.Retargets)
		ticks += int64(r.Ticks)
		seconds += r.Seconds
		switch {
		case r.Status == "stopped":
			stopped++
		case r.Winner == "":
			draws++
		default:
			if s, ok := byTeam[r.Winner]; ok {
				s.wins++
			}
		}
		for team, n := range r.Survivors {
			if s, ok := byTeam[team]; ok {
				s.survivors += n
			}
		}
	}

	fmt.Fprintf(w, "\nResults (%d matches of %s, max %.0fs):\n", completed, sc.String(), maxSeconds)
	if errCount > 0 {
		fmt.Fprintf(w, "  (%d matches failed)\n", errCount)
	}
	if stopped > 0 {
		fmt.Fprintf(w, "  (%d matches stopped)\n", stopped)
	}

	names := make([]string, 0, len(byTeam))
	for name := range byTeam {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := byTeam[name]
		avg := 0.0
		if completed > 0 {
			avg = float64(s.survivors) / float64(completed)
		}
		fmt.Fprintf(w, "  %-10s %d wins  -- avg survivors: %.1f\n", name, s.wins, avg)
	}
	fmt.Fprintf(w, "  %-10s %d\n", "draws", draws)

	if completed > 0 {
		fmt.Fprintf(w, "\n  %s ticks, %s decisions, %s retargets, avg %.1fs simulated\n",
			humanize.Comma(ticks), humanize.Comma(decisions), humanize.Comma(retargets), seconds/float64(completed))
	}
	fmt.Fprintf(w, "  wall time %s\n", elapsed.Round(time.Millisecond))
}

func printJSON(w io.Writer, results []*sim.MatchResult, total, errCount int) {
	out := struct {
		Total   int                `json:"total"`
		Errors  int                `json:"errors"`
		Results []*sim.MatchResult `json:"results"`
	}{
		Total:   total,
		Errors:  errCount,
		Results: results,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(out)
}
