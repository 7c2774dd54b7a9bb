package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/freeeve/broadside/internal/sim"
)

func TestPrintSummary(t *testing.T) {
	sc, err := sim.ParseScenario("duel")
	if err != nil {
		t.Fatal(err)
	}
	results := []*sim.MatchResult{
		{Status: "finished", Winner: "red", Ticks: 1200, Decisions: 1500, Retargets: 3, Seconds: 60, Survivors: map[string]int{"red": 1}},
		{Status: "finished", Winner: "", Ticks: 6000, Decisions: 200, Seconds: 300, Survivors: map[string]int{"red": 1, "blue": 1}},
		nil,
	}

	var buf bytes.Buffer
	printSummary(&buf, results, sc, 300, 1, 2*time.Second)
	out := buf.String()

	for _, want := range []string{
		"Results (2 matches of red=cruiser;blue=cruiser, max 300s)",
		"(1 matches failed)",
		"red        1 wins",
		"blue       0 wins",
		"draws      1",
		"7,200 ticks, 1,700 decisions",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	printJSON(&buf, []*sim.MatchResult{{MatchID: "m1", Winner: "blue"}}, 1, 0)

	var out struct {
		Total   int `json:"total"`
		Results []struct {
			MatchID string
			Winner  string
		} `json:"results"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Total != 1 || len(out.Results) != 1 || out.Results[0].Winner != "blue" {
		t.Errorf("unexpected output: %+v", out)
	}
}
