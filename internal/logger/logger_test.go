package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func captureGlobal(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := log.Logger
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestNewRequestID(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := NewRequestID()
		if len(id) != 8 {
			t.Fatalf("expected 8 characters, got %q", id)
		}
		seen[id] = true
	}
	if len(seen) < 95 {
		t.Errorf("request ids should rarely collide, got %d distinct of 100", len(seen))
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc12345")
	if got := RequestIDFromContext(ctx); got != "abc12345" {
		t.Errorf("expected abc12345, got %q", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty id, got %q", got)
	}
}

func TestForRequestAndMatch(t *testing.T) {
	buf := captureGlobal(t)

	l := ForRequest(WithRequestID(context.Background(), "req00001"))
	l.Info().Msg("hello")
	if !strings.Contains(buf.String(), `"requestId":"req00001"`) {
		t.Errorf("request logger missing id: %s", buf.String())
	}

	buf.Reset()
	m := ForMatch("match-7")
	m.Info().Msg("tick")
	if !strings.Contains(buf.String(), `"matchId":"match-7"`) {
		t.Errorf("match logger missing id: %s", buf.String())
	}
}

func TestLogRequestTruncates(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf).Level(zerolog.DebugLevel)
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	LogRequest(l, bytes.Repeat([]byte("x"), 1500))
	if !strings.Contains(buf.String(), `"truncated":true`) {
		t.Errorf("expected a truncated body log, got %s", buf.String())
	}
}
