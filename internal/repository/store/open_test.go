package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/freeeve/broadside/internal/model"
)

func TestIsSQLite(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"sqlite:///tmp/x.db", true},
		{"sqlite://matches.db", true},
		{"postgres://localhost/broadside", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsSQLite(tt.url); got != tt.want {
			t.Errorf("IsSQLite(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.db")
	repo, closer, err := Open("sqlite://" + path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer closer.Close()

	ctx := context.Background()
	m := &model.Match{ID: "8a0e7f5c-1111-4222-8333-944455556666", Name: "duel", Scenario: "red=cruiser;blue=cruiser"}
	if err := repo.Create(ctx, m); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := repo.FindByID(ctx, m.ID)
	if err != nil || got == nil {
		t.Fatalf("find: %v %v", got, err)
	}
}
