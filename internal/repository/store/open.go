// Package store opens the match repository named by a database URL.
package store

import (
	"io"
	"strings"

	"github.com/freeeve/broadside/internal/repository"
	"github.com/freeeve/broadside/internal/repository/postgres"
	"github.com/freeeve/broadside/internal/repository/sqlite"
)

const sqliteScheme = "sqlite://"

// IsSQLite reports whether url names a SQLite file.
func IsSQLite(url string) bool { return strings.HasPrefix(url, sqliteScheme) }

// Open connects to Postgres, or to a SQLite file for sqlite://<path> URLs.
// The closer releases the connection.
func Open(url string) (repository.MatchRepository, io.Closer, error) {
	if IsSQLite(url) {
		s, err := sqlite.Open(strings.TrimPrefix(url, sqliteScheme))
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	}
	db, err := postgres.Connect(url)
	if err != nil {
		return nil, nil, err
	}
	return postgres.NewMatchRepo(db), db, nil
}
