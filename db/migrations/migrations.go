// Package migrations embeds the schema so binaries can apply it without
// shipping SQL files alongside.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

//go:embed *.sql
var files embed.FS

type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Up applies every *.up.sql file in name order. Scripts are idempotent.
func Up(ctx context.Context, db Execer) ([]string, error) {
	names, err := list(".up.sql")
	if err != nil {
		return nil, err
	}
	return names, apply(ctx, db, names)
}

// Down applies every *.down.sql file in reverse name order.
func Down(ctx context.Context, db Execer) ([]string, error) {
	names, err := list(".down.sql")
	if err != nil {
		return nil, err
	}
	slices.Reverse(names)
	return names, apply(ctx, db, names)
}

func list(suffix string) ([]string, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), suffix) {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

func apply(ctx context.Context, db Execer, names []string) error {
	for _, name := range names {
		body, err := files.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := db.Exec(ctx, string(body)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	return nil
}
