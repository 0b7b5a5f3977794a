// Package repository handles all interactions with PostgreSQL and Redis.
//
// It contains the raw SQL queries and the methods to fetch, persist or
// update data, keeping SQL away from the service layer. Row-not-found is
// reported as a wrapped pgx.ErrNoRows carrying a "table:<name>:" marker,
// which sqlerr.HandleError turns into a named 404.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ErrUnchanged is returned by an update callback to skip the write.
var ErrUnchanged = errors.New("repository: no changes")

func notFound(table string) error {
	return fmt.Errorf("table:%s: %w", table, pgx.ErrNoRows)
}

// wrapNoRows attaches the table marker when err is pgx.ErrNoRows.
func wrapNoRows(err error, table string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound(table)
	}
	return err
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// likePattern escapes LIKE metacharacters and wraps q in %.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(q)) + "%"
}
