package service

import (
	"context"
	"time"

	"github.com/deppfellow/storefront/internal/errs"
	"github.com/deppfellow/storefront/internal/lib/utils"
	"github.com/deppfellow/storefront/internal/repository"
)

// notFoundAs turns a repository miss into a 404 with message; other errors
// pass through to the global error handler.
func notFoundAs(err error, message string) error {
	if repository.IsNotFound(err) {
		return errs.NewNotFoundError(message, true, nil)
	}
	return err
}

// inChunks calls fn for consecutive chunks of items and waits delay between
// chunks. It stops at the first error or when ctx is done.
func inChunks[T any](ctx context.Context, items []T, size int, delay time.Duration, fn func(chunk []T) error) error {
	for i, chunk := range utils.Chunk(items, size) {
		if i > 0 && delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}

func isNotFound(err error) bool {
	return repository.IsNotFound(err)
}
