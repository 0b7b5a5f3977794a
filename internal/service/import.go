package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/deppfellow/storefront/internal/metrics"
	"github.com/deppfellow/storefront/internal/model"
	"github.com/deppfellow/storefront/internal/validation"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// maxImportErrors caps the error messages kept in an ImportResult.
const maxImportErrors = 100

// ImportService bulk-upserts products by slug. Work is split into fixed
// size chunks with a fixed pause between them to keep load on the database
// predictable.
type ImportService struct {
	products  ProductStore
	chunkSize int
	delay     time.Duration
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewImportService(products ProductStore, chunkSize int, delay time.Duration, logger *zerolog.Logger) *ImportService {
	return &ImportService{products: products, chunkSize: chunkSize, delay: delay, logger: logger, now: time.Now}
}

// ImportFile reads a JSON array of products from path and imports it.
func (s *ImportService) ImportFile(ctx context.Context, path string) (*model.ImportResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	var inputs []model.ProductInput
	if err := json.Unmarshal(raw, &inputs); err != nil {
		return nil, fmt.Errorf("failed to decode import file %s: %w", path, err)
	}
	return s.Import(ctx, inputs)
}

// Import validates every input, then upserts the valid ones chunk by chunk.
// On cancellation it returns the counts so far together with ctx.Err().
func (s *ImportService) Import(ctx context.Context, inputs []model.ProductInput) (*model.ImportResult, error) {
	res := &model.ImportResult{}
	now := s.now()

	products := make([]*model.Product, 0, len(inputs))
	for i := range inputs {
		in := &inputs[i]
		if err := in.Validate(); err != nil {
			msg, _ := validation.ExtractValidationError(err)
			s.fail(res, i, in.Name, msg)
			continue
		}
		p := newProduct(in, now)
		if p.Slug == "" {
			s.fail(res, i, in.Name, "name does not produce a usable slug")
			continue
		}
		products = append(products, p)
	}

	chunks := 0
	err := inChunks(ctx, products, s.chunkSize, s.delay, func(chunk []*model.Product) error {
		chunks++
		created, updated, err := s.products.UpsertBatch(ctx, chunk)
		if err == nil {
			res.Created += created
			res.Updated += updated
			return nil
		}

		// One bad row fails the whole batch; retry row by row to isolate it.
		s.logger.Warn().Err(err).Int("chunk", chunks).Msg("batch upsert failed, retrying per product")
		for _, p := range chunk {
			inserted, err := s.products.Upsert(ctx, p)
			if err != nil {
				s.fail(res, -1, p.Slug, err.Error())
				continue
			}
			if inserted {
				res.Created++
			} else {
				res.Updated++
			}
		}
		return ctx.Err()
	})

	metrics.RecordImport(res.Created, res.Updated, res.Failed)
	s.logger.Info().
		Int("total", len(inputs)).
		Int("chunks", chunks).
		Int("created", res.Created).
		Int("updated", res.Updated).
		Int("failed", res.Failed).
		Msg("product import finished")

	return res, err
}

func (s *ImportService) fail(res *model.ImportResult, index int, name, msg string) {
	res.Failed++
	if len(res.Errors) >= maxImportErrors {
		return
	}
	if index >= 0 {
		res.Errors = append(res.Errors, fmt.Sprintf("item %d (%s): %s", index, name, msg))
		return
	}
	res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", name, msg))
}
