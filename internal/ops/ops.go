// Package ops implements the operations shared by the CLI, MCP and web
// surfaces. Every operation takes an Input struct and returns an Output
// struct; collaborators are passed explicitly.
package ops

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/citrus/internal/cache"
	"github.com/hpungsan/citrus/internal/config"
	"github.com/hpungsan/citrus/internal/errors"
	"github.com/hpungsan/citrus/internal/fetch"
	"github.com/hpungsan/citrus/internal/logger"
	"github.com/hpungsan/citrus/internal/normalize"
)

// Search limits
const (
	MaxSearchLimit = 50
)

// Fetcher is the upstream surface used by the lookup operations.
// *fetch.Client implements it.
type Fetcher interface {
	Search(ctx context.Context, query string, pageSize int) ([]byte, error)
	LookupEAN(ctx context.Context, ean string) ([]byte, error)
	LookupEANXML(ctx context.Context, ean string) ([]byte, error)
	Estimate(ctx context.Context, text string) (string, error)
}

// Service bundles the collaborators of the lookup operations.
// Cache may be nil.
type Service struct {
	Fetcher    Fetcher
	Normalizer *normalize.Normalizer
	Cache      *cache.Cache
	Log        *logger.Logger
	PageSize   int
}

// NewService wires a Service from configuration.
func NewService(cfg *config.Config, c *cache.Cache, log *logger.Logger) (*Service, error) {
	policy, err := normalize.ParseMissingUnit(cfg.UnitFallback)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		Fetcher:    fetch.NewFromConfig(cfg, log),
		Normalizer: normalize.New(normalize.Options{MissingUnit: policy}),
		Cache:      c,
		Log:        log,
		PageSize:   cfg.SearchPageSize,
	}, nil
}

func (s *Service) logger() *logger.Logger {
	if s.Log == nil {
		return logger.Nop()
	}
	return s.Log
}

// soften turns a soft error into a Reason. Any other error is returned.
func (s *Service) soften(op string, err error) (string, error) {
	if errors.IsSoft(err) {
		s.logger().Warn("%s: %v", op, err)
		return string(errors.CodeOf(err)), nil
	}
	return "", err
}

// newID generates a new ULID for a log entry.
func newID(now time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}
