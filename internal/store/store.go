// Package store answers the one question the tree view asks of the dataset:
// which divisions hang directly under a given division.
package store

import (
	"log/slog"

	"github.com/agentic-research/divtree/internal/division"
	"github.com/agentic-research/divtree/internal/logger"
)

// RootID is the parent id that selects root divisions.
const RootID = ""

// Store is the backing store for the tree view.
//
// ChildrenOf returns every division whose parent is parentID, or every root
// when parentID is RootID. Results are unordered. Each division carries a
// precomputed HasChildren flag. An unknown or dangling id yields an empty
// result, not an error.
type Store interface {
	ChildrenOf(parentID string) ([]*division.Division, error)
	Close() error
}

// Option configures a store.
type Option func(*options)

type options struct {
	table    string
	resolver *division.Resolver
	log      *slog.Logger
}

// WithTable sets the divisions table name (default "divisions").
func WithTable(name string) Option {
	return func(o *options) { o.table = name }
}

// WithResolver names returned divisions with r.
func WithResolver(r *division.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithLogger sets the logger used for data anomalies.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{table: DefaultTable}
	for _, fn := range opts {
		fn(&o)
	}
	o.log = logger.Or(o.log)
	if o.resolver == nil {
		o.resolver = division.NewResolver(division.DefaultLocale, o.log)
	}
	return o
}

func (o options) divisionOpts() []division.Option {
	return []division.Option{division.WithResolver(o.resolver)}
}
