// Package sources defines where opportunities come from: a built-in demo
// catalog, JSON files, and remote HTTP feeds. Every source yields plain
// model.Opportunity records; enrichment and storage happen downstream.
package sources

import (
	"context"

	"github.com/curata/curata/internal/domain/model"
)

// Source is a common interface for opportunity discovery, abstracting away
// the details of where and how records are fetched.
type Source interface {
	// Name identifies the source in logs and on fetched records.
	Name() string

	// Fetch returns the source's current batch of opportunities.
	Fetch(ctx context.Context) ([]model.Opportunity, error)
}
