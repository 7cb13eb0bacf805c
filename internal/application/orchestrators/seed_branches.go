package orchestrators

import (
	"context"
	"log/slog"

	"gymportal/internal/domain/branch"
)

// BranchStoreForSeed defines the store interface needed by SeedBranches.
type BranchStoreForSeed interface {
	Count(ctx context.Context) (int, error)
	Save(ctx context.Context, b branch.Branch) error
}

// SeedBranchesDeps holds dependencies for SeedBranches.
type SeedBranchesDeps struct {
	Branches BranchStoreForSeed
	// Defaults overrides branch.Defaults when non-empty.
	Defaults []branch.Branch
}

// ExecuteSeedBranches inserts the default branches into an empty table.
// POST: Returns how many branches were inserted (0 when any already existed)
func ExecuteSeedBranches(ctx context.Context, deps SeedBranchesDeps) (int, error) {
	n, err := deps.Branches.Count(ctx)
	if err != nil {
		return 0, persistenceError("count branches", err)
	}
	if n > 0 {
		return 0, nil
	}

	defaults := deps.Defaults
	if len(defaults) == 0 {
		defaults = branch.Defaults
	}
	for _, b := range defaults {
		if err := b.Validate(); err != nil {
			return 0, err
		}
		if err := deps.Branches.Save(ctx, b); err != nil {
			return 0, persistenceError("save branch", err)
		}
	}
	slog.Info("branches_seeded", "count", len(defaults))
	return len(defaults), nil
}
