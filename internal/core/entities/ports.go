package entities

import "context"

// AreaLookup resolves region ids overlapping a genomic interval.
type AreaLookup interface {
	ByArea(ctx context.Context, a Area) ([]int32, error)
}

// CanonicalResolver maps a user-supplied, possibly messy identifier to the
// assembly id it names, trying progressively looser matches. Grounded on
// go.rs::canonical_id's four-step cascade.
type CanonicalResolver interface {
	ResolveAssembly(ctx context.Context, sanitisedID string) (assemblyID string, ok bool, err error)
}

// TreeBrowser expands one taxonomy tree node into its children.
type TreeBrowser interface {
	Children(ctx context.Context, step TreeStep) ([]TreeNode, error)
}

// StatsSource computes the landing-page summary.
type StatsSource interface {
	Stats(ctx context.Context) (Stats, error)
}
