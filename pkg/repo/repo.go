// Package repo provides a generic Neo4j-backed node repository.
package repo

import "context"

// Repository reads and removes nodes of one label.
type Repository[T any, ID comparable] interface {
	Get(ctx context.Context, id ID) (T, error)
	List(ctx context.Context, opts ListOpts) ([]T, error)
	Delete(ctx context.Context, id ID) error
}

// ListOpts pages List results.
type ListOpts struct {
	Offset int
	Limit  int
}
