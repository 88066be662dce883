package metadata

import (
	"context"
)

// Repository is a small key/value store for client-side state.
//
// Get returns (nil, nil) for a missing key. SetMany and Delete touch all
// their keys atomically: either every key is written/removed or none is.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
