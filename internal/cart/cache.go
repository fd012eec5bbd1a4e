package cart

import (
	"context"
	"errors"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache remembers which cart belongs to a user. An entry can outlive the store
// that issued it, so the service drops any entry the store no longer honors.
type Cache interface {
	Get(ctx context.Context, userID string) (Cart, error)
	Set(ctx context.Context, c Cart) error
	Delete(ctx context.Context, userID string) error
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) (Cart, error) { return Cart{}, ErrCacheMiss }
func (nopCache) Set(context.Context, Cart) error           { return nil }
func (nopCache) Delete(context.Context, string) error      { return nil }
