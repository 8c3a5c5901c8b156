// Package storage persists cart and wishlist collections in a key-value
// substrate.
package storage

import (
	"context"
	"fmt"

	apperrors "github.com/bhaveshburad729/tronix365-E-commerse-sub000/pkg/errors"
)

// Fixed collection keys, one per store.
const (
	CartKey     = "tronix365_cart"
	WishlistKey = "tronix365_wishlist"
)

// KV is a durable key-value substrate. Get returns an error wrapping
// apperrors.ErrNotFound when key is absent.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Ping(ctx context.Context) error
}

// SessionKey namespaces a collection key under a session.
func SessionKey(sessionID, name string) string {
	return "session:" + sessionID + ":" + name
}

func notFound(key string) error {
	return fmt.Errorf("key %q: %w", key, apperrors.ErrNotFound)
}
