package storage

import (
	"context"
	"errors"
)

// Keys owned by the session store. No other component reads or writes them.
const (
	KeyAuthToken = "auth_token"
	KeyUserData  = "user_data"
)

// KeyCart is owned by the cart store.
const KeyCart = "cart"

var ErrKeyNotFound = errors.New("key not found")

// Storage is the persisted key/value state of the client process. It is what
// survives a reload: the session token, the user record, and the cart
// snapshot. Each store owns its keys exclusively.
type Storage interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any resources held by the backend.
	Close() error
}
