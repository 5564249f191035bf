// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios: for
// example, ErrContentNotFound signals that an identifier resolved to
// nothing.
package repository

import "errors"

// ErrContentNotFound is returned when no content row matches the given
// internal identifier or secure alias. Handlers should translate this
// into an HTTP 404 response.
var ErrContentNotFound = errors.New("content not found")

// ErrContentExists is returned when a content row with the same internal
// id or alias has already been registered. Handlers should translate this
// into an HTTP 409 response.
var ErrContentExists = errors.New("content already exists")

// ErrDuplicatePurchase is returned when a redemption has already been
// recorded for the same access token. Handlers may treat this as
// success since recording is idempotent for a given token.
var ErrDuplicatePurchase = errors.New("purchase already recorded")
