package models

import "errors"

// Sentinel errors shared across stores, services, and handlers. Handlers map
// these onto 4xx responses; anything else is a 5xx.
var (
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrOwnerNotFound      = errors.New("owner not found")
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrBlobNotFound       = errors.New("blob not found")
	ErrNotOwner           = errors.New("caller does not own this recipe")
)
