package store

import (
	domainerrors "github.com/pagetree/pagetree/internal/errors"
)

// Sentinel errors shared by every NodeStore backend.
// They carry domain codes, so errors.Is matches any error with the same code.
var (
	// ErrNotFound is returned when no node has the requested ID or slug.
	ErrNotFound = domainerrors.NotFoundf("node not found")

	// ErrAlreadyExists is returned when a write would duplicate a full slug
	// within a model.
	ErrAlreadyExists = domainerrors.AlreadyExistsf("full slug already in use")
)
