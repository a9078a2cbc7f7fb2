package domain

import "errors"

// Sentinel errors used across layers. Operations that return one of these
// leave the progression state exactly as it was.
var (
	ErrRecipeNotFound       = errors.New("recipe not found")
	ErrContentUnavailable   = errors.New("instructions not available")
	ErrInvalidNavigation    = errors.New("invalid stage navigation")
	ErrCorruptSession       = errors.New("saved session unreadable")
	ErrNoBake               = errors.New("no bake in progress")
	ErrBakeInProgress       = errors.New("a bake is already in progress")
	ErrBakeFinished         = errors.New("bake already finished")
	ErrConfirmationRequired = errors.New("confirmation required")
)
