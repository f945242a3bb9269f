package domain

import "errors"

// Validation errors. Raised before any I/O; recoverable by correcting input.
var (
	ErrValidation     = errors.New("validation failed")
	ErrInvalidVersion = errors.New("invalid semantic version")
	ErrInvalidName    = errors.New("card name is required")
	ErrInvalidTeam    = errors.New("card team is required")
)

// Registration errors.
var (
	ErrOwnershipConflict     = errors.New("name already exists for a different team")
	ErrDuplicateRegistration = errors.New("card has already been registered; use UpdateCard instead")
	ErrTypeMismatch          = errors.New("card type is not supported by this registry")
	ErrVersionConflict       = errors.New("version already exists for this name and team")
	ErrVersionOutOfOrder     = errors.New("supplied version would create a duplicate or out-of-order version")
)

// Artifact errors.
var (
	ErrUnsupportedArtifact = errors.New("no codec registered for artifact type")
	ErrCorruptRecord       = errors.New("registry record references a missing artifact")
)

// Lookup errors.
var (
	ErrNotFound        = errors.New("no card found for the given query")
	ErrAmbiguousResult = errors.New("query matched more than one card")
)
