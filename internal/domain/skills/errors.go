package skills

import "errors"

// Sentinel kinds for relation table errors.
var (
	ErrInvalidRelation   = errors.New("invalid skill relation")
	ErrDuplicateRelation = errors.New("duplicate skill relation")
	ErrLoadRelations     = errors.New("load skill relations failed")
)
