package cards

import "errors"

var (
	ErrNotFound       = errors.New("card not found")
	ErrDuplicateCard  = errors.New("duplicate card id")
	ErrInvalidCatalog = errors.New("invalid catalog")
	ErrNetwork        = errors.New("catalog unavailable")
)
