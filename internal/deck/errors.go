package deck

import "errors"

var (
	ErrMissingLeader   = errors.New("deck has no leader")
	ErrUnknownLeader   = errors.New("unknown leader")
	ErrInvalidEncoding = errors.New("invalid deck code")
	ErrNoCatalog       = errors.New("codec has no catalog")
)
