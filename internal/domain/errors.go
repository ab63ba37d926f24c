package domain

import "errors"

// ErrInvalidRepository is returned for repository input that cannot be skipped,
// such as a repository without a name.
var ErrInvalidRepository = errors.New("invalid repository")
