package repositories

import "errors"

// ErrNotFound is wrapped by every repository lookup that matched no row.
// Services translate it into the matching domain error.
var ErrNotFound = errors.New("record not found")
