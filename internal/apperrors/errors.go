package apperrors

import "errors"

var ErrNotFound = errors.New("resource not found")
var ErrInsufficientInventory = errors.New("not enough tickets available")
var ErrInvalidInput = errors.New("invalid input")
var ErrForbidden = errors.New("operation is forbidden for user")
var ErrConflict = errors.New("invalid state transition")
var ErrUnauthorized = errors.New("user is not authorized")
