package catalog

import "errors"

// ErrInvalidServiceSelection is returned when a quote request is empty or
// names a service that does not exist or is inactive.
var ErrInvalidServiceSelection = errors.New("invalid service selection")

// ErrServiceNotFound is returned when a service lookup by id fails.
var ErrServiceNotFound = errors.New("service not found")

// ErrPromotionNotFound is returned when a promotion lookup by id fails.
var ErrPromotionNotFound = errors.New("promotion not found")
