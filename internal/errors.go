package internal

import (
	"errors"
	"robokassa/entity"
)

var (
	// ErrConfiguration is returned for an unknown hash algorithm or missing merchant settings.
	ErrConfiguration = errors.New("configuration error")

	// ErrValidation is returned for input the gateway would reject, such as an overlong SMS.
	ErrValidation = entity.ErrValidation
)
