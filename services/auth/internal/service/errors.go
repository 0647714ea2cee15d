package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrValidation          = errors.New("validation")          // 400
	ErrInvalidCredentials  = errors.New("invalid credentials") // 401
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrInvalidOTP          = errors.New("invalid otp") // 400
	ErrNotFound            = errors.New("not found")   // 404
	ErrConflict            = errors.New("conflict")    // 409
)

type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return strings.Join(parts, "; ")
}

func (fe FieldErrors) Unwrap() error { return ErrValidation }
