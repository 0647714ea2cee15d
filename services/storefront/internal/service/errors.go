package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
)

// detailError carries a client-facing message and unwraps to its kind.
type detailError struct {
	kind error
	msg  string
}

func (e *detailError) Error() string { return e.msg }
func (e *detailError) Unwrap() error { return e.kind }

func validation(msg string) error { return &detailError{kind: ErrValidation, msg: msg} }
func notFound(what string) error  { return &detailError{kind: ErrNotFound, msg: what + " not found"} }

var (
	ErrEmptyBasket   = validation("basket is empty")
	ErrCardDeclined  = validation("card declined")
	ErrInvalidCode   = validation("invalid code")
	ErrBasketMissing = notFound("basket")
	ErrOrderNotFound = notFound("order")
	ErrItemNotFound  = notFound("basket item")
)

// FieldErrors maps request fields to problems with them.
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

func (fe FieldErrors) errOrNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}
