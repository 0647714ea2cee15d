package service

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"

	"gorm.io/gorm"
)

const maxTxIDAttempts = 5

const (
	txPrefix   = "T"
	txAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	txLength   = 12
)

func randomIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// NewTransactionID returns "T" followed by 11 characters of [A-Z0-9].
func NewTransactionID() (string, error) {
	b := make([]byte, txLength-len(txPrefix))
	for i := range b {
		idx, err := randomIndex(len(txAlphabet))
		if err != nil {
			return "", fmt.Errorf("transaction id: %w", err)
		}
		b[i] = txAlphabet[idx]
	}
	return txPrefix + string(b), nil
}

// retryTxID reruns fn while it fails on a transaction id that is already taken.
func retryTxID(fn func() error) error {
	var err error
	for attempt := 0; attempt < maxTxIDAttempts; attempt++ {
		if err = fn(); !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return err
}

// NewConfirmationCode returns a zero-padded 4-digit code.
func NewConfirmationCode() (string, error) {
	n, err := randomIndex(10000)
	if err != nil {
		return "", fmt.Errorf("confirmation code: %w", err)
	}
	return fmt.Sprintf("%04d", n), nil
}

func codesEqual(stored, given string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}
