package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// Sentinel errors mapped to HTTP statuses by the handlers package.
var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("not allowed")
	ErrInvalidTransition   = errors.New("invalid state transition")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrValidation          = errors.New("validation failed")
	ErrConflict            = errors.New("conflict")
)

// TxBeginner starts database transactions. Satisfied by *pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// notFound normalizes pgx's no-rows error into the service sentinel.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
