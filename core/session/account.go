package session

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrAccountExists   = errors.New("an account with this email already exists")
	ErrAccountNotFound = errors.New("account not found")
	ErrProfileNotFound = errors.New("profile not found")
)

// Account is a locally stored sign-in identity, used by gateways without a managed auth service.
type Account struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

type AccountRepository interface {
	// CreateAccount stores the account and its profile together.
	CreateAccount(ctx context.Context, acc Account, prof Profile) (Account, error)
	GetAccountByEmail(ctx context.Context, email string) (Account, error)
	GetAccount(ctx context.Context, id string) (Account, error)
	SetPassword(ctx context.Context, id string, hash []byte) error
}
