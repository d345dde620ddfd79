package inmemdb

import (
	"context"
	"strings"

	"github.com/ministerio-jovenes/asistencia/core/session"
)

type accountRepository struct {
	db *DB
}

var (
	_ session.AccountRepository = (*accountRepository)(nil) // interface compliance check
	_ session.ProfileRepository = (*accountRepository)(nil)
)

func NewAccountRepository(db *DB) *accountRepository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) CreateAccount(_ context.Context, acc session.Account, prof session.Profile) (session.Account, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, existing := range repo.db.accounts {
		if strings.EqualFold(existing.Email, acc.Email) {
			return session.Account{}, session.ErrAccountExists
		}
	}
	prof.ID = acc.ID
	repo.db.accounts[acc.ID] = acc
	repo.db.profiles[acc.ID] = prof
	return acc, nil
}

func (repo *accountRepository) GetAccountByEmail(_ context.Context, email string) (session.Account, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, acc := range repo.db.accounts {
		if strings.EqualFold(acc.Email, email) {
			return acc, nil
		}
	}
	return session.Account{}, session.ErrAccountNotFound
}

func (repo *accountRepository) GetAccount(_ context.Context, id string) (session.Account, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if acc, ok := repo.db.accounts[id]; ok {
		return acc, nil
	}
	return session.Account{}, session.ErrAccountNotFound
}

func (repo *accountRepository) SetPassword(_ context.Context, id string, hash []byte) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	acc, ok := repo.db.accounts[id]
	if !ok {
		return session.ErrAccountNotFound
	}
	acc.PasswordHash = hash
	repo.db.accounts[id] = acc
	return nil
}

func (repo *accountRepository) GetProfile(_ context.Context, userID string) (session.Profile, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if prof, ok := repo.db.profiles[userID]; ok {
		return prof, nil
	}
	return session.Profile{}, session.ErrProfileNotFound
}
