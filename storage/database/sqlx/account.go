package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/ministerio-jovenes/asistencia/core/session"
)

const uniqueViolation = "23505"

type (
	accountRow struct {
		ID           string    `db:"id"`
		Email        string    `db:"email"`
		PasswordHash []byte    `db:"password_hash"`
		CreatedAt    time.Time `db:"created_at"`
	}

	profileRow struct {
		ID        string    `db:"id"`
		FullName  string    `db:"full_name"`
		Role      string    `db:"role"`
		CreatedAt time.Time `db:"created_at"`
	}
)

func (r accountRow) unpack() session.Account {
	return session.Account{ID: r.ID, Email: r.Email, PasswordHash: r.PasswordHash, CreatedAt: r.CreatedAt.UTC()}
}

type accountRepository struct {
	db *sqlx.DB
}

var (
	_ session.AccountRepository = (*accountRepository)(nil) // interface compliance check
	_ session.ProfileRepository = (*accountRepository)(nil)
)

func NewAccountRepository(db *sqlx.DB) *accountRepository {
	return &accountRepository{db: db}
}

// CreateAccount inserts the account and its profile in one transaction.
func (repo accountRepository) CreateAccount(ctx context.Context, acc session.Account, prof session.Profile) (session.Account, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return session.Account{}, wrapErr(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	row := accountRow{ID: acc.ID, Email: acc.Email, PasswordHash: acc.PasswordHash, CreatedAt: acc.CreatedAt}
	if _, err = tx.NamedExecContext(ctx,
		"INSERT INTO accounts (id, email, password_hash, created_at) VALUES (:id, :email, :password_hash, :created_at)", row); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return session.Account{}, session.ErrAccountExists
		}
		return session.Account{}, wrapErr(err, "inserting account")
	}

	profRow := profileRow{ID: acc.ID, FullName: prof.FullName, Role: prof.Role, CreatedAt: prof.CreatedAt}
	if _, err = tx.NamedExecContext(ctx,
		"INSERT INTO profiles (id, full_name, role, created_at) VALUES (:id, :full_name, :role, :created_at)", profRow); err != nil {
		return session.Account{}, wrapErr(err, "inserting profile")
	}

	if err = tx.Commit(); err != nil {
		return session.Account{}, wrapErr(err, "committing account")
	}
	return row.unpack(), nil
}

func (repo accountRepository) getAccount(ctx context.Context, where string, arg interface{}) (session.Account, error) {
	var row accountRow
	q := "SELECT id::text AS id, email, password_hash, created_at FROM accounts WHERE " + where
	if err := repo.db.GetContext(ctx, &row, q, arg); err != nil {
		if err == sql.ErrNoRows {
			return session.Account{}, session.ErrAccountNotFound
		}
		return session.Account{}, wrapErr(err, "selecting account")
	}
	return row.unpack(), nil
}

func (repo accountRepository) GetAccountByEmail(ctx context.Context, email string) (session.Account, error) {
	return repo.getAccount(ctx, "lower(email) = lower($1)", email)
}

func (repo accountRepository) GetAccount(ctx context.Context, id string) (session.Account, error) {
	return repo.getAccount(ctx, "id::text = $1", id)
}

func (repo accountRepository) SetPassword(ctx context.Context, id string, hash []byte) error {
	res, err := repo.db.ExecContext(ctx, "UPDATE accounts SET password_hash = $2 WHERE id::text = $1", id, hash)
	if err != nil {
		return wrapErr(err, "updating password")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return session.ErrAccountNotFound
	}
	return nil
}

func (repo accountRepository) GetProfile(ctx context.Context, userID string) (session.Profile, error) {
	var row profileRow
	q := "SELECT id::text AS id, full_name, role, created_at FROM profiles WHERE id::text = $1"
	if err := repo.db.GetContext(ctx, &row, q, userID); err != nil {
		if err == sql.ErrNoRows {
			return session.Profile{}, session.ErrProfileNotFound
		}
		return session.Profile{}, wrapErr(err, "selecting profile")
	}
	return session.Profile{ID: row.ID, FullName: row.FullName, Role: row.Role, CreatedAt: row.CreatedAt.UTC()}, nil
}
