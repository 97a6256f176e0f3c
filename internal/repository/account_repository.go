package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/domain"
)

// AccountRepository reads one of the two identity sets. Staff accounts are
// provisioned out-of-band, so only the public set gets a Create.
type AccountRepository interface {
	ListAll(ctx context.Context) ([]domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) error
}

type accountRepository struct {
	pool  *pgxpool.Pool
	table string
}

// NewStaffRepository returns the staff_users-backed directory set.
func NewStaffRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool, table: "staff_users"}
}

// NewPublicUserRepository returns the public_users-backed directory set.
func NewPublicUserRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool, table: "public_users"}
}

func (r *accountRepository) ListAll(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT username, name, email, password FROM ` + r.table + ` ORDER BY username`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.Username,
			&account.Name,
			&account.Email,
			&account.Password,
		); err != nil {
			return nil, err
		}
		result = append(result, account)
	}
	return result, rows.Err()
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	query := `SELECT username, name, email, password FROM ` + r.table + ` WHERE username=$1`
	var account domain.Account
	if err := r.pool.QueryRow(ctx, query, username).Scan(
		&account.Username,
		&account.Name,
		&account.Email,
		&account.Password,
	); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `INSERT INTO ` + r.table + ` (username, name, email, password) VALUES ($1,$2,$3,$4)`
	cmd, err := r.pool.Exec(ctx, query,
		account.Username,
		account.Name,
		account.Email,
		account.Password,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
