package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"contacts-api/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, email, hashedPassword string) (domain.User, error)
	GetByID(ctx context.Context, id int64) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	SetVerified(ctx context.Context, id int64) (domain.User, error)
	SetActive(ctx context.Context, id int64, active bool) (domain.User, error)
	UpdateAvatar(ctx context.Context, id int64, avatarURL string) (domain.User, error)
}

// IsUniqueViolation reporta si err es una violación de constraint UNIQUE.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `id, email, hashed_password, COALESCE(avatar_url, ''), is_verified, is_active, created_at`

func (r *PgUserRepository) Create(ctx context.Context, email, hashedPassword string) (domain.User, error) {
	const query = `
		INSERT INTO users (email, hashed_password, is_verified, is_active)
		VALUES ($1, $2, FALSE, TRUE)
		RETURNING ` + userColumns
	return r.scanUser(r.pool.QueryRow(ctx, query, email, hashedPassword))
}

func (r *PgUserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) SetVerified(ctx context.Context, id int64) (domain.User, error) {
	const query = `
		UPDATE users SET is_verified = TRUE
		WHERE id = $1
		RETURNING ` + userColumns
	return r.scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) SetActive(ctx context.Context, id int64, active bool) (domain.User, error) {
	const query = `
		UPDATE users SET is_active = $2
		WHERE id = $1
		RETURNING ` + userColumns
	return r.scanUser(r.pool.QueryRow(ctx, query, id, active))
}

func (r *PgUserRepository) UpdateAvatar(ctx context.Context, id int64, avatarURL string) (domain.User, error) {
	const query = `
		UPDATE users SET avatar_url = $2
		WHERE id = $1
		RETURNING ` + userColumns
	return r.scanUser(r.pool.QueryRow(ctx, query, id, avatarURL))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PgUserRepository) scanUser(row rowScanner) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.HashedPassword,
		&u.AvatarURL,
		&u.IsVerified,
		&u.IsActive,
		&u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}
