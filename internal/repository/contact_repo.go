package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contacts-api/internal/domain"
)

// ContactFilter agrupa los filtros de búsqueda parcial (AND, case-insensitive).
type ContactFilter struct {
	FirstName string
	LastName  string
	Email     string
}

// ContactRepository define el contrato de persistencia para contactos.
// Todas las operaciones están acotadas al usuario dueño.
type ContactRepository interface {
	Create(ctx context.Context, contact domain.Contact) (domain.Contact, error)
	GetByID(ctx context.Context, id, userID int64) (domain.Contact, error)
	GetByEmail(ctx context.Context, email string, userID int64) (domain.Contact, error)
	List(ctx context.Context, userID int64, filter ContactFilter, skip, limit int) ([]domain.Contact, error)
	ListWithBirthdays(ctx context.Context, userID int64) ([]domain.Contact, error)
	Update(ctx context.Context, contact domain.Contact) (domain.Contact, error)
	Delete(ctx context.Context, id, userID int64) (bool, error)
}

// PgContactRepository implementa ContactRepository usando pgxpool.
type PgContactRepository struct {
	pool *pgxpool.Pool
}

func NewPgContactRepository(pool *pgxpool.Pool) *PgContactRepository {
	return &PgContactRepository{pool: pool}
}

const contactColumns = `id, user_id, first_name, last_name, email, phone_number, birthday, COALESCE(additional_data, ''), created_at`

func (r *PgContactRepository) Create(ctx context.Context, contact domain.Contact) (domain.Contact, error) {
	const query = `
		INSERT INTO contacts (user_id, first_name, last_name, email, phone_number, birthday, additional_data)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		RETURNING ` + contactColumns
	row := r.pool.QueryRow(ctx, query,
		contact.UserID,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.PhoneNumber,
		birthdayArg(contact.Birthday),
		contact.AdditionalData,
	)
	return scanContact(row)
}

func (r *PgContactRepository) GetByID(ctx context.Context, id, userID int64) (domain.Contact, error) {
	const query = `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1 AND user_id = $2`
	return scanContact(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *PgContactRepository) GetByEmail(ctx context.Context, email string, userID int64) (domain.Contact, error) {
	const query = `SELECT ` + contactColumns + ` FROM contacts WHERE email = $1 AND user_id = $2 LIMIT 1`
	return scanContact(r.pool.QueryRow(ctx, query, email, userID))
}

func (r *PgContactRepository) List(ctx context.Context, userID int64, filter ContactFilter, skip, limit int) ([]domain.Contact, error) {
	clauses := []string{"user_id = $1"}
	args := []any{userID}

	addClause := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, "%"+value+"%")
		clauses = append(clauses, fmt.Sprintf("%s ILIKE $%d", column, len(args)))
	}
	addClause("first_name", filter.FirstName)
	addClause("last_name", filter.LastName)
	addClause("email", filter.Email)

	args = append(args, limit, skip)
	query := fmt.Sprintf(
		`SELECT %s FROM contacts WHERE %s ORDER BY id ASC LIMIT $%d OFFSET $%d`,
		contactColumns, strings.Join(clauses, " AND "), len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContacts(rows)
}

func (r *PgContactRepository) ListWithBirthdays(ctx context.Context, userID int64) ([]domain.Contact, error) {
	const query = `SELECT ` + contactColumns + ` FROM contacts WHERE user_id = $1 AND birthday IS NOT NULL`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContacts(rows)
}

func (r *PgContactRepository) Update(ctx context.Context, contact domain.Contact) (domain.Contact, error) {
	const query = `
		UPDATE contacts
		SET first_name = $3, last_name = $4, email = $5, phone_number = $6, birthday = $7, additional_data = NULLIF($8, '')
		WHERE id = $1 AND user_id = $2
		RETURNING ` + contactColumns
	row := r.pool.QueryRow(ctx, query,
		contact.ID,
		contact.UserID,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.PhoneNumber,
		birthdayArg(contact.Birthday),
		contact.AdditionalData,
	)
	return scanContact(row)
}

func (r *PgContactRepository) Delete(ctx context.Context, id, userID int64) (bool, error) {
	const query = `DELETE FROM contacts WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func birthdayArg(d *domain.Date) any {
	if d == nil {
		return nil
	}
	return d.Time
}

func scanContact(row rowScanner) (domain.Contact, error) {
	var (
		c        domain.Contact
		birthday *time.Time
	)
	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.PhoneNumber,
		&birthday,
		&c.AdditionalData,
		&c.CreatedAt,
	)
	if err != nil {
		return domain.Contact{}, err
	}
	if birthday != nil {
		c.Birthday = &domain.Date{Time: *birthday}
	}
	return c, nil
}

func collectContacts(rows pgx.Rows) ([]domain.Contact, error) {
	var contacts []domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
