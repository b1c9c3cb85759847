package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// AccountRepository persists accounts. Accounts are never hard-deleted;
// Deactivate is the end of an account's life.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id string) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
	List(ctx context.Context, filter AccountFilter) ([]Account, error)
	Update(ctx context.Context, account *Account) error
	Deactivate(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// AccountFilter narrows List results. Zero values match everything.
type AccountFilter struct {
	Role        Role
	InstituteID string
}

// SQLiteAccountRepository implements AccountRepository using SQLite.
type SQLiteAccountRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewAccountRepository creates a SQLite-backed account repository.
func NewAccountRepository(db *sql.DB) *SQLiteAccountRepository {
	return &SQLiteAccountRepository{db: db, now: time.Now}
}

const accountColumns = "id, name, email, password_hash, role, institute_id, is_active, created_at, updated_at"

// NormalizeEmail trims and lower-cases an email address. Emails are stored
// and looked up in this form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a new account. The ID is generated if empty and the email
// is normalised. A duplicate email returns ErrEmailExists.
func (r *SQLiteAccountRepository) Create(ctx context.Context, account *Account) error {
	if account.ID == "" {
		account.ID = "acc-" + uuid.NewString()
	}
	if !account.Role.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownRole, account.Role)
	}
	account.Email = NormalizeEmail(account.Email)

	now := r.timestamp()
	account.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	account.UpdatedAt = account.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.ID, account.Name, account.Email, account.PasswordHash,
		string(account.Role), nullableID(account.InstituteID), boolToInt(account.IsActive),
		now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("creating account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by ID.
func (r *SQLiteAccountRepository) GetByID(ctx context.Context, id string) (*Account, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)
	return scanAccount(row)
}

// GetByEmail retrieves an account by email, ignoring case and surrounding space.
func (r *SQLiteAccountRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+accountColumns+" FROM accounts WHERE email = ?", NormalizeEmail(email))
	return scanAccount(row)
}

// List returns accounts matching filter, oldest first.
func (r *SQLiteAccountRepository) List(ctx context.Context, filter AccountFilter) ([]Account, error) {
	query := "SELECT " + accountColumns + " FROM accounts"
	var conditions []string
	var args []any
	if filter.Role != "" {
		conditions = append(conditions, "role = ?")
		args = append(args, string(filter.Role))
	}
	if filter.InstituteID != "" {
		conditions = append(conditions, "institute_id = ?")
		args = append(args, filter.InstituteID)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	accounts := []Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}
	return accounts, nil
}

// Update writes the administratively mutable fields (name, institute and
// password hash) in one statement. Email, role and the active flag are not
// touched; only Deactivate changes is_active.
func (r *SQLiteAccountRepository) Update(ctx context.Context, account *Account) error {
	now := r.timestamp()
	account.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	result, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, institute_id = ?, password_hash = ?, updated_at = ? WHERE id = ?`,
		account.Name, nullableID(account.InstituteID), account.PasswordHash, now, account.ID,
	)
	if err != nil {
		return fmt.Errorf("updating account: %w", err)
	}
	return requireRow(result)
}

// Deactivate marks an account inactive. It is idempotent.
func (r *SQLiteAccountRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET is_active = 0, updated_at = ? WHERE id = ?`,
		r.timestamp(), id,
	)
	if err != nil {
		return fmt.Errorf("deactivating account: %w", err)
	}
	return requireRow(result)
}

// Count returns the total number of accounts.
func (r *SQLiteAccountRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM accounts").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting accounts: %w", err)
	}
	return count, nil
}

func (r *SQLiteAccountRepository) timestamp() string {
	return r.now().UTC().Format(time.RFC3339)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*Account, error) {
	var a Account
	var role string
	var instituteID sql.NullString
	var isActive int
	var createdAt, updatedAt string

	err := s.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &role,
		&instituteID, &isActive, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("scanning account: %w", err)
	}

	a.Role = Role(role)
	a.IsActive = isActive != 0
	if instituteID.Valid {
		a.InstituteID = &instituteID.String
	}
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &a, nil
}

func requireRow(result sql.Result) error {
	n, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if n == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func nullableID(id *string) sql.NullString {
	if id == nil || *id == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *id, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
