package institute

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/vidyank/vidyank-core/internal/validation"
)

// Repository defines persistence for institutes and subscriptions.
type Repository interface {
	Create(ctx context.Context, in NewInstituteInput) (*Institute, error)
	GetByID(ctx context.Context, id string) (*Institute, error)
	List(ctx context.Context) ([]Institute, error)

	CreateSubscription(ctx context.Context, in NewSubscriptionInput) (*Subscription, error)
	// ListSubscriptions returns every subscription, or those of one
	// institute when instituteID is non-empty.
	ListSubscriptions(ctx context.Context, instituteID string) ([]Subscription, error)
}

// SQLiteRepository implements Repository.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Create(ctx context.Context, in NewInstituteInput) (*Institute, error) {
	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	now := r.now().UTC().Truncate(time.Second)
	inst := &Institute{
		ID:        "ins-" + uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO institutes (id, name, is_active, created_at, updated_at) VALUES (?, ?, 1, ?, ?)`,
		inst.ID, inst.Name, now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("creating institute: %w", err)
	}
	return inst, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Institute, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, is_active, created_at, updated_at FROM institutes WHERE id = ?`, id)

	inst, err := scanInstitute(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return inst, err
}

func (r *SQLiteRepository) List(ctx context.Context) ([]Institute, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, is_active, created_at, updated_at FROM institutes ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing institutes: %w", err)
	}
	defer rows.Close()

	institutes := []Institute{}
	for rows.Next() {
		inst, err := scanInstitute(rows)
		if err != nil {
			return nil, err
		}
		institutes = append(institutes, *inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating institutes: %w", err)
	}
	return institutes, nil
}

func (r *SQLiteRepository) CreateSubscription(ctx context.Context, in NewSubscriptionInput) (*Subscription, error) {
	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	now := r.now().UTC().Truncate(time.Second)
	sub := &Subscription{
		ID:          "sub-" + uuid.NewString(),
		InstituteID: strings.TrimSpace(in.InstituteID),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, institute_id, is_active, created_at, updated_at) VALUES (?, ?, 1, ?, ?)`,
		sub.ID, sub.InstituteID, now.Format(time.RFC3339), now.Format(time.RFC3339),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("creating subscription: %w", err)
	}
	return sub, nil
}

func (r *SQLiteRepository) ListSubscriptions(ctx context.Context, instituteID string) ([]Subscription, error) {
	query := `SELECT id, institute_id, is_active, created_at, updated_at FROM subscriptions`
	var args []any
	if instituteID != "" {
		query += ` WHERE institute_id = ?`
		args = append(args, instituteID)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []Subscription{}
	for rows.Next() {
		var s Subscription
		var active int
		var createdAt, updatedAt string
		if err := rows.Scan(&s.ID, &s.InstituteID, &active, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning subscription: %w", err)
		}
		s.IsActive = active != 0
		s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
		s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subscriptions: %w", err)
	}
	return subs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInstitute(s scanner) (*Institute, error) {
	var inst Institute
	var active int
	var createdAt, updatedAt string
	if err := s.Scan(&inst.ID, &inst.Name, &active, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning institute: %w", err)
	}
	inst.IsActive = active != 0
	inst.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	inst.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled
	return &inst, nil
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}
