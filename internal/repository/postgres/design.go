package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RMahshie/fluxloop/internal/repository"
	"github.com/RMahshie/fluxloop/pkg/models"
	"github.com/google/uuid"
)

// PostgresDesignRepository implements DesignRepository for PostgreSQL
type PostgresDesignRepository struct {
	db *sql.DB
}

// NewPostgresDesignRepository creates a new PostgreSQL design repository
func NewPostgresDesignRepository(db *sql.DB) repository.DesignRepository {
	return &PostgresDesignRepository{db: db}
}

// Create inserts a new design record
func (r *PostgresDesignRepository) Create(ctx context.Context, design *models.StoredDesign) error {
	body, err := json.Marshal(design.Design)
	if err != nil {
		return fmt.Errorf("failed to marshal design: %w", err)
	}

	query := `
		INSERT INTO designs (id, name, description, design, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.ExecContext(ctx, query,
		design.ID,
		design.Name,
		design.Description,
		body,
		design.CreatedAt,
		design.UpdatedAt)

	return err
}

// GetByID retrieves a design by ID
func (r *PostgresDesignRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StoredDesign, error) {
	query := `
		SELECT id, name, description, design, created_at, updated_at
		FROM designs
		WHERE id = $1`

	design, err := scanDesign(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return design, nil
}

// List returns designs, newest first
func (r *PostgresDesignRepository) List(ctx context.Context, limit, offset int) ([]*models.StoredDesign, error) {
	query := `
		SELECT id, name, description, design, created_at, updated_at
		FROM designs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	designs := []*models.StoredDesign{}
	for rows.Next() {
		design, err := scanDesign(rows)
		if err != nil {
			return nil, err
		}
		designs = append(designs, design)
	}
	return designs, rows.Err()
}

// Delete removes a design
func (r *PostgresDesignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM designs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", repository.ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDesign(row scanner) (*models.StoredDesign, error) {
	var design models.StoredDesign
	var body []byte
	err := row.Scan(
		&design.ID,
		&design.Name,
		&design.Description,
		&body,
		&design.CreatedAt,
		&design.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &design.Design); err != nil {
		return nil, fmt.Errorf("failed to unmarshal design %s: %w", design.ID, err)
	}
	return &design, nil
}
