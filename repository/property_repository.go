package repository

import (
	"context"
	"fmt"

	"zoningcheck-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PropertyRepository handles database operations for properties
type PropertyRepository struct {
	db *pgxpool.Pool
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(db *pgxpool.Pool) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// Create creates a new property
func (r *PropertyRepository) Create(ctx context.Context, property *models.Property) error {
	query := `
		INSERT INTO properties (
			user_id, status, display_address, postcode, municipality,
			plan_file_id, designations, maatvoeringen, plan, assessment
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		property.UserID,
		property.Status,
		property.DisplayAddress,
		property.Postcode,
		property.Municipality,
		property.PlanFileID,
		property.Designations,
		property.Maatvoeringen,
		property.Plan,
		property.Assessment,
	).Scan(&property.ID, &property.CreatedAt, &property.UpdatedAt)

	return err
}

// GetByID retrieves a property by ID
func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	property := &models.Property{}
	query := `
		SELECT id, user_id, status, display_address, postcode, municipality,
			plan_file_id, designations, maatvoeringen, plan, assessment,
			created_at, updated_at, completed_at
		FROM properties
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&property.ID,
		&property.UserID,
		&property.Status,
		&property.DisplayAddress,
		&property.Postcode,
		&property.Municipality,
		&property.PlanFileID,
		&property.Designations,
		&property.Maatvoeringen,
		&property.Plan,
		&property.Assessment,
		&property.CreatedAt,
		&property.UpdatedAt,
		&property.CompletedAt,
	)

	if err != nil {
		return nil, err
	}

	return property, nil
}

// Update updates a property
func (r *PropertyRepository) Update(ctx context.Context, property *models.Property) error {
	query := `
		UPDATE properties SET
			status = $2,
			display_address = $3,
			postcode = $4,
			municipality = $5,
			plan_file_id = $6,
			designations = $7,
			maatvoeringen = $8,
			plan = $9,
			assessment = $10,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(
		ctx, query,
		property.ID,
		property.Status,
		property.DisplayAddress,
		property.Postcode,
		property.Municipality,
		property.PlanFileID,
		property.Designations,
		property.Maatvoeringen,
		property.Plan,
		property.Assessment,
	).Scan(&property.UpdatedAt)

	return err
}

// UpdateAssessment stores the assessment result and marks the property completed
func (r *PropertyRepository) UpdateAssessment(ctx context.Context, id uuid.UUID, assessment *models.ZoningAssessment) error {
	query := `
		UPDATE properties SET
			assessment = $2,
			status = $3,
			completed_at = NOW(),
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, assessment, models.StatusCompleted)
	return err
}

// UpdateStatus updates only the property status
func (r *PropertyRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PropertyStatus) error {
	query := `
		UPDATE properties SET
			status = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status)
	return err
}

// ListByUserID retrieves all properties for a user
func (r *PropertyRepository) ListByUserID(ctx context.Context, userID uuid.UUID, status *models.PropertyStatus, limit, offset int) ([]*models.Property, error) {
	query := `
		SELECT id, user_id, status, display_address, postcode, municipality,
			plan_file_id, designations, maatvoeringen, plan, assessment,
			created_at, updated_at, completed_at
		FROM properties
		WHERE user_id = $1`

	args := []interface{}{userID}
	argIndex := 2

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argIndex)
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var properties []*models.Property
	for rows.Next() {
		property := &models.Property{}
		err := rows.Scan(
			&property.ID,
			&property.UserID,
			&property.Status,
			&property.DisplayAddress,
			&property.Postcode,
			&property.Municipality,
			&property.PlanFileID,
			&property.Designations,
			&property.Maatvoeringen,
			&property.Plan,
			&property.Assessment,
			&property.CreatedAt,
			&property.UpdatedAt,
			&property.CompletedAt,
		)
		if err != nil {
			return nil, err
		}
		properties = append(properties, property)
	}

	return properties, rows.Err()
}

// Delete deletes a property
func (r *PropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM properties WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
