package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/senyabanana/container-rental/internal/models"

	"github.com/jackc/pgx/v5"
)

// PostgresRentalRepository - реализация RentalRepository для базы данных.
type PostgresRentalRepository struct {
	DB DBTX
}

// NewPostgresRentalRepository создаёт новый экземпляр PostgresRentalRepository.
func NewPostgresRentalRepository(db DBTX) *PostgresRentalRepository {
	return &PostgresRentalRepository{DB: db}
}

func scanRental(row rowScanner) (*models.Rental, error) {
	var rental models.Rental
	var status string
	if err := row.Scan(
		&rental.ID,
		&rental.ProposalID,
		&rental.CustomerID,
		&rental.StartedAt,
		&rental.ExpectedDelivery,
		&rental.TerminatesAt,
		&status); err != nil {
		return nil, err
	}

	parsed, err := models.ParseRentalStatus(status)
	if err != nil {
		return nil, err
	}
	rental.Status = parsed
	inUTC(&rental.StartedAt, &rental.ExpectedDelivery, &rental.TerminatesAt)
	return &rental, nil
}

// FindFirst возвращает первую подходящую аренду.
func (r *PostgresRentalRepository) FindFirst(ctx context.Context, filter RentalFilter, order OrderBy) (*models.Rental, error) {
	query, args, err := buildRentalQuery(filter, order, true)
	if err != nil {
		return nil, err
	}

	rental, err := scanRental(r.DB.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select rental: %w", err)
	}
	return rental, nil
}

// FindMany возвращает аренды в порядке создания.
func (r *PostgresRentalRepository) FindMany(ctx context.Context, filter RentalFilter) ([]models.Rental, error) {
	query, args, err := buildRentalQuery(filter, OrderBy{}, false)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select rentals: %w", err)
	}
	defer rows.Close()

	rentals := []models.Rental{}
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rental)
	}
	return rentals, rows.Err()
}

// Add сохраняет новую аренду; повторная аренда по тому же предложению дает ConflictError.
func (r *PostgresRentalRepository) Add(ctx context.Context, rental *models.Rental) (*models.Rental, error) {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO rental (id, proposal_id, customer_id, started_at, expected_delivery, terminates_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		rental.ID,
		rental.ProposalID,
		rental.CustomerID,
		rental.StartedAt,
		rental.ExpectedDelivery,
		rental.TerminatesAt,
		rental.Status.String())
	if err != nil {
		return nil, fmt.Errorf("failed to insert rental: %w", mapError(err, "rental"))
	}

	added := *rental
	return &added, nil
}

// Update сохраняет изменения аренды.
func (r *PostgresRentalRepository) Update(ctx context.Context, rental *models.Rental) (*models.Rental, error) {
	tag, err := r.DB.Exec(ctx, `
		UPDATE rental
		SET started_at = $1, expected_delivery = $2, terminates_at = $3, status = $4
		WHERE id = $5
	`,
		rental.StartedAt,
		rental.ExpectedDelivery,
		rental.TerminatesAt,
		rental.Status.String(),
		rental.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update rental: %w", mapError(err, "rental"))
	}
	if tag.RowsAffected() == 0 {
		return nil, models.NotFoundf("rental %s not found", rental.ID)
	}

	updated := *rental
	return &updated, nil
}

// Remove удаляет аренду.
func (r *PostgresRentalRepository) Remove(ctx context.Context, rental *models.Rental) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM rental WHERE id = $1`, rental.ID)
	if err != nil {
		return fmt.Errorf("failed to delete rental: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFoundf("rental %s not found", rental.ID)
	}
	return nil
}
