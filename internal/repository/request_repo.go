package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/senyabanana/container-rental/internal/models"

	"github.com/jackc/pgx/v5"
)

// PostgresRequestRepository - реализация RequestRepository для базы данных.
type PostgresRequestRepository struct {
	DB DBTX
}

// NewPostgresRequestRepository создаёт новый экземпляр PostgresRequestRepository.
func NewPostgresRequestRepository(db DBTX) *PostgresRequestRepository {
	return &PostgresRequestRepository{DB: db}
}

func scanRequest(row rowScanner) (*models.RentalRequest, error) {
	var request models.RentalRequest
	var status string
	if err := row.Scan(
		&request.ID,
		&request.CustomerID,
		&request.Description,
		&request.EstimatedQuantity,
		&request.Purpose,
		&request.DesiredStart,
		&request.LeadTimeDays,
		&request.DurationDays,
		&request.AddressID,
		&status,
		&request.CreatedAt); err != nil {
		return nil, err
	}

	parsed, err := models.ParseRequestStatus(status)
	if err != nil {
		return nil, err
	}
	request.Status = parsed
	inUTC(&request.DesiredStart, &request.CreatedAt)
	return &request, nil
}

// FindFirst возвращает первую подходящую заявку вместе с ее предложениями.
func (r *PostgresRequestRepository) FindFirst(ctx context.Context, filter RequestFilter, order OrderBy) (*models.RentalRequest, error) {
	query, args, err := buildRequestQuery(filter, order, true)
	if err != nil {
		return nil, err
	}

	request, err := scanRequest(r.DB.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select rental request: %w", err)
	}

	proposals, err := NewPostgresProposalRepository(r.DB).FindMany(ctx, ProposalFilter{RequestID: request.ID})
	if err != nil {
		return nil, err
	}
	request.Proposals = proposals
	return request, nil
}

// FindMany возвращает заявки без вложенных предложений.
func (r *PostgresRequestRepository) FindMany(ctx context.Context, filter RequestFilter) ([]models.RentalRequest, error) {
	query, args, err := buildRequestQuery(filter, OrderBy{}, false)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select rental requests: %w", err)
	}
	defer rows.Close()

	requests := []models.RentalRequest{}
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *request)
	}
	return requests, rows.Err()
}

// Add сохраняет новую заявку.
func (r *PostgresRequestRepository) Add(ctx context.Context, request *models.RentalRequest) (*models.RentalRequest, error) {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO rental_request (id, customer_id, description, estimated_quantity, purpose, desired_start, lead_time_days, duration_days, address_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		request.ID,
		request.CustomerID,
		request.Description,
		request.EstimatedQuantity,
		request.Purpose,
		request.DesiredStart,
		request.LeadTimeDays,
		request.DurationDays,
		request.AddressID,
		request.Status.String(),
		request.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert rental request: %w", mapError(err, "rental request"))
	}

	added := *request
	return &added, nil
}

// Update сохраняет изменения заявки.
func (r *PostgresRequestRepository) Update(ctx context.Context, request *models.RentalRequest) (*models.RentalRequest, error) {
	tag, err := r.DB.Exec(ctx, `
		UPDATE rental_request
		SET description = $1, estimated_quantity = $2, purpose = $3, desired_start = $4,
		    lead_time_days = $5, duration_days = $6, address_id = $7, status = $8
		WHERE id = $9
	`,
		request.Description,
		request.EstimatedQuantity,
		request.Purpose,
		request.DesiredStart,
		request.LeadTimeDays,
		request.DurationDays,
		request.AddressID,
		request.Status.String(),
		request.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update rental request: %w", mapError(err, "rental request"))
	}
	if tag.RowsAffected() == 0 {
		return nil, models.NotFoundf("rental request %s not found", request.ID)
	}

	updated := *request
	return &updated, nil
}

// Remove удаляет заявку; предложения, комментарии и аренды удаляются каскадно.
func (r *PostgresRequestRepository) Remove(ctx context.Context, request *models.RentalRequest) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM rental_request WHERE id = $1`, request.ID)
	if err != nil {
		return fmt.Errorf("failed to delete rental request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFoundf("rental request %s not found", request.ID)
	}
	return nil
}
