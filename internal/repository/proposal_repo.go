package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/senyabanana/container-rental/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PostgresProposalRepository - реализация ProposalRepository для базы данных.
type PostgresProposalRepository struct {
	DB DBTX
}

// NewPostgresProposalRepository создаёт новый экземпляр PostgresProposalRepository.
func NewPostgresProposalRepository(db DBTX) *PostgresProposalRepository {
	return &PostgresProposalRepository{DB: db}
}

func scanProposal(row rowScanner) (*models.Proposal, error) {
	var proposal models.Proposal
	var totalCents int64
	var status string
	if err := row.Scan(
		&proposal.ID,
		&proposal.RequestID,
		&proposal.CustomerID,
		&totalCents,
		&proposal.CreatedAt,
		&proposal.ExpiresAt,
		&proposal.DocumentName,
		&status); err != nil {
		return nil, err
	}

	parsed, err := models.ParseProposalStatus(status)
	if err != nil {
		return nil, err
	}
	proposal.Status = parsed
	proposal.TotalValue = models.Money(totalCents)
	inUTC(&proposal.CreatedAt, &proposal.ExpiresAt)
	return &proposal, nil
}

// FindFirst возвращает первое подходящее предложение вместе с комментариями.
func (r *PostgresProposalRepository) FindFirst(ctx context.Context, filter ProposalFilter, order OrderBy) (*models.Proposal, error) {
	query, args, err := buildProposalQuery(filter, order, true)
	if err != nil {
		return nil, err
	}

	proposal, err := scanProposal(r.DB.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select proposal: %w", err)
	}

	comments, err := r.comments(ctx, proposal.ID)
	if err != nil {
		return nil, err
	}
	proposal.Comments = comments
	return proposal, nil
}

// FindMany возвращает предложения без комментариев.
func (r *PostgresProposalRepository) FindMany(ctx context.Context, filter ProposalFilter) ([]models.Proposal, error) {
	query, args, err := buildProposalQuery(filter, OrderBy{}, false)
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select proposals: %w", err)
	}
	defer rows.Close()

	proposals := []models.Proposal{}
	for rows.Next() {
		proposal, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, *proposal)
	}
	return proposals, rows.Err()
}

func (r *PostgresProposalRepository) comments(ctx context.Context, proposalID uuid.UUID) ([]models.Comment, error) {
	query := fmt.Sprintf(`SELECT %s FROM proposal_comment WHERE proposal_id = $1 ORDER BY seq`, commentColumns)
	rows, err := r.DB.Query(ctx, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to select comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var comment models.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.ProposalID,
			&comment.Text,
			&comment.CreatedAt,
			&comment.Author); err != nil {
			return nil, err
		}
		inUTC(&comment.CreatedAt)
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

// insertComments добавляет комментарии, которых еще нет в базе; существующие не меняются.
func insertComments(ctx context.Context, tx pgx.Tx, proposal *models.Proposal) error {
	for _, comment := range proposal.Comments {
		_, err := tx.Exec(ctx, `
			INSERT INTO proposal_comment (id, proposal_id, text, created_at, author)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING
		`,
			comment.ID,
			proposal.ID,
			comment.Text,
			comment.CreatedAt,
			comment.Author)
		if err != nil {
			return fmt.Errorf("failed to insert comment: %w", mapError(err, "comment"))
		}
	}
	return nil
}

// Add сохраняет новое предложение и его комментарии.
func (r *PostgresProposalRepository) Add(ctx context.Context, proposal *models.Proposal) (*models.Proposal, error) {
	err := pgx.BeginFunc(ctx, r.DB, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO proposal (id, request_id, customer_id, total_value, created_at, expires_at, document_name, status)
			VALUES ($1, $2, $3, $4::NUMERIC / 100, $5, $6, $7, $8)
		`,
			proposal.ID,
			proposal.RequestID,
			proposal.CustomerID,
			proposal.TotalValue.Cents(),
			proposal.CreatedAt,
			proposal.ExpiresAt,
			proposal.DocumentName,
			proposal.Status.String())
		if err != nil {
			return fmt.Errorf("failed to insert proposal: %w", mapError(err, "proposal"))
		}
		return insertComments(ctx, tx, proposal)
	})
	if err != nil {
		return nil, err
	}

	added := *proposal
	return &added, nil
}

// Update сохраняет изменения предложения и добавляет новые комментарии.
func (r *PostgresProposalRepository) Update(ctx context.Context, proposal *models.Proposal) (*models.Proposal, error) {
	err := pgx.BeginFunc(ctx, r.DB, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE proposal
			SET total_value = $1::NUMERIC / 100, expires_at = $2, document_name = $3, status = $4
			WHERE id = $5
		`,
			proposal.TotalValue.Cents(),
			proposal.ExpiresAt,
			proposal.DocumentName,
			proposal.Status.String(),
			proposal.ID)
		if err != nil {
			return fmt.Errorf("failed to update proposal: %w", mapError(err, "proposal"))
		}
		if tag.RowsAffected() == 0 {
			return models.NotFoundf("proposal %s not found", proposal.ID)
		}
		return insertComments(ctx, tx, proposal)
	})
	if err != nil {
		return nil, err
	}

	updated := *proposal
	return &updated, nil
}

// Remove удаляет предложение вместе с комментариями и арендой.
func (r *PostgresProposalRepository) Remove(ctx context.Context, proposal *models.Proposal) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM proposal WHERE id = $1`, proposal.ID)
	if err != nil {
		return fmt.Errorf("failed to delete proposal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.NotFoundf("proposal %s not found", proposal.ID)
	}
	return nil
}
