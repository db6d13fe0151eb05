package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Proposal представляет модель предложения поставщика по заявке.
type Proposal struct {
	ID           uuid.UUID      `json:"id"`
	RequestID    uuid.UUID      `json:"requestId"`
	CustomerID   uuid.UUID      `json:"customerId"`
	TotalValue   Money          `json:"totalValue"`
	CreatedAt    time.Time      `json:"createdAt"`
	ExpiresAt    time.Time      `json:"expiresAt"`
	DocumentName string         `json:"documentName"`
	Status       ProposalStatus `json:"status"`
	Comments     []Comment      `json:"comments,omitempty"`
}

// ProposalInput представляет данные для отправки предложения.
type ProposalInput struct {
	TotalValue   Money
	ExpiresAt    time.Time
	DocumentName string
}

// Comment представляет модель комментария к предложению.
type Comment struct {
	ID         uuid.UUID `json:"id"`
	ProposalID uuid.UUID `json:"-"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
	Author     string    `json:"author"`
}

// Validate проверяет обязательные поля предложения.
func (in ProposalInput) Validate() error {
	if in.TotalValue <= 0 {
		return Validationf("totalValue must be positive")
	}
	if in.ExpiresAt.IsZero() {
		return Validationf("expiresAt is required")
	}
	if strings.TrimSpace(in.DocumentName) == "" {
		return Validationf("document file name is required")
	}
	return nil
}

// NewProposal создает предложение в статусе Pending; клиент копируется из заявки.
func NewProposal(request *RentalRequest, in ProposalInput, now time.Time) (*Proposal, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &Proposal{
		ID:           uuid.New(),
		RequestID:    request.ID,
		CustomerID:   request.CustomerID,
		TotalValue:   in.TotalValue,
		CreatedAt:    now,
		ExpiresAt:    in.ExpiresAt,
		DocumentName: strings.TrimSpace(in.DocumentName),
		Status:       PendingProposal,
	}, nil
}

func (p *Proposal) transition(target ProposalStatus) error {
	if !p.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: proposal %s is %s", ErrIllegalTransition, p.ID, p.Status)
	}
	p.Status = target
	return nil
}

// Accept переводит предложение в статус Accepted.
func (p *Proposal) Accept() error {
	return p.transition(AcceptedProposal)
}

// Reject переводит предложение в статус Rejected.
func (p *Proposal) Reject() error {
	return p.transition(RejectedProposal)
}

// AddComment добавляет комментарий в конец ленты.
func (p *Proposal) AddComment(author, text string, now time.Time) (Comment, error) {
	if strings.TrimSpace(text) == "" {
		return Comment{}, Validationf("comment text is required")
	}
	if strings.TrimSpace(author) == "" {
		return Comment{}, Validationf("comment author is required")
	}
	comment := Comment{
		ID:         uuid.New(),
		ProposalID: p.ID,
		Text:       text,
		CreatedAt:  now,
		Author:     author,
	}
	p.Comments = append(p.Comments, comment)
	return comment, nil
}
