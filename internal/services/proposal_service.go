package services

import (
	"context"
	"strings"

	"github.com/senyabanana/container-rental/internal/auth"
	"github.com/senyabanana/container-rental/internal/models"
	"github.com/senyabanana/container-rental/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ProposalService struct {
	Store  repository.Store
	Logger *logrus.Logger
	Now    Clock
}

// NewProposalService создаёт новый экземпляр ProposalService.
func NewProposalService(store repository.Store, logger *logrus.Logger) *ProposalService {
	return &ProposalService{Store: store, Logger: logger, Now: utcNow}
}

// SubmitProposal создает предложение по активной заявке.
func (s *ProposalService) SubmitProposal(ctx context.Context, scope auth.Scope, requestID uuid.UUID, in models.ProposalInput) (*models.Proposal, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	customerID, err := scope.Filter()
	if err != nil {
		return nil, err
	}

	uow, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback(ctx)

	request, err := findRequest(ctx, uow, repository.RequestFilter{ID: requestID, CustomerID: customerID, ForUpdate: true})
	if err != nil {
		return nil, err
	}
	if request.Status != models.ActiveRequest {
		return nil, models.InvalidStatef("rental request %s is %s", request.ID, request.Status)
	}

	proposal, err := models.NewProposal(request, in, s.Now())
	if err != nil {
		return nil, err
	}
	created, err := uow.Proposals().Add(ctx, proposal)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"request_id":  requestID,
		"proposal_id": created.ID,
	}).Info("proposal submitted")
	return created, nil
}

// ListProposals возвращает предложения по заявке.
func (s *ProposalService) ListProposals(ctx context.Context, scope auth.Scope, requestID uuid.UUID) ([]models.Proposal, error) {
	customerID, err := scope.Filter()
	if err != nil {
		return nil, err
	}
	if _, err := findRequest(ctx, s.Store, repository.RequestFilter{ID: requestID, CustomerID: customerID}); err != nil {
		return nil, err
	}
	return s.Store.Proposals().FindMany(ctx, repository.ProposalFilter{RequestID: requestID})
}

// GetProposal возвращает предложение вместе с комментариями.
func (s *ProposalService) GetProposal(ctx context.Context, scope auth.Scope, requestID, proposalID uuid.UUID) (*models.Proposal, error) {
	customerID, err := scope.Filter()
	if err != nil {
		return nil, err
	}
	return findProposal(ctx, s.Store, repository.ProposalFilter{ID: proposalID, RequestID: requestID, CustomerID: customerID})
}

// AcceptProposal принимает предложение и в той же транзакции создает аренду.
func (s *ProposalService) AcceptProposal(ctx context.Context, scope auth.Scope, requestID, proposalID uuid.UUID) (*models.Proposal, *models.Rental, error) {
	customerID, err := scope.Filter()
	if err != nil {
		return nil, nil, err
	}

	uow, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer uow.Rollback(ctx)

	request, proposal, err := s.lockProposal(ctx, uow, customerID, requestID, proposalID)
	if err != nil {
		return nil, nil, err
	}
	if err := ensureNothingAccepted(ctx, uow, requestID); err != nil {
		return nil, nil, err
	}
	if err := proposal.Accept(); err != nil {
		return nil, nil, asInvalidState(err)
	}

	rental, err := models.NewRental(request, proposal, s.Now())
	if err != nil {
		return nil, nil, err
	}
	accepted, err := uow.Proposals().Update(ctx, proposal)
	if err != nil {
		return nil, nil, err
	}
	created, err := uow.Rentals().Add(ctx, rental)
	if err != nil {
		return nil, nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"request_id":  requestID,
		"proposal_id": proposalID,
		"rental_id":   created.ID,
	}).Info("proposal accepted")
	return accepted, created, nil
}

// RejectProposal отклоняет предложение.
func (s *ProposalService) RejectProposal(ctx context.Context, scope auth.Scope, requestID, proposalID uuid.UUID) (*models.Proposal, error) {
	customerID, err := scope.Filter()
	if err != nil {
		return nil, err
	}

	uow, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback(ctx)

	_, proposal, err := s.lockProposal(ctx, uow, customerID, requestID, proposalID)
	if err != nil {
		return nil, err
	}
	if err := proposal.Reject(); err != nil {
		return nil, asInvalidState(err)
	}
	rejected, err := uow.Proposals().Update(ctx, proposal)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"request_id":  requestID,
		"proposal_id": proposalID,
	}).Info("proposal rejected")
	return rejected, nil
}

// AddComment добавляет комментарий к предложению в любом статусе.
func (s *ProposalService) AddComment(ctx context.Context, scope auth.Scope, requestID, proposalID uuid.UUID, author, text string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.Validationf("comment text is required")
	}
	if strings.TrimSpace(author) == "" {
		return nil, models.Validationf("comment author is required")
	}
	customerID, err := scope.Filter()
	if err != nil {
		return nil, err
	}

	uow, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback(ctx)

	proposal, err := findProposal(ctx, uow, repository.ProposalFilter{
		ID:         proposalID,
		RequestID:  requestID,
		CustomerID: customerID,
		ForUpdate:  true,
	})
	if err != nil {
		return nil, err
	}
	comment, err := proposal.AddComment(author, text, s.Now())
	if err != nil {
		return nil, err
	}
	if _, err := uow.Proposals().Update(ctx, proposal); err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}
	return &comment, nil
}

// lockProposal блокирует заявку и загружает ожидающее решения предложение по ней.
func (s *ProposalService) lockProposal(ctx context.Context, uow repository.UnitOfWork, customerID, requestID, proposalID uuid.UUID) (*models.RentalRequest, *models.Proposal, error) {
	request, err := findRequest(ctx, uow, repository.RequestFilter{ID: requestID, CustomerID: customerID, ForUpdate: true})
	if err != nil {
		return nil, nil, err
	}
	proposal, err := findProposal(ctx, uow, repository.ProposalFilter{
		ID:         proposalID,
		RequestID:  requestID,
		CustomerID: customerID,
		ForUpdate:  true,
	})
	if err != nil {
		return nil, nil, err
	}
	if proposal.Status != models.PendingProposal {
		return nil, nil, models.InvalidStatef("proposal %s is %s", proposal.ID, proposal.Status)
	}
	return request, proposal, nil
}

// ensureNothingAccepted проверяет, что по заявке еще нет принятого предложения.
func ensureNothingAccepted(ctx context.Context, uow repository.UnitOfWork, requestID uuid.UUID) error {
	accepted, err := uow.Proposals().FindFirst(ctx, repository.ProposalFilter{
		RequestID: requestID,
		Statuses:  []models.ProposalStatus{models.AcceptedProposal},
	}, repository.OrderBy{})
	if err != nil {
		return err
	}
	if accepted != nil {
		return models.InvalidStatef("rental request %s already has accepted proposal %s", requestID, accepted.ID)
	}
	return nil
}

func findProposal(ctx context.Context, repos repository.Repositories, filter repository.ProposalFilter) (*models.Proposal, error) {
	proposal, err := repos.Proposals().FindFirst(ctx, filter, repository.OrderBy{})
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, models.NotFoundf("proposal %s not found", filter.ID)
	}
	return proposal, nil
}
