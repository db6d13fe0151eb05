package services

import (
	"context"
	"errors"
	"time"

	"github.com/senyabanana/container-rental/internal/auth"
	"github.com/senyabanana/container-rental/internal/models"
	"github.com/senyabanana/container-rental/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Clock возвращает текущее время сервиса.
type Clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}

// asInvalidState переводит недопустимый переход статуса в ошибку InvalidState.
func asInvalidState(err error) error {
	if errors.Is(err, models.ErrIllegalTransition) {
		return models.InvalidStatef("%s", err.Error())
	}
	return err
}

type RequestService struct {
	Store  repository.Store
	Logger *logrus.Logger
	Now    Clock
}

// NewRequestService создаёт новый экземпляр RequestService.
func NewRequestService(store repository.Store, logger *logrus.Logger) *RequestService {
	return &RequestService{Store: store, Logger: logger, Now: utcNow}
}

// CreateRequest создает заявку от имени клиента из области доступа.
func (s *RequestService) CreateRequest(ctx context.Context, scope auth.Scope, in models.RentalRequestInput) (*models.RentalRequest, error) {
	customerID, ok := scope.CustomerID()
	if !ok {
		return nil, models.Unauthenticatedf("caller is not bound to a customer")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if in.AddressID != nil {
		customer, err := s.Store.Customers().FindFirst(ctx, repository.CustomerFilter{ID: customerID}, repository.OrderBy{})
		if err != nil {
			return nil, err
		}
		if customer == nil || !customer.HasAddress(*in.AddressID) {
			return nil, models.NotFoundf("address %s not found", *in.AddressID)
		}
	}

	request, err := models.NewRentalRequest(customerID, in, s.Now())
	if err != nil {
		return nil, err
	}
	created, err := s.Store.Requests().Add(ctx, request)
	if err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{
		"request_id":  created.ID,
		"customer_id": created.CustomerID,
	}).Info("rental request created")
	return created, nil
}

// GetRequest возвращает заявку вместе с предложениями.
func (s *RequestService) GetRequest(ctx context.Context, scope auth.Scope, requestID uuid.UUID) (*models.RentalRequest, error) {
	customerID, err := scope.Filter()
	if err != nil {
		return nil, err
	}
	return findRequest(ctx, s.Store, repository.RequestFilter{ID: requestID, CustomerID: customerID})
}

// ListRequests возвращает активные заявки клиента.
func (s *RequestService) ListRequests(ctx context.Context, scope auth.Scope, limit, offset int) ([]models.RentalRequest, error) {
	customerID, err := scope.Filter()
	if err != nil {
		return nil, err
	}
	return s.Store.Requests().FindMany(ctx, repository.RequestFilter{
		CustomerID: customerID,
		Statuses:   []models.RequestStatus{models.ActiveRequest},
		Page:       repository.Page{Limit: limit, Offset: offset},
	})
}

// CancelRequest отменяет заявку; предложения по ней не меняются.
func (s *RequestService) CancelRequest(ctx context.Context, scope auth.Scope, requestID uuid.UUID) (*models.RentalRequest, error) {
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
	if err := request.Cancel(); err != nil {
		return nil, asInvalidState(err)
	}
	cancelled, err := uow.Requests().Update(ctx, request)
	if err != nil {
		return nil, err
	}
	if err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	s.Logger.WithField("request_id", requestID).Info("rental request cancelled")
	return cancelled, nil
}

func findRequest(ctx context.Context, repos repository.Repositories, filter repository.RequestFilter) (*models.RentalRequest, error) {
	request, err := repos.Requests().FindFirst(ctx, filter, repository.OrderBy{})
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, models.NotFoundf("rental request %s not found", filter.ID)
	}
	return request, nil
}
