package repository

import (
	"context"

	"github.com/senyabanana/container-rental/internal/models"

	"github.com/google/uuid"
)

// OrderKey - поле упорядочивания выборки.
type OrderKey string

const (
	OrderByID        OrderKey = "id"
	OrderByCreatedAt OrderKey = "created_at"
	OrderByStartedAt OrderKey = "started_at"
	OrderByName      OrderKey = "name"
)

// OrderBy описывает упорядочивание; равные значения упорядочиваются по порядку вставки.
type OrderBy struct {
	Key  OrderKey
	Desc bool
}

// Page ограничивает выборку; нулевой Limit означает выборку без ограничения.
type Page struct {
	Limit  int
	Offset int
}

// RequestFilter - предикат выборки заявок. Нулевые поля не участвуют в фильтрации.
type RequestFilter struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Statuses   []models.RequestStatus
	ForUpdate  bool
	Page
}

// ProposalFilter - предикат выборки предложений.
type ProposalFilter struct {
	ID         uuid.UUID
	RequestID  uuid.UUID
	CustomerID uuid.UUID
	Statuses   []models.ProposalStatus
	ForUpdate  bool
	Page
}

// RentalFilter - предикат выборки аренд.
type RentalFilter struct {
	ID         uuid.UUID
	ProposalID uuid.UUID
	CustomerID uuid.UUID
	Statuses   []models.RentalStatus
	Page
}

// CustomerFilter - предикат выборки клиентов.
type CustomerFilter struct {
	ID    uuid.UUID
	Email string
	Page
}

// Repository - контракт доступа к сущностям одного типа.
type Repository[T any, F any] interface {
	// FindFirst возвращает первую подходящую сущность или nil, если ее нет.
	FindFirst(ctx context.Context, filter F, order OrderBy) (*T, error)
	FindMany(ctx context.Context, filter F) ([]T, error)
	Add(ctx context.Context, entity *T) (*T, error)
	Update(ctx context.Context, entity *T) (*T, error)
	Remove(ctx context.Context, entity *T) error
}

// RequestRepository - интерфейс для работы с заявками.
type RequestRepository interface {
	Repository[models.RentalRequest, RequestFilter]
}

// ProposalRepository - интерфейс для работы с предложениями и их комментариями.
type ProposalRepository interface {
	Repository[models.Proposal, ProposalFilter]
}

// RentalRepository - интерфейс для работы с арендами.
type RentalRepository interface {
	Repository[models.Rental, RentalFilter]
}

// CustomerRepository - интерфейс для чтения клиентов и их адресов.
type CustomerRepository interface {
	Repository[models.Customer, CustomerFilter]
}

// Repositories объединяет репозитории всех сущностей.
type Repositories interface {
	Requests() RequestRepository
	Proposals() ProposalRepository
	Rentals() RentalRepository
	Customers() CustomerRepository
}

// UnitOfWork - явная транзакция, в которой участвуют все репозитории.
// Rollback после Commit ничего не делает, поэтому его можно вызывать через defer.
type UnitOfWork interface {
	Repositories
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Store предоставляет репозитории вне транзакции и открывает единицы работы.
type Store interface {
	Repositories
	Begin(ctx context.Context) (UnitOfWork, error)
}
