package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/senyabanana/container-rental/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// DBTX - общий интерфейс пула соединений и транзакции pgx.
// Begin внутри транзакции открывает точку сохранения.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// inUTC переводит прочитанные из базы моменты времени в UTC.
func inUTC(times ...*time.Time) {
	for _, t := range times {
		*t = t.UTC()
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

type postgresRepositories struct {
	requests  *PostgresRequestRepository
	proposals *PostgresProposalRepository
	rentals   *PostgresRentalRepository
	customers *PostgresCustomerRepository
}

func newPostgresRepositories(db DBTX) postgresRepositories {
	return postgresRepositories{
		requests:  NewPostgresRequestRepository(db),
		proposals: NewPostgresProposalRepository(db),
		rentals:   NewPostgresRentalRepository(db),
		customers: NewPostgresCustomerRepository(db),
	}
}

func (r postgresRepositories) Requests() RequestRepository   { return r.requests }
func (r postgresRepositories) Proposals() ProposalRepository { return r.proposals }
func (r postgresRepositories) Rentals() RentalRepository     { return r.rentals }
func (r postgresRepositories) Customers() CustomerRepository { return r.customers }

// PostgresStore - реализация Store поверх пула pgx.
type PostgresStore struct {
	postgresRepositories
	DB DBTX
}

// NewPostgresStore создаёт новый экземпляр PostgresStore.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return newPostgresStore(db)
}

func newPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{
		postgresRepositories: newPostgresRepositories(db),
		DB:                   db,
	}
}

// Begin открывает транзакцию, в которой работают все репозитории единицы работы.
func (s *PostgresStore) Begin(ctx context.Context) (UnitOfWork, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &postgresUnitOfWork{
		postgresRepositories: newPostgresRepositories(tx),
		tx:                   tx,
	}, nil
}

type postgresUnitOfWork struct {
	postgresRepositories
	tx pgx.Tx
}

func (u *postgresUnitOfWork) Commit(ctx context.Context) error {
	if err := u.tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", mapError(err, "transaction"))
	}
	return nil
}

func (u *postgresUnitOfWork) Rollback(ctx context.Context) error {
	err := u.tx.Rollback(ctx)
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// mapError переводит ошибки ограничений Postgres в доменные ошибки.
func mapError(err error, entity string) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case uniqueViolation:
		return models.Conflictf("%s violates unique constraint %s", entity, pgErr.ConstraintName)
	case foreignKeyViolation:
		return models.NotFoundf("%s references a missing entity (%s)", entity, pgErr.ConstraintName)
	}
	return err
}
