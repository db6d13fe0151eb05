package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/senyabanana/container-rental/internal/models"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore подключается к TEST_POSTGRES_CONN, накатывает миграции и очищает таблицы.
func newTestStore(t *testing.T) *PostgresStore {
	t.Helper()
	conn := os.Getenv("TEST_POSTGRES_CONN")
	if conn == "" {
		t.Skip("TEST_POSTGRES_CONN is not set")
	}

	migration, err := migrate.New("file://../../migrations", conn)
	require.NoError(t, err)
	if err := migration.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		require.NoError(t, err)
	}
	migration.Close()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, conn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE rental, proposal_comment, proposal, rental_request, address, customer`)
	require.NoError(t, err)
	return NewPostgresStore(pool)
}

func testRequest(customerID uuid.UUID) *models.RentalRequest {
	return &models.RentalRequest{
		ID:                uuid.New(),
		CustomerID:        customerID,
		Description:       "two dry containers",
		EstimatedQuantity: 2,
		Purpose:           "site storage",
		DesiredStart:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		LeadTimeDays:      5,
		DurationDays:      30,
		Status:            models.ActiveRequest,
		CreatedAt:         time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}

func testProposal(request *models.RentalRequest) *models.Proposal {
	return &models.Proposal{
		ID:           uuid.New(),
		RequestID:    request.ID,
		CustomerID:   request.CustomerID,
		TotalValue:   250050,
		CreatedAt:    time.Date(2025, 2, 1, 13, 0, 0, 0, time.UTC),
		ExpiresAt:    time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
		DocumentName: "quote.pdf",
		Status:       models.PendingProposal,
	}
}

func TestPostgresStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	customerID := uuid.New()

	request, err := store.Requests().Add(ctx, testRequest(customerID))
	require.NoError(t, err)

	t.Run("Request round trip", func(t *testing.T) {
		found, err := store.Requests().FindFirst(ctx, RequestFilter{ID: request.ID, CustomerID: customerID}, OrderBy{})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, models.ActiveRequest, found.Status)
		assert.True(t, request.DesiredStart.Equal(found.DesiredStart))

		missing, err := store.Requests().FindFirst(ctx, RequestFilter{ID: request.ID, CustomerID: uuid.New()}, OrderBy{})
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("Proposal with comments", func(t *testing.T) {
		proposal := testProposal(request)
		_, err := proposal.AddComment("vendor", "includes delivery", proposal.CreatedAt)
		require.NoError(t, err)
		_, err = store.Proposals().Add(ctx, proposal)
		require.NoError(t, err)

		_, err = proposal.AddComment("alice", "thanks", proposal.CreatedAt.Add(time.Hour))
		require.NoError(t, err)
		_, err = store.Proposals().Update(ctx, proposal)
		require.NoError(t, err)

		found, err := store.Proposals().FindFirst(ctx, ProposalFilter{ID: proposal.ID}, OrderBy{})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, models.Money(250050), found.TotalValue)
		require.Len(t, found.Comments, 2)
		assert.Equal(t, "vendor", found.Comments[0].Author)
		assert.Equal(t, "alice", found.Comments[1].Author)
	})

	t.Run("Duplicate id", func(t *testing.T) {
		_, err := store.Requests().Add(ctx, request)
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("Missing parent", func(t *testing.T) {
		orphan := testProposal(testRequest(customerID))
		_, err := store.Proposals().Add(ctx, orphan)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("One accepted proposal per request", func(t *testing.T) {
		first := testProposal(request)
		first.Status = models.AcceptedProposal
		_, err := store.Proposals().Add(ctx, first)
		require.NoError(t, err)

		second := testProposal(request)
		second.Status = models.AcceptedProposal
		_, err = store.Proposals().Add(ctx, second)
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("Status filter and paging", func(t *testing.T) {
		cancelled := testRequest(customerID)
		cancelled.Status = models.CancelledRequest
		_, err := store.Requests().Add(ctx, cancelled)
		require.NoError(t, err)

		active, err := store.Requests().FindMany(ctx, RequestFilter{
			CustomerID: customerID,
			Statuses:   []models.RequestStatus{models.ActiveRequest},
		})
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, request.ID, active[0].ID)

		page, err := store.Requests().FindMany(ctx, RequestFilter{CustomerID: customerID, Page: Page{Limit: 1, Offset: 1}})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, cancelled.ID, page[0].ID)
	})
}

func TestPostgresUnitOfWork(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	request, err := store.Requests().Add(ctx, testRequest(uuid.New()))
	require.NoError(t, err)

	t.Run("Rollback discards writes", func(t *testing.T) {
		uow, err := store.Begin(ctx)
		require.NoError(t, err)
		proposal := testProposal(request)
		_, err = uow.Proposals().Add(ctx, proposal)
		require.NoError(t, err)
		require.NoError(t, uow.Rollback(ctx))

		found, err := store.Proposals().FindFirst(ctx, ProposalFilter{ID: proposal.ID}, OrderBy{})
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("Commit publishes writes", func(t *testing.T) {
		uow, err := store.Begin(ctx)
		require.NoError(t, err)
		defer uow.Rollback(ctx)

		proposal := testProposal(request)
		proposal.Status = models.AcceptedProposal
		_, err = uow.Proposals().Add(ctx, proposal)
		require.NoError(t, err)
		rental, err := models.NewRental(request, proposal, time.Date(2025, 2, 1, 12, 30, 0, 0, time.UTC))
		require.NoError(t, err)
		_, err = uow.Rentals().Add(ctx, rental)
		require.NoError(t, err)
		require.NoError(t, uow.Commit(ctx))
		assert.NoError(t, uow.Rollback(ctx))

		found, err := store.Rentals().FindFirst(ctx, RentalFilter{ProposalID: proposal.ID}, OrderBy{})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, models.ActiveRental, found.Status)
		assert.True(t, time.Date(2025, 2, 24, 0, 0, 0, 0, time.UTC).Equal(found.ExpectedDelivery))
	})
}
