package repository

import (
	"testing"

	"github.com/senyabanana/container-rental/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequestQuery(t *testing.T) {
	customerID := uuid.New()

	t.Run("Filters and page", func(t *testing.T) {
		query, args, err := buildRequestQuery(RequestFilter{
			CustomerID: customerID,
			Statuses:   []models.RequestStatus{models.ActiveRequest},
			Page:       Page{Limit: 10, Offset: 20},
		}, OrderBy{}, false)
		require.NoError(t, err)

		assert.Equal(t, "SELECT "+requestColumns+" FROM rental_request WHERE customer_id = $1 AND status = ANY($2) ORDER BY seq LIMIT $3 OFFSET $4", query)
		require.Len(t, args, 4)
		assert.Equal(t, customerID, args[0])
		assert.Equal(t, pq.Array([]string{"Active"}), args[1])
		assert.Equal(t, 10, args[2])
		assert.Equal(t, 20, args[3])
	})

	t.Run("First for update", func(t *testing.T) {
		id := uuid.New()
		query, args, err := buildRequestQuery(RequestFilter{ID: id, ForUpdate: true, Page: Page{Limit: 50}}, OrderBy{Key: OrderByCreatedAt, Desc: true}, true)
		require.NoError(t, err)

		assert.Equal(t, "SELECT "+requestColumns+" FROM rental_request WHERE id = $1 ORDER BY created_at DESC, seq LIMIT $2 FOR UPDATE", query)
		assert.Equal(t, []interface{}{id, 1}, args)
	})

	t.Run("Unsupported order key", func(t *testing.T) {
		_, _, err := buildRequestQuery(RequestFilter{}, OrderBy{Key: OrderByName}, true)
		assert.ErrorIs(t, err, models.ErrValidation)
	})
}

func TestBuildProposalQuery(t *testing.T) {
	requestID := uuid.New()

	query, args, err := buildProposalQuery(ProposalFilter{
		RequestID: requestID,
		Statuses:  []models.ProposalStatus{models.PendingProposal, models.AcceptedProposal},
	}, OrderBy{}, false)
	require.NoError(t, err)

	assert.Equal(t, "SELECT "+proposalColumns+" FROM proposal WHERE request_id = $1 AND status = ANY($2) ORDER BY seq", query)
	assert.Equal(t, []interface{}{requestID, pq.Array([]string{"Pending", "Accepted"})}, args)
}

func TestBuildRentalQuery(t *testing.T) {
	query, args, err := buildRentalQuery(RentalFilter{Page: Page{Offset: 5}}, OrderBy{Key: OrderByStartedAt}, false)
	require.NoError(t, err)

	assert.Equal(t, "SELECT "+rentalColumns+" FROM rental ORDER BY started_at, seq OFFSET $1", query)
	assert.Equal(t, []interface{}{5}, args)
}

func TestBuildCustomerQuery(t *testing.T) {
	query, args, err := buildCustomerQuery(CustomerFilter{Email: "ops@example.com"}, OrderBy{Key: OrderByName}, true)
	require.NoError(t, err)

	assert.Equal(t, "SELECT "+customerColumns+" FROM customer WHERE email = $1 ORDER BY name, seq LIMIT $2", query)
	assert.Equal(t, []interface{}{"ops@example.com", 1}, args)
}
