package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/senyabanana/container-rental/internal/auth"
	"github.com/senyabanana/container-rental/internal/handlers"
	"github.com/senyabanana/container-rental/internal/models"
	"github.com/senyabanana/container-rental/internal/repository/memory"
	"github.com/senyabanana/container-rental/internal/services"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type resolverMock struct {
	mock.Mock
}

func (m *resolverMock) Resolve(_ context.Context, token string) (auth.Principal, error) {
	args := m.Called(token)
	return args.Get(0).(auth.Principal), args.Error(1)
}

var now = time.Date(2025, 2, 1, 12, 30, 0, 0, time.UTC)

type testServer struct {
	handler   http.Handler
	resolver  *resolverMock
	customerA uuid.UUID
	customerB uuid.UUID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.NewStore()
	clock := func() time.Time { return now }
	requestService := services.NewRequestService(store, logger)
	requestService.Now = clock
	proposalService := services.NewProposalService(store, logger)
	proposalService.Now = clock

	s := &testServer{
		resolver:  &resolverMock{},
		customerA: uuid.New(),
		customerB: uuid.New(),
	}
	s.resolver.On("Resolve", "customer-a").Return(auth.Principal{
		Subject: "alice", CustomerID: s.customerA, Roles: []auth.Role{auth.RoleCustomer},
	}, nil)
	s.resolver.On("Resolve", "customer-b").Return(auth.Principal{
		Subject: "bob", CustomerID: s.customerB, Roles: []auth.Role{auth.RoleCustomer},
	}, nil)
	s.resolver.On("Resolve", "support").Return(auth.Principal{
		Subject: "vendor", Roles: []auth.Role{auth.RoleSupport},
	}, nil)
	s.resolver.On("Resolve", mock.Anything).Return(auth.Principal{}, models.Unauthenticatedf("invalid token"))

	timeout := time.Second
	s.handler = InitRoutes(Handlers{
		Auth:      handlers.NewAuthenticator(s.resolver, logger),
		Requests:  handlers.NewRequestHandler(requestService, logger, timeout),
		Proposals: handlers.NewProposalHandler(proposalService, logger, timeout),
		Rentals:   handlers.NewRentalHandler(services.NewRentalService(store), logger, timeout),
	})
	return s
}

func (s *testServer) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) doJSON(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	return s.do(t, method, path, token, body, "application/json")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&value))
	return value
}

func (s *testServer) createRequest(t *testing.T, token string) models.RentalRequest {
	t.Helper()
	rec := s.doJSON(t, http.MethodPost, "/api/rental-requests", token, map[string]interface{}{
		"description":       "two dry containers",
		"estimatedQuantity": 2,
		"purpose":           "site storage",
		"desiredStart":      "2025-03-01",
		"leadTimeDays":      5,
		"durationDays":      30,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.RentalRequest](t, rec)
}

func (s *testServer) submitProposal(t *testing.T, requestID uuid.UUID) models.Proposal {
	t.Helper()
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("totalValue", "2500.00"))
	require.NoError(t, form.WriteField("expiresAt", "2025-02-15"))
	file, err := form.CreateFormFile("file", "quote.pdf")
	require.NoError(t, err)
	_, err = file.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	rec := s.do(t, http.MethodPost, "/api/rental-requests/"+requestID.String()+"/proposals", "support", &body, form.FormDataContentType())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Proposal](t, rec)
}

func proposalPath(requestID, proposalID uuid.UUID, action string) string {
	path := "/api/rental-requests/" + requestID.String() + "/proposals/" + proposalID.String()
	if action != "" {
		path += "/" + action
	}
	return path
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/ping", "", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	t.Run("Missing token", func(t *testing.T) {
		rec := s.doJSON(t, http.MethodGet, "/api/rental-requests", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, models.KindUnauthenticated, decode[models.ErrorResponse](t, rec).Kind)
	})

	t.Run("Unknown token", func(t *testing.T) {
		rec := s.doJSON(t, http.MethodGet, "/api/rentals", "forged", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Support cannot create requests", func(t *testing.T) {
		rec := s.doJSON(t, http.MethodPost, "/api/rental-requests", "support", map[string]interface{}{})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Customer cannot submit proposals", func(t *testing.T) {
		request := s.createRequest(t, "customer-a")
		rec := s.doJSON(t, http.MethodPost, "/api/rental-requests/"+request.ID.String()+"/proposals", "customer-a", map[string]interface{}{
			"totalValue":   "100.00",
			"expiresAt":    "2025-02-15",
			"documentName": "quote.pdf",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequestEndpoints(t *testing.T) {
	s := newTestServer(t)

	t.Run("Validation", func(t *testing.T) {
		rec := s.doJSON(t, http.MethodPost, "/api/rental-requests", "customer-a", map[string]interface{}{
			"description":  "containers",
			"durationDays": 30,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, models.KindValidation, decode[models.ErrorResponse](t, rec).Kind)
	})

	t.Run("Malformed body", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/rental-requests", "customer-a", strings.NewReader("{"), "application/json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Scoped to customer", func(t *testing.T) {
		request := s.createRequest(t, "customer-a")
		assert.Equal(t, s.customerA, request.CustomerID)
		assert.Equal(t, models.ActiveRequest, request.Status)

		rec := s.doJSON(t, http.MethodGet, "/api/rental-requests/"+request.ID.String(), "customer-b", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = s.doJSON(t, http.MethodGet, "/api/rental-requests/"+request.ID.String(), "customer-a", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, request.ID, decode[models.RentalRequest](t, rec).ID)

		rec = s.doJSON(t, http.MethodGet, "/api/rental-requests", "customer-b", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode[[]models.RentalRequest](t, rec))
	})

	t.Run("Invalid id", func(t *testing.T) {
		rec := s.doJSON(t, http.MethodGet, "/api/rental-requests/not-a-uuid", "customer-a", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Invalid paging", func(t *testing.T) {
		rec := s.doJSON(t, http.MethodGet, "/api/rental-requests?limit=0", "customer-a", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Cancel", func(t *testing.T) {
		request := s.createRequest(t, "customer-b")

		rec := s.doJSON(t, http.MethodDelete, "/api/rental-requests/"+request.ID.String(), "customer-b", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = s.doJSON(t, http.MethodDelete, "/api/rental-requests/"+request.ID.String(), "customer-b", nil)
		assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
		assert.Equal(t, models.KindInvalidState, decode[models.ErrorResponse](t, rec).Kind)

		rec = s.doJSON(t, http.MethodGet, "/api/rental-requests", "customer-b", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode[[]models.RentalRequest](t, rec))
	})
}

func TestProposalLifecycle(t *testing.T) {
	s := newTestServer(t)
	request := s.createRequest(t, "customer-a")
	proposal := s.submitProposal(t, request.ID)

	assert.Equal(t, "quote.pdf", proposal.DocumentName)
	assert.Equal(t, models.Money(250000), proposal.TotalValue)
	assert.Equal(t, models.PendingProposal, proposal.Status)

	t.Run("Hidden from other customers", func(t *testing.T) {
		rec := s.doJSON(t, http.MethodGet, proposalPath(request.ID, proposal.ID, ""), "customer-b", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = s.doJSON(t, http.MethodPatch, proposalPath(request.ID, proposal.ID, "accept"), "customer-b", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Comment from both sides", func(t *testing.T) {
		rec := s.doJSON(t, http.MethodPost, proposalPath(request.ID, proposal.ID, "comment"), "support", map[string]string{"text": "price includes delivery"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, "vendor", decode[models.Comment](t, rec).Author)

		rec = s.doJSON(t, http.MethodPost, proposalPath(request.ID, proposal.ID, "comment"), "customer-a", map[string]string{"text": "thanks"})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = s.doJSON(t, http.MethodPost, proposalPath(request.ID, proposal.ID, "comment"), "customer-a", map[string]string{"text": "  "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = s.doJSON(t, http.MethodGet, proposalPath(request.ID, proposal.ID, ""), "customer-a", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[models.Proposal](t, rec).Comments, 2)
	})

	t.Run("Accept creates rental", func(t *testing.T) {
		rec := s.doJSON(t, http.MethodPatch, proposalPath(request.ID, proposal.ID, "accept"), "customer-a", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body struct {
			Proposal models.Proposal `json:"proposal"`
			Rental   models.Rental   `json:"rental"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, models.AcceptedProposal, body.Proposal.Status)
		assert.Equal(t, proposal.ID, body.Rental.ProposalID)
		assert.Equal(t, now, body.Rental.StartedAt)
		assert.Equal(t, time.Date(2025, 2, 24, 0, 0, 0, 0, time.UTC), body.Rental.ExpectedDelivery)
		assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), body.Rental.TerminatesAt)

		rec = s.doJSON(t, http.MethodGet, "/api/rentals", "customer-a", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		rentals := decode[[]models.Rental](t, rec)
		require.Len(t, rentals, 1)

		rec = s.doJSON(t, http.MethodGet, "/api/rentals/"+rentals[0].ID.String(), "customer-b", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = s.doJSON(t, http.MethodGet, "/api/rentals/"+rentals[0].ID.String(), "customer-a", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Accepted proposal is final", func(t *testing.T) {
		rec := s.doJSON(t, http.MethodPatch, proposalPath(request.ID, proposal.ID, "accept"), "customer-a", nil)
		assert.Equal(t, http.StatusPreconditionFailed, rec.Code)

		rec = s.doJSON(t, http.MethodPatch, proposalPath(request.ID, proposal.ID, "reject"), "customer-a", nil)
		assert.Equal(t, http.StatusPreconditionFailed, rec.Code)
	})

	t.Run("Second proposal cannot be accepted", func(t *testing.T) {
		other := s.submitProposal(t, request.ID)

		rec := s.doJSON(t, http.MethodPatch, proposalPath(request.ID, other.ID, "accept"), "customer-a", nil)
		assert.Equal(t, http.StatusPreconditionFailed, rec.Code)

		rec = s.doJSON(t, http.MethodPatch, proposalPath(request.ID, other.ID, "reject"), "customer-a", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, models.RejectedProposal, decode[models.Proposal](t, rec).Status)

		rec = s.doJSON(t, http.MethodGet, "/api/rental-requests/"+request.ID.String()+"/proposals", "customer-a", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]models.Proposal](t, rec), 2)
	})
}

func TestRejectProposal(t *testing.T) {
	s := newTestServer(t)
	request := s.createRequest(t, "customer-a")
	proposal := s.submitProposal(t, request.ID)

	rec := s.doJSON(t, http.MethodPatch, proposalPath(request.ID, proposal.ID, "reject"), "customer-a", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.RejectedProposal, decode[models.Proposal](t, rec).Status)

	rec = s.doJSON(t, http.MethodPatch, proposalPath(request.ID, proposal.ID, "accept"), "customer-a", nil)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)

	rec = s.doJSON(t, http.MethodGet, "/api/rentals", "customer-a", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.Rental](t, rec))
}

func TestSubmitProposalJSON(t *testing.T) {
	s := newTestServer(t)
	request := s.createRequest(t, "customer-a")
	path := "/api/rental-requests/" + request.ID.String() + "/proposals"

	rec := s.doJSON(t, http.MethodPost, path, "support", map[string]interface{}{
		"totalValue":   1999.5,
		"expiresAt":    "2025-02-15",
		"documentName": "offer.pdf",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, models.Money(199950), decode[models.Proposal](t, rec).TotalValue)

	rec = s.doJSON(t, http.MethodPost, path, "support", map[string]interface{}{
		"totalValue": 10,
		"expiresAt":  "2025-02-15",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.doJSON(t, http.MethodPost, "/api/rental-requests/"+uuid.NewString()+"/proposals", "support", map[string]interface{}{
		"totalValue":   10,
		"expiresAt":    "2025-02-15",
		"documentName": "offer.pdf",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
