package handlers

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"time"

	"github.com/senyabanana/container-rental/internal/models"
	"github.com/senyabanana/container-rental/internal/services"
	"github.com/senyabanana/container-rental/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxUploadSize = 10 << 20

// ProposalHandler - структура для обработки HTTP-запросов по предложениям.
type ProposalHandler struct {
	Service *services.ProposalService
	Logger  *logrus.Logger
	Timeout time.Duration
}

// NewProposalHandler создает новый экземпляр ProposalHandler.
func NewProposalHandler(service *services.ProposalService, logger *logrus.Logger, timeout time.Duration) *ProposalHandler {
	return &ProposalHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

type submitProposalBody struct {
	TotalValue   models.Money `json:"totalValue"`
	ExpiresAt    utils.Date   `json:"expiresAt"`
	DocumentName string       `json:"documentName"`
}

type commentBody struct {
	Text string `json:"text"`
}

type acceptResponse struct {
	Proposal *models.Proposal `json:"proposal"`
	Rental   *models.Rental   `json:"rental"`
}

// decodeProposal читает предложение из JSON или из multipart-формы с файлом документа.
func decodeProposal(r *http.Request) (models.ProposalInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var body submitProposalBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return models.ProposalInput{}, models.Validationf("invalid request body: %v", err)
		}
		return models.ProposalInput{
			TotalValue:   body.TotalValue,
			ExpiresAt:    body.ExpiresAt.Time,
			DocumentName: body.DocumentName,
		}, nil
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return models.ProposalInput{}, models.Validationf("invalid multipart form: %v", err)
	}
	var in models.ProposalInput
	if value := r.FormValue("totalValue"); value != "" {
		total, err := models.ParseMoney(value)
		if err != nil {
			return models.ProposalInput{}, err
		}
		in.TotalValue = total
	}
	expiresAt, err := utils.ParseDate(r.FormValue("expiresAt"))
	if err != nil {
		return models.ProposalInput{}, err
	}
	in.ExpiresAt = expiresAt

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		in.DocumentName = header.Filename
	}
	return in, nil
}

// SubmitProposal обрабатывает запросы для отправки предложения по заявке.
func (h *ProposalHandler) SubmitProposal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requestID, err := utils.ParseID(r, "requestId")
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}
	in, err := decodeProposal(r)
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}

	_, scope := scopeOf(r)
	proposal, err := h.Service.SubmitProposal(ctx, scope, requestID, in)
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}

	if err := utils.WriteJSON(w, http.StatusCreated, proposal); err != nil {
		h.Logger.WithError(err).Error("failed to encode response")
	}
}

// GetProposals обрабатывает запросы для получения предложений по заявке.
func (h *ProposalHandler) GetProposals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requestID, err := utils.ParseID(r, "requestId")
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}

	_, scope := scopeOf(r)
	proposals, err := h.Service.ListProposals(ctx, scope, requestID)
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, proposals); err != nil {
		h.Logger.WithError(err).Error("failed to encode response")
	}
}

// GetProposal обрабатывает запросы для получения предложения с комментариями.
func (h *ProposalHandler) GetProposal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requestID, proposalID, err := h.parseIDs(r)
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}

	_, scope := scopeOf(r)
	proposal, err := h.Service.GetProposal(ctx, scope, requestID, proposalID)
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, proposal); err != nil {
		h.Logger.WithError(err).Error("failed to encode response")
	}
}

// AcceptProposal обрабатывает запросы для принятия предложения.
func (h *ProposalHandler) AcceptProposal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requestID, proposalID, err := h.parseIDs(r)
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}

	_, scope := scopeOf(r)
	proposal, rental, err := h.Service.AcceptProposal(ctx, scope, requestID, proposalID)
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, acceptResponse{Proposal: proposal, Rental: rental}); err != nil {
		h.Logger.WithError(err).Error("failed to encode response")
	}
}

// RejectProposal обрабатывает запросы для отклонения предложения.
func (h *ProposalHandler) RejectProposal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requestID, proposalID, err := h.parseIDs(r)
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}

	_, scope := scopeOf(r)
	proposal, err := h.Service.RejectProposal(ctx, scope, requestID, proposalID)
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, proposal); err != nil {
		h.Logger.WithError(err).Error("failed to encode response")
	}
}

// AddComment обрабатывает запросы для добавления комментария к предложению.
func (h *ProposalHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requestID, proposalID, err := h.parseIDs(r)
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}
	var body commentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(h.Logger, w, r, models.Validationf("invalid request body: %v", err))
		return
	}

	principal, scope := scopeOf(r)
	comment, err := h.Service.AddComment(ctx, scope, requestID, proposalID, principal.Subject, body.Text)
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}

	if err := utils.WriteJSON(w, http.StatusCreated, comment); err != nil {
		h.Logger.WithError(err).Error("failed to encode response")
	}
}

func (h *ProposalHandler) parseIDs(r *http.Request) (requestID, proposalID uuid.UUID, err error) {
	requestID, err = utils.ParseID(r, "requestId")
	if err != nil {
		return requestID, proposalID, err
	}
	proposalID, err = utils.ParseID(r, "proposalId")
	return requestID, proposalID, err
}
