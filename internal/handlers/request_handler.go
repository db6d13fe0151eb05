package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/senyabanana/container-rental/internal/models"
	"github.com/senyabanana/container-rental/internal/services"
	"github.com/senyabanana/container-rental/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestHandler - структура для обработки HTTP-запросов по заявкам.
type RequestHandler struct {
	Service *services.RequestService
	Logger  *logrus.Logger
	Timeout time.Duration
}

// NewRequestHandler создает новый экземпляр RequestHandler.
func NewRequestHandler(service *services.RequestService, logger *logrus.Logger, timeout time.Duration) *RequestHandler {
	return &RequestHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

type createRequestBody struct {
	Description       string     `json:"description"`
	EstimatedQuantity int        `json:"estimatedQuantity"`
	Purpose           string     `json:"purpose"`
	DesiredStart      utils.Date `json:"desiredStart"`
	LeadTimeDays      int        `json:"leadTimeDays"`
	DurationDays      int        `json:"durationDays"`
	AddressID         *uuid.UUID `json:"addressId"`
}

// CreateRequest обрабатывает запросы для создания заявки.
func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var body createRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(h.Logger, w, r, models.Validationf("invalid request body: %v", err))
		return
	}

	_, scope := scopeOf(r)
	request, err := h.Service.CreateRequest(ctx, scope, models.RentalRequestInput{
		Description:       body.Description,
		EstimatedQuantity: body.EstimatedQuantity,
		Purpose:           body.Purpose,
		DesiredStart:      body.DesiredStart.Time,
		LeadTimeDays:      body.LeadTimeDays,
		DurationDays:      body.DurationDays,
		AddressID:         body.AddressID,
	})
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}

	if err := utils.WriteJSON(w, http.StatusCreated, request); err != nil {
		h.Logger.WithError(err).Error("failed to encode response")
	}
}

// GetRequests обрабатывает запросы для получения активных заявок клиента.
func (h *RequestHandler) GetRequests(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limit, offset, err := utils.ParseLimitOffset(r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}

	_, scope := scopeOf(r)
	requests, err := h.Service.ListRequests(ctx, scope, limit, offset)
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, requests); err != nil {
		h.Logger.WithError(err).Error("failed to encode response")
	}
}

// GetRequest обрабатывает запросы для получения заявки вместе с предложениями.
func (h *RequestHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requestID, err := utils.ParseID(r, "requestId")
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}

	_, scope := scopeOf(r)
	request, err := h.Service.GetRequest(ctx, scope, requestID)
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, request); err != nil {
		h.Logger.WithError(err).Error("failed to encode response")
	}
}

// CancelRequest обрабатывает запросы для отмены заявки.
func (h *RequestHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	requestID, err := utils.ParseID(r, "requestId")
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}

	_, scope := scopeOf(r)
	if _, err := h.Service.CancelRequest(ctx, scope, requestID); err != nil {
		respondError(h.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
