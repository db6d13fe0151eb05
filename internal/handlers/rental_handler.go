package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/senyabanana/container-rental/internal/services"
	"github.com/senyabanana/container-rental/internal/utils"

	"github.com/sirupsen/logrus"
)

// RentalHandler - структура для обработки HTTP-запросов по арендам.
type RentalHandler struct {
	Service *services.RentalService
	Logger  *logrus.Logger
	Timeout time.Duration
}

// NewRentalHandler создает новый экземпляр RentalHandler.
func NewRentalHandler(service *services.RentalService, logger *logrus.Logger, timeout time.Duration) *RentalHandler {
	return &RentalHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GetRentals обрабатывает запросы для получения аренд клиента.
func (h *RentalHandler) GetRentals(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limit, offset, err := utils.ParseLimitOffset(r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}

	_, scope := scopeOf(r)
	rentals, err := h.Service.ListRentals(ctx, scope, limit, offset)
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, rentals); err != nil {
		h.Logger.WithError(err).Error("failed to encode response")
	}
}

// GetRental обрабатывает запросы для получения аренды.
func (h *RentalHandler) GetRental(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	rentalID, err := utils.ParseID(r, "rentalId")
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}

	_, scope := scopeOf(r)
	rental, err := h.Service.GetRental(ctx, scope, rentalID)
	if err != nil {
		respondError(h.Logger, w, r, err)
		return
	}

	if err := utils.WriteJSON(w, http.StatusOK, rental); err != nil {
		h.Logger.WithError(err).Error("failed to encode response")
	}
}
