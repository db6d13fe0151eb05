package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RentalRequest представляет модель заявки клиента на аренду контейнеров.
type RentalRequest struct {
	ID                uuid.UUID     `json:"id"`
	CustomerID        uuid.UUID     `json:"customerId"`
	Description       string        `json:"description"`
	EstimatedQuantity int           `json:"estimatedQuantity"`
	Purpose           string        `json:"purpose"`
	DesiredStart      time.Time     `json:"desiredStart"`
	LeadTimeDays      int           `json:"leadTimeDays"`
	DurationDays      int           `json:"durationDays"`
	AddressID         *uuid.UUID    `json:"addressId,omitempty"`
	Status            RequestStatus `json:"status"`
	CreatedAt         time.Time     `json:"createdAt"`
	Proposals         []Proposal    `json:"proposals,omitempty"`
}

// RentalRequestInput представляет данные для создания заявки.
type RentalRequestInput struct {
	Description       string
	EstimatedQuantity int
	Purpose           string
	DesiredStart      time.Time
	LeadTimeDays      int
	DurationDays      int
	AddressID         *uuid.UUID
}

// Validate проверяет обязательные поля заявки.
func (in RentalRequestInput) Validate() error {
	var missing []string
	if strings.TrimSpace(in.Description) == "" {
		missing = append(missing, "description")
	}
	if in.EstimatedQuantity <= 0 {
		missing = append(missing, "estimatedQuantity")
	}
	if strings.TrimSpace(in.Purpose) == "" {
		missing = append(missing, "purpose")
	}
	if in.DesiredStart.IsZero() {
		missing = append(missing, "desiredStart")
	}
	if len(missing) > 0 {
		return Validationf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if in.DurationDays <= 0 {
		return Validationf("durationDays must be positive")
	}
	if in.LeadTimeDays < 0 {
		return Validationf("leadTimeDays must not be negative")
	}
	return nil
}

// NewRentalRequest создает активную заявку клиента.
func NewRentalRequest(customerID uuid.UUID, in RentalRequestInput, now time.Time) (*RentalRequest, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &RentalRequest{
		ID:                uuid.New(),
		CustomerID:        customerID,
		Description:       strings.TrimSpace(in.Description),
		EstimatedQuantity: in.EstimatedQuantity,
		Purpose:           strings.TrimSpace(in.Purpose),
		DesiredStart:      in.DesiredStart,
		LeadTimeDays:      in.LeadTimeDays,
		DurationDays:      in.DurationDays,
		AddressID:         in.AddressID,
		Status:            ActiveRequest,
		CreatedAt:         now,
	}, nil
}

// Cancel переводит заявку в статус Cancelled.
func (r *RentalRequest) Cancel() error {
	if !r.Status.CanTransitionTo(CancelledRequest) {
		return fmt.Errorf("%w: request %s is %s", ErrIllegalTransition, r.ID, r.Status)
	}
	r.Status = CancelledRequest
	return nil
}

// Schedule вычисляет даты аренды для момента принятия предложения.
func (r *RentalRequest) Schedule(acceptedAt time.Time) (RentalSchedule, error) {
	return DeriveRentalSchedule(r.DesiredStart, r.LeadTimeDays, r.DurationDays, acceptedAt)
}
