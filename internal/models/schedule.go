package models

import "time"

// RentalSchedule - вычисленные даты аренды.
type RentalSchedule struct {
	StartedAt        time.Time
	ExpectedDelivery time.Time
	TerminatesAt     time.Time
}

// DeriveRentalSchedule вычисляет даты аренды по параметрам заявки и моменту принятия предложения.
// Доставка ожидается за leadTimeDays дней до начала работы, окончание - через durationDays дней после.
// Календарные дни отсчитываются в UTC.
func DeriveRentalSchedule(desiredStart time.Time, leadTimeDays, durationDays int, acceptedAt time.Time) (RentalSchedule, error) {
	if durationDays <= 0 {
		return RentalSchedule{}, Validationf("rental duration must be positive, got %d days", durationDays)
	}
	if leadTimeDays < 0 {
		return RentalSchedule{}, Validationf("lead time must not be negative, got %d days", leadTimeDays)
	}
	if desiredStart.IsZero() {
		return RentalSchedule{}, Validationf("desired operation start date is required")
	}

	desiredStart = desiredStart.UTC()
	return RentalSchedule{
		StartedAt:        acceptedAt,
		ExpectedDelivery: desiredStart.AddDate(0, 0, -leadTimeDays),
		TerminatesAt:     desiredStart.AddDate(0, 0, durationDays),
	}, nil
}
