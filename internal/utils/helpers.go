package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/senyabanana/container-rental/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultLimit = 5
	maxLimit     = 50
)

// SendErrorResponse отправляет ошибку в формате JSON.
func SendErrorResponse(w http.ResponseWriter, errorResponse *models.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errorResponse.StatusCode)
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		logrus.WithError(err).Error("failed to encode error response")
	}
}

// SendError переводит ошибку сервиса в HTTP-ответ; не доменные ошибки скрываются за 500.
func SendError(w http.ResponseWriter, err error) *models.ErrorResponse {
	var errorResponse *models.ErrorResponse
	if !errors.As(err, &errorResponse) || errorResponse.StatusCode == 0 {
		errorResponse = &models.ErrorResponse{
			Kind:       "InternalError",
			StatusCode: http.StatusInternalServerError,
			Message:    "internal server error",
		}
	}
	SendErrorResponse(w, errorResponse)
	return errorResponse
}

// WriteJSON отправляет значение в формате JSON с указанным кодом.
func WriteJSON(w http.ResponseWriter, statusCode int, value interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(value)
}

// ParseLimitOffset обрабатывает limit и offset.
func ParseLimitOffset(limitStr, offsetStr string) (int, int, error) {
	limit, offset := defaultLimit, 0
	var err error

	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > maxLimit {
			return 0, 0, models.Validationf("invalid limit parameter, must be a positive integer [1:%d]", maxLimit)
		}
	}

	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return 0, 0, models.Validationf("invalid offset parameter, must be a non-negative integer")
		}
	}

	return limit, offset, nil
}

// ParseID разбирает идентификатор из пути запроса.
func ParseID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, models.Validationf("invalid %s: %q", name, r.PathValue(name))
	}
	return id, nil
}

// ParseDate принимает дату в виде "2006-01-02" или RFC 3339.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if date, err := time.Parse(time.DateOnly, value); err == nil {
		return date, nil
	}
	date, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, models.Validationf("invalid date %q, expected YYYY-MM-DD or RFC 3339", value)
	}
	return date, nil
}

// BearerToken извлекает токен из заголовка Authorization.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Date - дата во входных данных JSON.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(value)
	if err != nil {
		return err
	}
	d.Time = parsed
	return nil
}
