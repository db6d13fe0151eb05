// Package auth определяет вызывающего и область данных, доступную ему.
package auth

import (
	"context"

	"github.com/senyabanana/container-rental/internal/models"

	"github.com/google/uuid"
)

// Role - роль вызывающего.
type Role string

const (
	RoleCustomer Role = "customer" // Клиент, работающий со своими заявками
	RoleSupport  Role = "support"  // Сотрудник поставщика, отправляющий предложения
)

// Principal - идентичность вызывающего, полученная из токена.
type Principal struct {
	Subject    string
	CustomerID uuid.UUID
	Roles      []Role
}

// HasRole проверяет наличие роли у вызывающего.
func (p Principal) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Scope возвращает область данных: клиент видит только свои данные, поддержка - все.
func (p Principal) Scope() Scope {
	if p.HasRole(RoleCustomer) && p.CustomerID != uuid.Nil {
		return CustomerScope(p.CustomerID)
	}
	if p.HasRole(RoleSupport) {
		return SupportScope()
	}
	return Scope{}
}

// Scope ограничивает выборки клиентом. Нулевое значение не дает доступа ни к чему.
type Scope struct {
	customerID   uuid.UUID
	unrestricted bool
}

// CustomerScope ограничивает доступ данными клиента.
func CustomerScope(customerID uuid.UUID) Scope {
	return Scope{customerID: customerID}
}

// SupportScope дает доступ без ограничения по клиенту.
func SupportScope() Scope {
	return Scope{unrestricted: true}
}

// CustomerID возвращает клиента, которым ограничена область.
func (s Scope) CustomerID() (uuid.UUID, bool) {
	return s.customerID, s.customerID != uuid.Nil
}

// IsUnrestricted сообщает, снято ли ограничение по клиенту.
func (s Scope) IsUnrestricted() bool {
	return s.unrestricted
}

// Allows проверяет, доступны ли данные клиента в этой области.
func (s Scope) Allows(customerID uuid.UUID) bool {
	if s.unrestricted {
		return true
	}
	return s.customerID != uuid.Nil && s.customerID == customerID
}

// Filter возвращает значение фильтра по клиенту; uuid.Nil означает отсутствие ограничения.
func (s Scope) Filter() (uuid.UUID, error) {
	if s.unrestricted {
		return uuid.Nil, nil
	}
	if s.customerID == uuid.Nil {
		return uuid.Nil, models.Unauthenticatedf("caller is not bound to a customer")
	}
	return s.customerID, nil
}

// Resolver определяет вызывающего по токену.
type Resolver interface {
	Resolve(ctx context.Context, token string) (Principal, error)
}

type principalKey struct{}

// WithPrincipal сохраняет вызывающего в контексте.
func WithPrincipal(ctx context.Context, principal Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFrom извлекает вызывающего из контекста.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(Principal)
	return principal, ok
}
