package handlers

import (
	"net/http"

	"github.com/senyabanana/container-rental/internal/auth"
	"github.com/senyabanana/container-rental/internal/models"
	"github.com/senyabanana/container-rental/internal/utils"

	"github.com/sirupsen/logrus"
)

// Authenticator проверяет токен и роль вызывающего перед вызовом обработчика.
type Authenticator struct {
	Resolver auth.Resolver
	Logger   *logrus.Logger
}

// NewAuthenticator создает новый экземпляр Authenticator.
func NewAuthenticator(resolver auth.Resolver, logger *logrus.Logger) *Authenticator {
	return &Authenticator{Resolver: resolver, Logger: logger}
}

// Require пропускает запрос, если у вызывающего есть хотя бы одна из ролей.
func (a *Authenticator) Require(next http.HandlerFunc, roles ...auth.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := a.Resolver.Resolve(r.Context(), utils.BearerToken(r))
		if err != nil {
			respondError(a.Logger, w, r, err)
			return
		}

		allowed := len(roles) == 0
		for _, role := range roles {
			if principal.HasRole(role) {
				allowed = true
				break
			}
		}
		if !allowed {
			respondError(a.Logger, w, r, models.Unauthenticatedf("caller %s lacks a required role", principal.Subject))
			return
		}

		next(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
	}
}

// scopeOf возвращает область доступа вызывающего из контекста запроса.
func scopeOf(r *http.Request) (auth.Principal, auth.Scope) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		return auth.Principal{}, auth.Scope{}
	}
	return principal, principal.Scope()
}

// respondError логирует ошибку и отправляет ее клиенту.
func respondError(logger *logrus.Logger, w http.ResponseWriter, r *http.Request, err error) {
	sent := utils.SendError(w, err)
	entry := logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"kind":   sent.Kind,
	}).WithError(err)
	if sent.StatusCode >= http.StatusInternalServerError {
		entry.Error("request failed")
		return
	}
	entry.Warn("request rejected")
}
