package http

import (
	"net/http"
	"strings"

	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model/auth"
	"github.com/secmon-lab/ifrs-modeler/pkg/usecase"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/errutil"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/logging"
)

// authMiddleware validates the bearer token of protected requests
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// For NoAuthn mode or when authUC is not configured, always use anonymous user
			if authUC == nil {
				ctx := auth.ContextWithToken(r.Context(), auth.NewAnonymousUser())
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			bearer := bearerToken(r)
			if bearer == "" && !authUC.IsNoAuthn() {
				errutil.WriteJSONError(w, http.StatusUnauthorized, usecase.ErrUnauthenticated.Error(), nil)
				return
			}

			token, err := authUC.ValidateToken(r.Context(), bearer)
			if err != nil {
				logging.From(r.Context()).Warn("rejected bearer token", "error", err.Error())
				errutil.WriteJSONError(w, http.StatusUnauthorized, "invalid authentication token", nil)
				return
			}

			ctx := auth.ContextWithToken(r.Context(), token)
			ctx = logging.With(ctx, logging.From(ctx).With("user", token.Sub))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token of an "Authorization: Bearer" header
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
