package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model/auth"
	"github.com/secmon-lab/ifrs-modeler/pkg/usecase"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/errutil"
)

type AuthUseCase = usecase.AuthUseCaseInterface

type userMeResponse struct {
	Sub       string `json:"sub"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	Anonymous bool   `json:"anonymous"`
}

// authMeHandler returns the identity of the current bearer token
func authMeHandler(w http.ResponseWriter, r *http.Request) {
	token := auth.TokenFromContext(r.Context())
	if token == nil {
		token = auth.NewAnonymousUser()
	}
	writeJSON(r.Context(), w, http.StatusOK, userMeResponse{
		Sub:       token.Sub,
		Email:     token.Email,
		Name:      token.Name,
		Anonymous: token.IsAnonymous(),
	})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}
