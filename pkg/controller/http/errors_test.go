package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/interfaces"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
	"github.com/secmon-lab/ifrs-modeler/pkg/usecase"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"model not found", goerr.Wrap(usecase.ErrModelNotFound, "x"), http.StatusNotFound},
		{"override not found", goerr.Wrap(model.ErrOverrideNotFound, "x"), http.StatusNotFound},
		{"locked", goerr.Wrap(usecase.ErrModelLocked, "x"), http.StatusConflict},
		{"version conflict", goerr.Wrap(interfaces.ErrVersionConflict, "x"), http.StatusConflict},
		{"too large", goerr.Wrap(model.ErrFileTooLarge, "x"), http.StatusRequestEntityTooLarge},
		{"validation issues", goerr.Wrap(usecase.ErrValidationFailed, "x"), http.StatusUnprocessableEntity},
		{"invalid token", goerr.Wrap(usecase.ErrInvalidToken, "x"), http.StatusUnauthorized},
		{"invalid override", goerr.Wrap(model.ErrInvalidOverride, "x"), http.StatusBadRequest},
		{"bad request", goerr.Wrap(errBadRequest, "x"), http.StatusBadRequest},
		{"no storage", goerr.Wrap(usecase.ErrStorageNotConfigured, "x"), http.StatusServiceUnavailable},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, statusOf(tt.err)).Equal(tt.want)
		})
	}
}

func TestBearerToken(t *testing.T) {
	req, err := http.NewRequest(http.MethodGet, "/api/models", nil)
	gt.NoError(t, err).Required()

	gt.Value(t, bearerToken(req)).Equal("")

	req.Header.Set("Authorization", "bearer abc.def.ghi")
	gt.Value(t, bearerToken(req)).Equal("abc.def.ghi")

	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	gt.Value(t, bearerToken(req)).Equal("")
}
