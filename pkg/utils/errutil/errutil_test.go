package errutil_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/errutil"
)

func TestHandleHTTP(t *testing.T) {
	w := httptest.NewRecorder()
	err := goerr.New("model definition is locked", goerr.V("id", "md-1"))

	errutil.HandleHTTP(context.Background(), w, err, http.StatusConflict)

	gt.Value(t, w.Code).Equal(http.StatusConflict)
	gt.Value(t, w.Header().Get("Content-Type")).Equal("application/json")

	var body errutil.ErrorResponse
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &body)).Required()
	gt.Value(t, body.Message).Equal("model definition is locked")
}

func TestHandleHTTP_NilError(t *testing.T) {
	w := httptest.NewRecorder()
	errutil.HandleHTTP(context.Background(), w, nil, http.StatusInternalServerError)
	gt.Value(t, w.Body.Len()).Equal(0)
}

func TestHandle(t *testing.T) {
	gt.NoError(t, errutil.Handle(context.Background(), nil, "noop"))

	err := goerr.New("boom")
	gt.Bool(t, errors.Is(errutil.Handle(context.Background(), err, "failed"), err)).True()
}
