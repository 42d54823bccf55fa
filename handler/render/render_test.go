package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"lending/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErr(t *testing.T) {
	for _, c := range []struct {
		err    error
		status int
		code   int
	}{
		{core.ErrReserveNotFound, http.StatusNotFound, int(core.ErrReserveNotFound)},
		{fmt.Errorf("find: %w", core.ErrObligationNotFound), http.StatusNotFound, int(core.ErrObligationNotFound)},
		{core.ErrObligationNotOwnedBySigner, http.StatusForbidden, int(core.ErrObligationNotOwnedBySigner)},
		{core.ErrReserveStale, http.StatusBadRequest, int(core.ErrReserveStale)},
		{errors.New("disk full"), http.StatusInternalServerError, int(core.ErrUnknown)},
	} {
		w := httptest.NewRecorder()
		Err(w, c.err)
		assert.Equal(t, c.status, w.Code, c.err.Error())

		var resp errorResponse
		require.Nil(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, c.code, resp.Code)
	}
}

func TestErrHidesInternalMessage(t *testing.T) {
	ResponseErrorMessageAsHint = false
	w := httptest.NewRecorder()
	Err(w, errors.New("dial tcp 10.0.0.1:3306"))

	var resp errorResponse
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), resp.Msg)
	assert.Empty(t, resp.Hint)
}

func TestWrapResponse(t *testing.T) {
	h := WrapResponse(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			JSON(w, H{"id": "1"})
		case "/text":
			Text(w, "pong")
		default:
			NotFoundRequest(w, errors.New("no route"))
		}
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"id":"1"}}`, w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/text", nil))
	assert.Equal(t, "pong", w.Body.String())

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"code":-1,"msg":"no route"}`, w.Body.String())
}
