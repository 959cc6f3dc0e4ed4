package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/carbon-footprint-tracker/internal/logging"
	"github.com/iliyamo/carbon-footprint-tracker/internal/repository"
	"github.com/iliyamo/carbon-footprint-tracker/internal/service"
)

func TestFail_Mapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		msg    string
	}{
		{fmt.Errorf("%w: type", service.ErrMissingField), http.StatusBadRequest, msgMissingFields},
		{fmt.Errorf("%w: 1e308 kg of food", service.ErrInvalidValue), http.StatusBadRequest, msgInvalidValue},
		{repository.ErrEmailExists, http.StatusBadRequest, msgEmailExists},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, msgInvalidCreds},
		{service.ErrMissingToken, http.StatusUnauthorized, msgUnauthorized},
		{fmt.Errorf("%w: %w", service.ErrInvalidToken, errors.New("expired")), http.StatusUnauthorized, msgInvalidToken},
		{fmt.Errorf("find: %w", repository.ErrNotFound), http.StatusNotFound, msgNotFound},
		{errors.New("dial tcp: connection refused"), http.StatusInternalServerError, msgInternal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			var logs bytes.Buffer
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			assert.NoError(t, fail(c, logging.New(&logs, "debug", "json"), tt.err))
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, `{"message":"`+tt.msg+`"}`, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "connection refused")
			if tt.status == http.StatusInternalServerError {
				assert.Contains(t, logs.String(), "connection refused")
			}
		})
	}
}

func TestHTTPErrorHandler(t *testing.T) {
	var logs bytes.Buffer
	h := HTTPErrorHandler(logging.New(&logs, "info", "json"))

	run := func(method string, err error) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		c := echo.New().NewContext(httptest.NewRequest(method, "/", nil), rec)
		h(err, c)
		return rec
	}

	rec := run(http.MethodGet, echo.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Not Found"}`, rec.Body.String())

	rec = run(http.MethodGet, echo.NewHTTPError(http.StatusBadRequest, "bad thing"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"bad thing"}`, rec.Body.String())

	rec = run(http.MethodGet, errors.New("secret detail"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, rec.Body.String())
	assert.Contains(t, logs.String(), "secret detail")

	rec = run(http.MethodHead, echo.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}
