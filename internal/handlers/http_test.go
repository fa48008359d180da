package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"appointments/internal/appointment"
	"appointments/internal/core"
	"appointments/internal/scheduling"
)

func newHTTPServer(c *ActionController) http.Handler {
	s := core.NewServer(nil)
	s.Registrars = []core.RouteRegistrar{c.Routes}
	s.MountRoutes()
	return s.Handler()
}

func TestHTTP_Register(t *testing.T) {
	reg := new(mockRegisterer)
	reg.On("Execute", mock.Anything, mock.Anything).
		Return(&scheduling.RegisterOutput{Message: "appointment for PE received and in process", ID: "98701"}, nil)

	w := httptest.NewRecorder()
	newHTTPServer(newController(reg, new(mockFinder), nil)).
		ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(registerData)))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"message":"appointment for PE received and in process","id":"98701"}`, w.Body.String())
}

func TestHTTP_RegisterValidationFailure(t *testing.T) {
	reg := new(mockRegisterer)
	_, countryErr := appointment.NewCountryISO("AR")
	reg.On("Execute", mock.Anything, mock.Anything).Return(nil, countryErr)

	w := httptest.NewRecorder()
	newHTTPServer(newController(reg, new(mockFinder), nil)).
		ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(registerData)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var f core.Failure
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &f))
	assert.Equal(t, "InvalidCountryError", f.Kind)
	assert.Equal(t, "INVALID_COUNTRY", f.Code)
}

func TestHTTP_RegisterMalformedBody(t *testing.T) {
	reg := new(mockRegisterer)
	w := httptest.NewRecorder()
	newHTTPServer(newController(reg, new(mockFinder), nil)).
		ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(`{"insuredId":`)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REQUEST")
	reg.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestHTTP_Find(t *testing.T) {
	find := new(mockFinder)
	find.On("Execute", mock.Anything, "12345").Return([]*appointment.Appointment{testAppointment()}, nil)

	w := httptest.NewRecorder()
	newHTTPServer(newController(new(mockRegisterer), find, nil)).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/appointments/12345", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var got []appointment.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "pending", got[0].Estado)
}

func TestHTTP_Envelope(t *testing.T) {
	find := new(mockFinder)
	find.On("Execute", mock.Anything, "12345").Return([]*appointment.Appointment{}, nil)

	w := httptest.NewRecorder()
	newHTTPServer(newController(new(mockRegisterer), find, nil)).
		ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/actions", strings.NewReader(`{"action":"find","data":"12345"}`)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = httptest.NewRecorder()
	newHTTPServer(newController(new(mockRegisterer), find, nil)).
		ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/actions", strings.NewReader(`{"action":"delete","data":"12345"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "UNSUPPORTED_ACTION")
}
