package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-itinerary/internal/middleware"
)

const devOrigin = "http://localhost:5173"

// okHandler is a minimal http.Handler that always returns 200.
var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORSHandler_GET_AllowedOrigin(t *testing.T) {
	h := middleware.NewCORSHandler([]string{devOrigin})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	req.Header.Set("Origin", devOrigin)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, devOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
}

// TestCORSHandler_Preflight_UserHeaderAndPatch verifies a browser may send the
// identity header on a PATCH-style request. Access-Control-Request-Headers
// values are lowercase per the Fetch specification.
func TestCORSHandler_Preflight_UserHeaderAndPatch(t *testing.T) {
	h := middleware.NewCORSHandler([]string{devOrigin})(okHandler)

	for _, method := range []string{http.MethodPut, http.MethodPatch, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/trips/abc/days/1/activities", nil)
			req.Header.Set("Origin", devOrigin)
			req.Header.Set("Access-Control-Request-Method", method)
			req.Header.Set("Access-Control-Request-Headers", "content-type,x-user-id")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.True(t, rec.Code == http.StatusNoContent || rec.Code == http.StatusOK,
				"expected 2xx for OPTIONS preflight, got %d", rec.Code)
			assert.Equal(t, devOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, method, rec.Header().Get("Access-Control-Allow-Methods"))
			assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "x-user-id")
		})
	}
}

func TestCORSHandler_GET_DisallowedOrigin(t *testing.T) {
	h := middleware.NewCORSHandler([]string{devOrigin})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/trips", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
