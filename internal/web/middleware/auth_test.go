package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireToken(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		header     string
		wantStatus int
	}{
		{
			name:       "valid token",
			token:      "secret-token",
			header:     "Bearer secret-token",
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong token",
			token:      "secret-token",
			header:     "Bearer wrong",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing header",
			token:      "secret-token",
			header:     "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing bearer prefix",
			token:      "secret-token",
			header:     "secret-token",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "empty configured token disables auth",
			token:      "",
			header:     "",
			wantStatus: http.StatusOK,
		},
		{
			name:       "empty configured token ignores header",
			token:      "",
			header:     "Bearer anything",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireToken(tt.token)(okHandler())

			req := httptest.NewRequest("GET", "/api/v1/people", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, req)

			if recorder.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, recorder.Code)
			}
		})
	}
}
