package handlers

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/facegate/facegate/internal/database"
)

func TestSanitizeForLog(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"normal name", "normal name"},
		{"with\nnewline", "withnewline"},
		{"with\rcarriage", "withcarriage"},
		{"with\r\nboth", "withboth"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := sanitizeForLog(tt.input); got != tt.expected {
			t.Errorf("sanitizeForLog(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestHealthCheck(t *testing.T) {
	store := seededStore(
		database.Entry{Name: "alice", Encoding: enc4(1, 0, 0, 0)},
		database.Entry{Name: "bob", Encoding: enc4(0, 1, 0, 0)},
	)
	handler := HealthCheck(store, "file")

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	recorder := httptest.NewRecorder()

	handler(recorder, req)

	assertStatusCode(t, recorder, 200)

	var resp struct {
		Status  string `json:"status"`
		Backend string `json:"backend"`
		People  int    `json:"people"`
	}
	parseJSONResponse(t, recorder, &resp)
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
	if resp.Backend != "file" {
		t.Errorf("expected backend file, got %q", resp.Backend)
	}
	if resp.People != 2 {
		t.Errorf("expected 2 people, got %d", resp.People)
	}
}

func TestHealthCheck_StoreUnavailable(t *testing.T) {
	store := seededStore()
	store.CountError = errors.New("connection lost")
	handler := HealthCheck(store, "postgres")

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	recorder := httptest.NewRecorder()

	handler(recorder, req)

	assertStatusCode(t, recorder, 503)
	assertJSONError(t, recorder, "store unavailable")
}

func TestProbeFromRequest_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/v1/recognize", nil)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	_, _, ok := probeFromRequest(recorder, req, &fakeEncoder{})
	if ok {
		t.Error("expected failure on invalid JSON body")
	}
	assertStatusCode(t, recorder, 400)
	assertJSONError(t, recorder, errInvalidRequestBody)
}
