package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/database/mock"
)

type stubEncoder struct {
	encoding []float32
}

func (s *stubEncoder) Encode(ctx context.Context, image []byte) ([]float32, error) {
	return s.encoding, nil
}

func testConfig(token string) *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Backend: "file"},
		Match:    config.MatchConfig{Threshold: 1.0, TopK: 3},
		Web:      config.WebConfig{APIToken: token},
	}
}

func testServer(t *testing.T, token string, entries ...database.Entry) (*Server, *mock.MockStore) {
	t.Helper()
	store := mock.NewMockStore()
	store.Seed(entries...)
	enc := &stubEncoder{encoding: []float32{1, 0, 0, 0}}
	return NewServer(testConfig(token), 8080, "127.0.0.1", store, enc, nil), store
}

func jsonBody(t *testing.T, payload any) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	return bytes.NewBuffer(data)
}

func TestHealthRequiresNoToken(t *testing.T) {
	server, _ := testServer(t, "secret",
		database.Entry{Name: "alice", Encoding: []float32{1, 0, 0, 0}})

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	recorder := httptest.NewRecorder()

	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected health check to bypass auth, got %d", recorder.Code)
	}
}

func TestAPIRequiresToken(t *testing.T) {
	server, _ := testServer(t, "secret",
		database.Entry{Name: "alice", Encoding: []float32{1, 0, 0, 0}})

	body := jsonBody(t, map[string]any{"encoding": []float32{1, 0, 0, 0}})
	req := httptest.NewRequest("POST", "/api/v1/recognize", body)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	server.Router().ServeHTTP(recorder, req)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", recorder.Code)
	}
}

func TestEnrollThenRecognize(t *testing.T) {
	server, store := testServer(t, "secret")

	enroll := httptest.NewRequest("POST", "/api/v1/people",
		jsonBody(t, map[string]any{"name": "alice", "encoding": []float32{1, 0, 0, 0}}))
	enroll.Header.Set("Content-Type", "application/json")
	enroll.Header.Set("Authorization", "Bearer secret")
	recorder := httptest.NewRecorder()

	server.Router().ServeHTTP(recorder, enroll)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201 on enroll, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if store.SaveCalls != 1 {
		t.Errorf("expected enrollment saved, got %d save calls", store.SaveCalls)
	}

	recognize := httptest.NewRequest("POST", "/api/v1/recognize",
		jsonBody(t, map[string]any{"encoding": []float32{1, 0, 0, 0}}))
	recognize.Header.Set("Content-Type", "application/json")
	recognize.Header.Set("Authorization", "Bearer secret")
	recorder = httptest.NewRecorder()

	server.Router().ServeHTTP(recorder, recognize)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 on recognize, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var resp struct {
		Verdict string `json:"verdict"`
		Name    string `json:"name"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Verdict != "GRANTED" || resp.Name != "alice" {
		t.Errorf("expected GRANTED for alice, got %s %q", resp.Verdict, resp.Name)
	}
}

func TestWarmIndexServesMatches(t *testing.T) {
	server, _ := testServer(t, "",
		database.Entry{Name: "alice", Encoding: []float32{1, 0, 0, 0}},
		database.Entry{Name: "bob", Encoding: []float32{0, 1, 0, 0}})

	server.WarmIndex(context.Background())
	if server.index.Len() != 2 {
		t.Fatalf("expected warm index with 2 entries, got %d", server.index.Len())
	}

	req := httptest.NewRequest("POST", "/api/v1/match?k=1",
		jsonBody(t, map[string]any{"encoding": []float32{1, 0, 0, 0}}))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()

	server.Router().ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 on match, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var resp struct {
		Matches []database.RankedMatch `json:"matches"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Matches) != 1 || resp.Matches[0].Name != "alice" {
		t.Errorf("expected alice as nearest candidate, got %+v", resp.Matches)
	}
}
