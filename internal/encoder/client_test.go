package encoder

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// faceServer fakes the embedding service with a fixed response.
func faceServer(t *testing.T, status int, resp faceResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed/face" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parsing multipart form: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestClient_Encode(t *testing.T) {
	want := []float32{0.1, 0.2, 0.3}
	srv := faceServer(t, http.StatusOK, faceResponse{
		FacesCount: 1,
		Faces: []faceDetection{
			{FaceIndex: 0, Dim: 3, Embedding: want, DetScore: 0.99},
		},
		Model: "facenet",
	})
	defer srv.Close()

	c := NewClient(srv.URL, "facenet", 5*time.Second)
	got, err := c.Encode(context.Background(), makePNG(t, 32, 32))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("encoding length = %d, want 3", len(got))
	}
	for i, v := range want {
		if got[i] != v {
			t.Errorf("encoding[%d] = %f, want %f", i, got[i], v)
		}
	}
}

func TestClient_Encode_PicksDominantFace(t *testing.T) {
	srv := faceServer(t, http.StatusOK, faceResponse{
		FacesCount: 3,
		Faces: []faceDetection{
			{FaceIndex: 0, Embedding: []float32{1}, DetScore: 0.41},
			{FaceIndex: 1, Embedding: []float32{2}, DetScore: 0.97},
			{FaceIndex: 2, Embedding: []float32{3}, DetScore: 0.78},
		},
	})
	defer srv.Close()

	c := NewClient(srv.URL, "", 0)
	got, err := c.Encode(context.Background(), makePNG(t, 32, 32))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got[0] != 2 {
		t.Errorf("expected the highest det_score face, got embedding %v", got)
	}
}

func TestClient_Encode_NoFace(t *testing.T) {
	srv := faceServer(t, http.StatusOK, faceResponse{FacesCount: 0, Faces: []faceDetection{}})
	defer srv.Close()

	c := NewClient(srv.URL, "", 0)
	_, err := c.Encode(context.Background(), makePNG(t, 32, 32))
	if !errors.Is(err, ErrFaceNotDetected) {
		t.Errorf("expected ErrFaceNotDetected, got %v", err)
	}
}

func TestClient_Encode_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0)
	_, err := c.Encode(context.Background(), makePNG(t, 32, 32))
	if err == nil {
		t.Fatal("expected error for HTTP 500")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("error should carry the status code: %v", err)
	}
}

func TestClient_Encode_InvalidImageSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0)
	_, err := c.Encode(context.Background(), []byte("not an image"))
	if !errors.Is(err, ErrInvalidImage) {
		t.Fatalf("expected ErrInvalidImage, got %v", err)
	}
	if calls.Load() != 0 {
		t.Error("invalid input must be rejected before any network call")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", "", 0)
	if c.baseURL != defaultBaseURL {
		t.Errorf("baseURL = %s, want %s", c.baseURL, defaultBaseURL)
	}
	if c.Model() != defaultModel {
		t.Errorf("model = %s, want %s", c.Model(), defaultModel)
	}
	if c.client.Timeout != defaultTimeout {
		t.Errorf("timeout = %s, want %s", c.client.Timeout, defaultTimeout)
	}

	c = NewClient("http://encoder:9000/", "arcface", time.Second)
	if c.baseURL != "http://encoder:9000" {
		t.Errorf("trailing slash not trimmed: %s", c.baseURL)
	}
}
