package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"strings"

	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/encoder"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// maxUploadSize bounds multipart probe images. Access snapshots are small;
// anything past this is not a face photo.
const maxUploadSize = 32 << 20

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// encodingRequest is the JSON alternative to a multipart image upload for
// callers that already hold an encoding.
type encodingRequest struct {
	Name     string    `json:"name,omitempty"`
	Encoding []float32 `json:"encoding"`
	Source   string    `json:"source,omitempty"`
}

// probeFromRequest extracts a face encoding from the request: either a
// multipart image field (sent through the encoder) or a JSON body carrying
// the encoding directly. The returned request holds any extra JSON fields;
// it is nil for multipart uploads. On failure the response has been written
// and ok is false.
func probeFromRequest(w http.ResponseWriter, r *http.Request, enc encoder.Encoder) (probe []float32, req *encodingRequest, ok bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var body encodingRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respondError(w, http.StatusBadRequest, errInvalidRequestBody)
			return nil, nil, false
		}
		if len(body.Encoding) == 0 {
			respondError(w, http.StatusBadRequest, "encoding is required")
			return nil, nil, false
		}
		return body.Encoding, &body, true
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return nil, nil, false
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file is required")
		return nil, nil, false
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read image")
		return nil, nil, false
	}

	probe, err = enc.Encode(r.Context(), imageData)
	if err != nil {
		respondEncodeError(w, err)
		return nil, nil, false
	}
	return probe, nil, true
}

// respondEncodeError maps encoder failures to HTTP statuses: bad input is
// the caller's fault, anything else means the encoder service misbehaved.
func respondEncodeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, encoder.ErrInvalidImage):
		respondError(w, http.StatusBadRequest, "invalid image")
	case errors.Is(err, encoder.ErrFaceNotDetected):
		respondError(w, http.StatusUnprocessableEntity, "no face detected in image")
	default:
		log.Printf("encoder request failed: %v", err)
		respondError(w, http.StatusBadGateway, "face encoding failed")
	}
}

// HealthCheck returns the health check handler. It reports the configured
// backend and the roster size so probes catch a wedged store early.
func HealthCheck(store database.Store, backend string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := store.Count(r.Context())
		if err != nil {
			respondError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"backend": backend,
			"people":  count,
		})
	}
}

// rebuildIndex refreshes the in-memory candidate index from the store.
// Failures are logged, not fatal: the index is an optimization and match
// queries fall back to the exact scan when it is empty.
func rebuildIndex(ctx context.Context, store database.Store, index *database.HNSWIndex) {
	if index == nil {
		return
	}
	entries, err := store.Entries(ctx)
	if err != nil {
		log.Printf("candidate index rebuild failed: %v", err)
		return
	}
	if err := index.Build(entries); err != nil {
		log.Printf("candidate index rebuild failed: %v", err)
	}
}
