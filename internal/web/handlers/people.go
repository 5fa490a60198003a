package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/encoder"
)

// PeopleHandler manages the enrollment roster.
type PeopleHandler struct {
	store   database.Store
	encoder encoder.Encoder
	index   *database.HNSWIndex
}

// NewPeopleHandler creates a new people handler. index may be nil.
func NewPeopleHandler(store database.Store, enc encoder.Encoder, index *database.HNSWIndex) *PeopleHandler {
	return &PeopleHandler{
		store:   store,
		encoder: enc,
		index:   index,
	}
}

// personSummary is the roster listing shape. Encodings are deliberately
// absent; they are large and callers listing people never need them.
type personSummary struct {
	Name    string    `json:"name"`
	Source  string    `json:"source,omitempty"`
	AddedAt time.Time `json:"added_at"`
	Dim     int       `json:"dim"`
}

// personDetail is the single-person shape. Encoding is filled only on
// request.
type personDetail struct {
	Name     string    `json:"name"`
	Source   string    `json:"source,omitempty"`
	AddedAt  time.Time `json:"added_at"`
	Dim      int       `json:"dim"`
	Encoding []float32 `json:"encoding,omitempty"`
}

// List returns all enrolled people in the store's deterministic order.
func (h *PeopleHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.Entries(r.Context())
	if err != nil {
		log.Printf("failed to load entries: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load database")
		return
	}

	people := make([]personSummary, len(entries))
	for i, entry := range entries {
		people[i] = personSummary{
			Name:    entry.Name,
			Source:  entry.Source,
			AddedAt: entry.AddedAt,
			Dim:     len(entry.Encoding),
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"people": people,
		"count":  len(people),
	})
}

// Enroll adds a person from a probe image or a raw encoding, overwriting
// any existing entry with the same name.
func (h *PeopleHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	probe, req, ok := probeFromRequest(w, r, h.encoder)
	if !ok {
		return
	}

	name := r.FormValue("name")
	source := r.FormValue("source")
	if req != nil {
		name = req.Name
		source = req.Source
	} else if source == "" {
		// Fall back to the uploaded filename for provenance.
		if _, header, err := r.FormFile("image"); err == nil {
			source = header.Filename
		}
	}
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	entry := database.Entry{Name: name, Encoding: probe, Source: source}
	if err := h.store.Add(r.Context(), entry); err != nil {
		switch {
		case errors.Is(err, database.ErrInvalidName):
			respondError(w, http.StatusBadRequest, err.Error())
		case database.IsDimensionMismatch(err):
			respondError(w, http.StatusConflict, err.Error())
		default:
			log.Printf("failed to enroll %s: %v", sanitizeForLog(name), err)
			respondError(w, http.StatusInternalServerError, "failed to enroll")
		}
		return
	}

	if err := h.store.Save(r.Context()); err != nil {
		log.Printf("failed to save database: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to save database")
		return
	}
	rebuildIndex(r.Context(), h.store, h.index)

	respondJSON(w, http.StatusCreated, map[string]any{
		"name": name,
		"dim":  len(probe),
	})
}

// Get returns one person's metadata; the encoding is included only with
// ?encoding=true.
func (h *PeopleHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	entry, err := h.store.Get(r.Context(), name)
	if err != nil {
		log.Printf("failed to get %s: %v", sanitizeForLog(name), err)
		respondError(w, http.StatusInternalServerError, "failed to load database")
		return
	}
	if entry == nil {
		respondError(w, http.StatusNotFound, "identity not enrolled: "+name)
		return
	}

	detail := personDetail{
		Name:    entry.Name,
		Source:  entry.Source,
		AddedAt: entry.AddedAt,
		Dim:     len(entry.Encoding),
	}
	if r.URL.Query().Get("encoding") == "true" {
		detail.Encoding = entry.Encoding
	}
	respondJSON(w, http.StatusOK, detail)
}

// Delete removes a person from the roster.
func (h *PeopleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	removed, err := h.store.Remove(r.Context(), name)
	if err != nil {
		log.Printf("failed to remove %s: %v", sanitizeForLog(name), err)
		respondError(w, http.StatusInternalServerError, "failed to remove")
		return
	}
	if !removed {
		respondError(w, http.StatusNotFound, "identity not enrolled: "+name)
		return
	}

	if err := h.store.Save(r.Context()); err != nil {
		log.Printf("failed to save database: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to save database")
		return
	}
	rebuildIndex(r.Context(), h.store, h.index)

	respondJSON(w, http.StatusOK, map[string]string{"removed": name})
}
