package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/facegate/facegate/internal/audit"
	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/encoder"
	"github.com/facegate/facegate/internal/facematch"
)

// AccessHandler answers recognition, verification and candidate-match
// requests. Decisions always run through the exact matcher; the candidate
// index only serves the match listing.
type AccessHandler struct {
	store     database.Store
	encoder   encoder.Encoder
	index     *database.HNSWIndex
	audit     *audit.Logger
	threshold float64
	topK      int
}

// NewAccessHandler creates a new access handler. index and auditLog may be
// nil.
func NewAccessHandler(store database.Store, enc encoder.Encoder, index *database.HNSWIndex, auditLog *audit.Logger, threshold float64, topK int) *AccessHandler {
	return &AccessHandler{
		store:     store,
		encoder:   enc,
		index:     index,
		audit:     auditLog,
		threshold: threshold,
		topK:      topK,
	}
}

// decisionResponse is the recognition verdict. Name and distance are
// omitted when the database held no candidate at all.
type decisionResponse struct {
	Verdict   string   `json:"verdict"`
	Name      string   `json:"name,omitempty"`
	Distance  *float64 `json:"distance,omitempty"`
	Threshold float64  `json:"threshold"`
}

// verifyResponse is the outcome of a 1:1 identity claim.
type verifyResponse struct {
	Match     bool    `json:"match"`
	Name      string  `json:"name"`
	Distance  float64 `json:"distance"`
	Threshold float64 `json:"threshold"`
}

// matchResponse lists the closest enrolled candidates.
type matchResponse struct {
	Matches []database.RankedMatch `json:"matches"`
}

func (h *AccessHandler) record(ev audit.Event) {
	if err := h.audit.Record(ev); err != nil {
		log.Printf("audit write failed: %v", err)
	}
}

// Recognize runs 1:N identification: the probe face is matched against the
// whole database and the verdict follows from the configured threshold. An
// empty database denies.
func (h *AccessHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	probe, _, ok := probeFromRequest(w, r, h.encoder)
	if !ok {
		return
	}

	entries, err := h.store.Entries(r.Context())
	if err != nil {
		log.Printf("failed to load entries: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load database")
		return
	}

	result, err := facematch.FindBest(entries, probe)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	verdict := facematch.Decide(result, h.threshold)
	h.record(audit.Event{
		Kind:     audit.KindRecognize,
		Subject:  result.Name,
		Distance: result.Distance,
		Verdict:  verdict.String(),
		Source:   r.RemoteAddr,
	})

	resp := decisionResponse{
		Verdict:   verdict.String(),
		Threshold: h.threshold,
	}
	if result.Found() {
		resp.Name = result.Name
		resp.Distance = &result.Distance
	}
	respondJSON(w, http.StatusOK, resp)
}

// Verify runs 1:1 verification of a claimed identity. The name comes from
// the multipart form or the JSON body alongside the probe.
func (h *AccessHandler) Verify(w http.ResponseWriter, r *http.Request) {
	probe, req, ok := probeFromRequest(w, r, h.encoder)
	if !ok {
		return
	}

	name := r.FormValue("name")
	if req != nil {
		name = req.Name
	}
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	entries, err := h.store.Entries(r.Context())
	if err != nil {
		log.Printf("failed to load entries: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load database")
		return
	}

	verification, err := facematch.Verify(entries, name, probe, h.threshold)
	if err != nil {
		if errors.Is(err, database.ErrUnknownIdentity) {
			respondError(w, http.StatusNotFound, "identity not enrolled: "+name)
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.record(audit.Event{
		Kind:     audit.KindVerify,
		Subject:  name,
		Distance: verification.Distance,
		Verdict:  verification.Outcome(),
		Source:   r.RemoteAddr,
	})

	respondJSON(w, http.StatusOK, verifyResponse{
		Match:     verification.Match,
		Name:      verification.Name,
		Distance:  verification.Distance,
		Threshold: h.threshold,
	})
}

// parseTopK reads the optional k query parameter.
func (h *AccessHandler) parseTopK(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("k")
	if raw == "" {
		return h.topK, true
	}
	k, err := strconv.Atoi(raw)
	if err != nil || k < 1 {
		return 0, false
	}
	return k, true
}

// Match returns the k nearest enrolled candidates with exact distances.
// The in-memory index answers when warm; otherwise the store's native
// search or the exact scan does.
func (h *AccessHandler) Match(w http.ResponseWriter, r *http.Request) {
	probe, _, ok := probeFromRequest(w, r, h.encoder)
	if !ok {
		return
	}

	k, ok := h.parseTopK(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "k must be a positive integer")
		return
	}

	matches, err := h.findCandidates(r, probe, k)
	if err != nil {
		if database.IsDimensionMismatch(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("candidate search failed: %v", err)
		respondError(w, http.StatusInternalServerError, "candidate search failed")
		return
	}
	if matches == nil {
		matches = []database.RankedMatch{}
	}

	respondJSON(w, http.StatusOK, matchResponse{Matches: matches})
}

func (h *AccessHandler) findCandidates(r *http.Request, probe []float32, k int) ([]database.RankedMatch, error) {
	if h.index != nil && h.index.Len() > 0 {
		return h.index.Search(probe, k)
	}

	if searcher, ok := h.store.(database.Searcher); ok {
		entries, distances, err := searcher.FindNearest(r.Context(), probe, k)
		if err != nil {
			return nil, err
		}
		matches := make([]database.RankedMatch, len(entries))
		for i := range entries {
			matches[i] = database.RankedMatch{
				Name:     entries[i].Name,
				Distance: distances[i],
				Rank:     i + 1,
			}
		}
		return matches, nil
	}

	entries, err := h.store.Entries(r.Context())
	if err != nil {
		return nil, err
	}
	return facematch.FindTopK(entries, probe, k)
}
