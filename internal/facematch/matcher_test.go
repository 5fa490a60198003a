package facematch

import (
	"math"
	"testing"

	"github.com/facegate/facegate/internal/database"
)

func enrolled() []database.Entry {
	return []database.Entry{
		{Name: "alice", Encoding: []float32{0, 0, 0}},
		{Name: "bob", Encoding: []float32{10, 0, 0}},
		{Name: "carol", Encoding: []float32{0, 10, 0}},
	}
}

func TestFindBest_EmptyDatabase(t *testing.T) {
	result, err := FindBest(nil, []float32{1, 2, 3})
	if err != nil {
		t.Fatalf("empty database must not error: %v", err)
	}
	if result.Found() {
		t.Errorf("expected no candidate, got %q", result.Name)
	}
	if !math.IsInf(result.Distance, 1) {
		t.Errorf("expected +Inf distance, got %f", result.Distance)
	}
}

func TestFindBest_NearestWins(t *testing.T) {
	tests := []struct {
		name     string
		probe    []float32
		wantName string
	}{
		{"close to alice", []float32{0.5, 0.5, 0}, "alice"},
		{"close to bob", []float32{9, 1, 0}, "bob"},
		{"close to carol", []float32{1, 9, 0}, "carol"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := FindBest(enrolled(), tc.probe)
			if err != nil {
				t.Fatalf("FindBest: %v", err)
			}
			if result.Name != tc.wantName {
				t.Errorf("best = %s, want %s", result.Name, tc.wantName)
			}
		})
	}
}

func TestFindBest_TieBreaksToFirstEntry(t *testing.T) {
	entries := []database.Entry{
		{Name: "late", Encoding: []float32{2, 0}},
		{Name: "early", Encoding: []float32{0, 0}},
		{Name: "twin", Encoding: []float32{0, 0}},
	}

	// Probe is equidistant from "early" and "twin"; "early" comes first.
	result, err := FindBest(entries, []float32{0, 1})
	if err != nil {
		t.Fatalf("FindBest: %v", err)
	}
	if result.Name != "early" {
		t.Errorf("tie must resolve to the first entry, got %s", result.Name)
	}
}

func TestFindBest_ProbeDimensionMismatch(t *testing.T) {
	_, err := FindBest(enrolled(), []float32{1, 2})
	if !database.IsDimensionMismatch(err) {
		t.Errorf("expected dimension mismatch, got %v", err)
	}
}

func TestFindTopK(t *testing.T) {
	tests := []struct {
		name      string
		k         int
		wantNames []string
	}{
		{"k zero", 0, []string{}},
		{"k negative", -2, []string{}},
		{"k one", 1, []string{"alice"}},
		{"k two", 2, []string{"alice", "bob"}},
		{"k exceeds size", 10, []string{"alice", "bob", "carol"}},
	}

	probe := []float32{1, 2, 0} // nearest alice, then bob, then carol

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			matches, err := FindTopK(enrolled(), probe, tc.k)
			if err != nil {
				t.Fatalf("FindTopK: %v", err)
			}
			if len(matches) != len(tc.wantNames) {
				t.Fatalf("got %d matches, want %d", len(matches), len(tc.wantNames))
			}
			for i, want := range tc.wantNames {
				if matches[i].Name != want {
					t.Errorf("matches[%d] = %s, want %s", i, matches[i].Name, want)
				}
				if matches[i].Rank != i+1 {
					t.Errorf("matches[%d].Rank = %d, want %d", i, matches[i].Rank, i+1)
				}
			}
			for i := 1; i < len(matches); i++ {
				if matches[i].Distance < matches[i-1].Distance {
					t.Errorf("matches not in ascending distance order at %d", i)
				}
			}
		})
	}
}

func TestFindTopK_StableTies(t *testing.T) {
	entries := []database.Entry{
		{Name: "first", Encoding: []float32{1, 0}},
		{Name: "second", Encoding: []float32{-1, 0}},
		{Name: "third", Encoding: []float32{0, 1}},
	}

	// All three are distance 1 from the origin.
	matches, err := FindTopK(entries, []float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("FindTopK: %v", err)
	}

	want := []string{"first", "second", "third"}
	for i, w := range want {
		if matches[i].Name != w {
			t.Errorf("tied matches must keep snapshot order: [%d] = %s, want %s", i, matches[i].Name, w)
		}
	}
}

func TestFindTopK_DimensionMismatch(t *testing.T) {
	_, err := FindTopK(enrolled(), []float32{1}, 2)
	if !database.IsDimensionMismatch(err) {
		t.Errorf("expected dimension mismatch, got %v", err)
	}
}
