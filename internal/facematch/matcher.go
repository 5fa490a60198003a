// Package facematch implements the matching engine: exact nearest-neighbor
// search over enrolled encodings and the threshold decision policy.
package facematch

import (
	"math"
	"sort"

	"github.com/facegate/facegate/internal/database"
)

// FindBest scans entries for the encoding nearest to probe. The scan is
// exact and deterministic: ties resolve to the entry that appears first in
// the snapshot. An empty snapshot is valid input and yields a result with
// no name and distance +Inf, never an error.
func FindBest(entries []database.Entry, probe []float32) (database.MatchResult, error) {
	best := database.MatchResult{Distance: math.Inf(1)}
	for i := range entries {
		d, err := database.EuclideanDistance(entries[i].Encoding, probe)
		if err != nil {
			return database.MatchResult{}, err
		}
		if d < best.Distance {
			best.Name = entries[i].Name
			best.Distance = d
		}
	}
	return best, nil
}

// FindTopK returns the k nearest entries ordered by ascending distance,
// ties kept in snapshot order. k <= 0 yields an empty result; otherwise the
// result holds min(k, len(entries)) matches with 1-based ranks.
func FindTopK(entries []database.Entry, probe []float32, k int) ([]database.RankedMatch, error) {
	if k <= 0 {
		return []database.RankedMatch{}, nil
	}

	scored := make([]database.RankedMatch, 0, len(entries))
	for i := range entries {
		d, err := database.EuclideanDistance(entries[i].Encoding, probe)
		if err != nil {
			return nil, err
		}
		scored = append(scored, database.RankedMatch{Name: entries[i].Name, Distance: d})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Distance < scored[j].Distance
	})

	if k < len(scored) {
		scored = scored[:k]
	}
	for i := range scored {
		scored[i].Rank = i + 1
	}
	return scored, nil
}
