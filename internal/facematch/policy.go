package facematch

import (
	"fmt"

	"github.com/facegate/facegate/internal/database"
)

// Verdict is the outcome of a 1:N identification decision.
type Verdict int

const (
	// VerdictDenied means no enrolled encoding was close enough.
	VerdictDenied Verdict = iota
	// VerdictGranted means the best match fell strictly under the threshold.
	VerdictGranted
)

func (v Verdict) String() string {
	if v == VerdictGranted {
		return "GRANTED"
	}
	return "DENIED"
}

// Decide applies the access threshold to a match result. Access is granted
// only when the distance is strictly below the threshold: a distance equal
// to the threshold denies, and the +Inf result of an empty database always
// denies. The threshold comparison lives here and nowhere else.
func Decide(result database.MatchResult, threshold float64) Verdict {
	if result.Found() && result.Distance < threshold {
		return VerdictGranted
	}
	return VerdictDenied
}

// Verification is the outcome of a 1:1 identity check.
type Verification struct {
	Name     string
	Distance float64
	Match    bool
}

// Outcome renders the canonical MATCH / NO_MATCH label.
func (v Verification) Outcome() string {
	if v.Match {
		return "MATCH"
	}
	return "NO_MATCH"
}

// Verify checks a probe against the single enrolled encoding for name. It
// fails with ErrUnknownIdentity when the name is not enrolled; otherwise
// the same strict threshold rule as Decide applies and the measured
// distance is reported either way.
func Verify(entries []database.Entry, name string, probe []float32, threshold float64) (Verification, error) {
	for i := range entries {
		if entries[i].Name != name {
			continue
		}
		d, err := database.EuclideanDistance(entries[i].Encoding, probe)
		if err != nil {
			return Verification{}, err
		}
		return Verification{Name: name, Distance: d, Match: d < threshold}, nil
	}
	return Verification{}, fmt.Errorf("%w: %q is not enrolled", database.ErrUnknownIdentity, name)
}
