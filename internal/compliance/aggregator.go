package compliance

import (
	"math"
	"time"

	"veristaff/internal/records/models"
)

// Tier classifies a candidate's aggregate score.
type Tier string

const (
	TierCompliant    Tier = "compliant"
	TierAtRisk       Tier = "at_risk"
	TierNonCompliant Tier = "non_compliant"
)

// Summary is a candidate's on-demand compliance roll-up across all six
// record kinds. It is recomputed on every read and never persisted:
// persisting it would require invalidation on every write to any of the six
// kinds, which is strictly worse than recomputing.
type Summary struct {
	CandidateName string `json:"candidate_display_name"`
	Score         int    `json:"score"`
	Tier          Tier   `json:"tier"`
	TotalDocs     int    `json:"total_docs"`
	ValidDocs     int    `json:"valid_docs"`
	ExpiringSoon  int    `json:"expiring_soon"`
}

// ComputeCompliance rolls a candidate's records into a score and risk tier.
//
// A record is valid when its expiry date is strictly in the future, or when
// it has no expiry date but its override sits in a kind-specific "good"
// vocabulary. The score is round(valid/total*100); an empty portfolio
// scores 0 by definition, not by error.
//
// ExpiringSoon is date-driven and uniform: every record whose expiry falls
// in (today, today+30d] counts, manually overridden or not. Overrides win
// the displayed status, not the bookkeeping.
//
// The computation is sum-based and therefore invariant under record order.
func ComputeCompliance(today time.Time, candidateName string, records []*models.Record) Summary {
	summary := Summary{
		CandidateName: candidateName,
		TotalDocs:     len(records),
	}

	for _, record := range records {
		if isValid(today, record) {
			summary.ValidDocs++
		}
		if record.ExpiryDate != nil {
			if days := DaysUntil(today, *record.ExpiryDate); days > 0 && days <= ExpiringSoonWindow {
				summary.ExpiringSoon++
			}
		}
	}

	if summary.TotalDocs > 0 {
		summary.Score = int(math.Round(float64(summary.ValidDocs) / float64(summary.TotalDocs) * 100))
	}
	summary.Tier = tierFor(summary.Score)
	return summary
}

func isValid(today time.Time, record *models.Record) bool {
	if record.ExpiryDate != nil {
		return DaysUntil(today, *record.ExpiryDate) > 0
	}
	return record.HasGoodStanding()
}

func tierFor(score int) Tier {
	switch {
	case score >= 90:
		return TierCompliant
	case score >= 70:
		return TierAtRisk
	default:
		return TierNonCompliant
	}
}
