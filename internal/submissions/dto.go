package submissions

import (
	"time"

	"review-backend/internal/review"
	"review-backend/internal/tier"
)

// WorklistItem is one assessment in a submission's review queue, with the
// routing fields the queue is ordered by. EffectiveTier reflects the
// Indigenous hard-stop, which can differ from the stored tier.
type WorklistItem struct {
	Assessment     review.Assessment `json:"assessment"`
	EffectiveTier  tier.Tier         `json:"effectiveTier"`
	HardStopTerm   string            `json:"hardStopTerm,omitempty"`
	Priority       int               `json:"priority"`
	RequiresReview bool              `json:"requiresReview"`
}

// ImportEvidence is one cited excerpt in an import payload.
type ImportEvidence struct {
	Location   string  `json:"location"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// ImportAssessment is one evaluator-produced assessment in an import
// payload.
type ImportAssessment struct {
	ID             int64            `json:"id" binding:"required,gt=0"`
	PolicyID       string           `json:"policyId" binding:"required"`
	PolicyText     string           `json:"policyText"`
	Tier           string           `json:"tier" binding:"required,oneof=TIER_1_BINARY TIER_2_PROFESSIONAL TIER_3_STATUTORY"`
	AutoResult     string           `json:"autoResult" binding:"required,oneof=PASS FAIL PARTIAL PENDING"`
	AutoConfidence float64          `json:"autoConfidence" binding:"gte=0,lte=1"`
	Evidence       []ImportEvidence `json:"evidence"`
}

// ImportRequest is the admin import payload: a submission plus the
// assessments the external evaluator produced for it.
type ImportRequest struct {
	SubmissionID   string             `json:"submissionId" binding:"required"`
	SiteID         string             `json:"siteId" binding:"required"`
	SubmissionType string             `json:"submissionType" binding:"required"`
	EvaluatedAt    *time.Time         `json:"evaluatedAt"`
	Assessments    []ImportAssessment `json:"assessments" binding:"dive"`
}

// StartSessionRequest opens a review session for a submission.
type StartSessionRequest struct {
	ReviewerID string `json:"reviewerId"`
}
