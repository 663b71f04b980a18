// Package review holds the persistent domain model of the submission
// review workflow: imported submissions, the automated assessments made
// against them, the human judgments that reconcile those assessments, and
// the audit trail of review sessions.
package review

import (
	"time"

	"review-backend/internal/tier"
)

// ReviewStatus is the lifecycle state of a judgment.
type ReviewStatus string

const (
	StatusPending    ReviewStatus = "PENDING"
	StatusInProgress ReviewStatus = "IN_PROGRESS"
	StatusCompleted  ReviewStatus = "COMPLETED"
	StatusDeferred   ReviewStatus = "DEFERRED"
)

// Valid reports whether s is a known review status.
func (s ReviewStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusDeferred:
		return true
	}
	return false
}

// Submission is one imported regulatory application. The assessment
// counters are denormalized summaries refreshed as judgments change; the
// authoritative data lives in the assessments and judgments tables.
type Submission struct {
	ID             string     `json:"id"`
	SiteID         string     `json:"siteId"`
	SubmissionType string     `json:"submissionType"`
	TotalCount     int        `json:"totalCount"`
	PassCount      int        `json:"passCount"`
	FailCount      int        `json:"failCount"`
	PartialCount   int        `json:"partialCount"`
	PendingCount   int        `json:"pendingCount"`
	ImportedAt     time.Time  `json:"importedAt"`
	EvaluatedAt    *time.Time `json:"evaluatedAt,omitempty"`
}

// Evidence is one excerpt the automated evaluator cited.
type Evidence struct {
	Location   string  `json:"location"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Assessment is one policy-statement-against-submission evaluation
// produced by the external evaluator. Read-only to this subsystem apart
// from the hard-stop tier re-derivation, which is computed, never stored.
type Assessment struct {
	ID             int64      `json:"id"`
	SubmissionID   string     `json:"submissionId"`
	PolicyID       string     `json:"policyId"`
	PolicyText     string     `json:"policyText"`
	Tier           tier.Tier  `json:"tier"`
	AutoResult     string     `json:"autoResult"`
	AutoConfidence float64    `json:"autoConfidence"`
	Evidence       []Evidence `json:"evidence"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// HardStopTexts returns the texts the Indigenous hard-stop scans for this
// assessment: the policy statement plus every cited evidence excerpt.
func (a Assessment) HardStopTexts() []string {
	texts := make([]string, 0, len(a.Evidence)+1)
	texts = append(texts, a.PolicyText)
	for _, ev := range a.Evidence {
		texts = append(texts, ev.Text)
	}
	return texts
}

// Judgment is the human reconciliation record for exactly one assessment.
// Created lazily the first time a reviewer touches the assessment, mutated
// repeatedly, never deleted.
type Judgment struct {
	ID              string           `json:"id"`
	AssessmentID    int64            `json:"assessmentId"`
	HumanResult     tier.HumanResult `json:"humanResult,omitempty"`
	HumanConfidence tier.Confidence  `json:"humanConfidence,omitempty"`
	Notes           string           `json:"judgmentNotes,omitempty"`
	OverrideReason  string           `json:"overrideReason,omitempty"`
	ReviewStatus    ReviewStatus     `json:"reviewStatus"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// JudgmentPatch is a partial update to a judgment. Nil fields are left
// untouched; set fields overwrite.
type JudgmentPatch struct {
	HumanResult     *tier.HumanResult
	HumanConfidence *tier.Confidence
	Notes           *string
	OverrideReason  *string
	ReviewStatus    *ReviewStatus
}

// IsEmpty reports whether the patch changes nothing.
func (p JudgmentPatch) IsEmpty() bool {
	return p.HumanResult == nil && p.HumanConfidence == nil && p.Notes == nil &&
		p.OverrideReason == nil && p.ReviewStatus == nil
}

// ReviewSession is an append-only audit record of a reviewer working a
// submission over a time span.
type ReviewSession struct {
	ID           string     `json:"id"`
	SubmissionID string     `json:"submissionId"`
	ReviewerID   string     `json:"reviewerId"`
	StartedAt    time.Time  `json:"startedAt"`
	EndedAt      *time.Time `json:"endedAt,omitempty"`
}
