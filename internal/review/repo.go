package review

import "context"

// ErrNotFound is the absent-sentinel for point lookups. Callers test with
// errors.Is; a miss is not a failure.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "record not found" }

// Repo is the persistence contract for the review workflow. Backed by SQL
// in normal operation and by an in-memory implementation when no database
// is available.
type Repo interface {
	CreateSubmission(ctx context.Context, sub Submission) error
	GetSubmissionByID(ctx context.Context, id string) (Submission, error)
	// RefreshSubmissionCounts recomputes the denormalized assessment
	// counters for a submission from its judgments.
	RefreshSubmissionCounts(ctx context.Context, submissionID string) error

	CreateAssessment(ctx context.Context, a Assessment) error
	GetAssessmentByID(ctx context.Context, id int64) (Assessment, error)
	ListAssessmentsBySubmission(ctx context.Context, submissionID string) ([]Assessment, error)

	// GetOrCreateJudgment is idempotent: an existing judgment for the
	// assessment is returned unchanged, otherwise a fresh one is created
	// in PENDING status with every optional field empty.
	GetOrCreateJudgment(ctx context.Context, assessmentID int64) (Judgment, error)
	// UpdateJudgment applies only the set fields of the patch, stamps the
	// modification time, and returns the updated row, or ErrNotFound if
	// the id does not exist.
	UpdateJudgment(ctx context.Context, id string, patch JudgmentPatch) (Judgment, error)

	StartReviewSession(ctx context.Context, submissionID, reviewerID string) (ReviewSession, error)
	EndReviewSession(ctx context.Context, id string) (ReviewSession, error)
}
