package review

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"review-backend/internal/tier"
)

// SQLRepo implements Repo over database/sql. Queries are written with $N
// placeholders (in order of appearance) and rebound to ? for the sqlite
// driver.
type SQLRepo struct {
	DB     *sql.DB
	Driver string
}

var placeholderPattern = regexp.MustCompile(`\$\d+`)

func (r *SQLRepo) q(query string) string {
	if r.Driver == "sqlite" {
		return placeholderPattern.ReplaceAllString(query, "?")
	}
	return query
}

func (r *SQLRepo) CreateSubmission(ctx context.Context, sub Submission) error {
	const query = `
INSERT INTO submissions (id, site_id, submission_type, total_count, pass_count, fail_count, partial_count, pending_count, imported_at, evaluated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	importedAt := sub.ImportedAt
	if importedAt.IsZero() {
		importedAt = time.Now().UTC()
	}
	_, err := r.DB.ExecContext(ctx, r.q(query),
		sub.ID,
		sub.SiteID,
		sub.SubmissionType,
		sub.TotalCount,
		sub.PassCount,
		sub.FailCount,
		sub.PartialCount,
		sub.PendingCount,
		importedAt,
		nullableTime(sub.EvaluatedAt),
	)
	if err != nil {
		return fmt.Errorf("create submission %s: %w", sub.ID, err)
	}
	return nil
}

func (r *SQLRepo) GetSubmissionByID(ctx context.Context, id string) (Submission, error) {
	const query = `
SELECT id, site_id, submission_type, total_count, pass_count, fail_count, partial_count, pending_count, imported_at, evaluated_at
FROM submissions
WHERE id = $1`
	var sub Submission
	var evaluatedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, r.q(query), id).Scan(
		&sub.ID,
		&sub.SiteID,
		&sub.SubmissionType,
		&sub.TotalCount,
		&sub.PassCount,
		&sub.FailCount,
		&sub.PartialCount,
		&sub.PendingCount,
		&sub.ImportedAt,
		&evaluatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Submission{}, ErrNotFound
		}
		return Submission{}, err
	}
	if evaluatedAt.Valid {
		t := evaluatedAt.Time
		sub.EvaluatedAt = &t
	}
	return sub, nil
}

func (r *SQLRepo) CreateAssessment(ctx context.Context, a Assessment) error {
	const query = `
INSERT INTO assessments (id, submission_id, policy_id, policy_text, discretion_tier, auto_result, auto_confidence, evidence, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	evidence, err := json.Marshal(a.Evidence)
	if err != nil {
		return fmt.Errorf("marshal evidence for assessment %d: %w", a.ID, err)
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = r.DB.ExecContext(ctx, r.q(query),
		a.ID,
		a.SubmissionID,
		a.PolicyID,
		a.PolicyText,
		string(a.Tier),
		a.AutoResult,
		a.AutoConfidence,
		string(evidence),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("create assessment %d: %w", a.ID, err)
	}
	return nil
}

const assessmentColumns = `id, submission_id, policy_id, policy_text, discretion_tier, auto_result, auto_confidence, evidence, created_at`

func scanAssessment(row interface{ Scan(...any) error }) (Assessment, error) {
	var a Assessment
	var tierRaw string
	var evidenceRaw sql.NullString
	err := row.Scan(
		&a.ID,
		&a.SubmissionID,
		&a.PolicyID,
		&a.PolicyText,
		&tierRaw,
		&a.AutoResult,
		&a.AutoConfidence,
		&evidenceRaw,
		&a.CreatedAt,
	)
	if err != nil {
		return Assessment{}, err
	}
	a.Tier = tier.Tier(tierRaw)
	if evidenceRaw.Valid && evidenceRaw.String != "" {
		if err := json.Unmarshal([]byte(evidenceRaw.String), &a.Evidence); err != nil {
			return Assessment{}, fmt.Errorf("decode evidence for assessment %d: %w", a.ID, err)
		}
	}
	return a, nil
}

func (r *SQLRepo) GetAssessmentByID(ctx context.Context, id int64) (Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE id = $1`
	a, err := scanAssessment(r.DB.QueryRowContext(ctx, r.q(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assessment{}, ErrNotFound
		}
		return Assessment{}, err
	}
	return a, nil
}

func (r *SQLRepo) ListAssessmentsBySubmission(ctx context.Context, submissionID string) ([]Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE submission_id = $1 ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, r.q(query), submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

const judgmentColumns = `id, assessment_id, human_result, human_confidence, judgment_notes, override_reason, review_status, created_at, updated_at`

func scanJudgment(row interface{ Scan(...any) error }) (Judgment, error) {
	var j Judgment
	var humanResult, humanConfidence, notes, overrideReason sql.NullString
	var status string
	err := row.Scan(
		&j.ID,
		&j.AssessmentID,
		&humanResult,
		&humanConfidence,
		&notes,
		&overrideReason,
		&status,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	if err != nil {
		return Judgment{}, err
	}
	j.HumanResult = tier.HumanResult(humanResult.String)
	j.HumanConfidence = tier.Confidence(humanConfidence.String)
	j.Notes = notes.String
	j.OverrideReason = overrideReason.String
	j.ReviewStatus = ReviewStatus(status)
	return j, nil
}

func (r *SQLRepo) GetOrCreateJudgment(ctx context.Context, assessmentID int64) (Judgment, error) {
	existing, err := r.judgmentByAssessment(ctx, assessmentID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Judgment{}, err
	}

	const insert = `
INSERT INTO judgments (id, assessment_id, human_result, human_confidence, judgment_notes, override_reason, review_status, created_at, updated_at)
VALUES ($1, $2, NULL, NULL, NULL, NULL, $3, $4, $5)`
	now := time.Now().UTC()
	j := Judgment{
		ID:           uuid.NewString(),
		AssessmentID: assessmentID,
		ReviewStatus: StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.DB.ExecContext(ctx, r.q(insert), j.ID, j.AssessmentID, string(j.ReviewStatus), now, now); err != nil {
		// Unique constraint on assessment_id: another writer got there
		// first, so the existing row wins.
		if recovered, selErr := r.judgmentByAssessment(ctx, assessmentID); selErr == nil {
			return recovered, nil
		}
		return Judgment{}, fmt.Errorf("create judgment for assessment %d: %w", assessmentID, err)
	}
	return j, nil
}

func (r *SQLRepo) judgmentByAssessment(ctx context.Context, assessmentID int64) (Judgment, error) {
	query := `SELECT ` + judgmentColumns + ` FROM judgments WHERE assessment_id = $1`
	j, err := scanJudgment(r.DB.QueryRowContext(ctx, r.q(query), assessmentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Judgment{}, ErrNotFound
		}
		return Judgment{}, err
	}
	return j, nil
}

func (r *SQLRepo) UpdateJudgment(ctx context.Context, id string, patch JudgmentPatch) (Judgment, error) {
	query := `SELECT ` + judgmentColumns + ` FROM judgments WHERE id = $1`
	j, err := scanJudgment(r.DB.QueryRowContext(ctx, r.q(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Judgment{}, ErrNotFound
		}
		return Judgment{}, err
	}

	j = applyPatch(j, patch)
	j.UpdatedAt = time.Now().UTC()

	const update = `
UPDATE judgments
SET human_result = $1, human_confidence = $2, judgment_notes = $3, override_reason = $4, review_status = $5, updated_at = $6
WHERE id = $7`
	_, err = r.DB.ExecContext(ctx, r.q(update),
		nullableString(string(j.HumanResult)),
		nullableString(string(j.HumanConfidence)),
		nullableString(j.Notes),
		nullableString(j.OverrideReason),
		string(j.ReviewStatus),
		j.UpdatedAt,
		j.ID,
	)
	if err != nil {
		return Judgment{}, fmt.Errorf("update judgment %s: %w", id, err)
	}
	return j, nil
}

func (r *SQLRepo) RefreshSubmissionCounts(ctx context.Context, submissionID string) error {
	const query = `
SELECT a.auto_result, j.human_result
FROM assessments a
LEFT JOIN judgments j ON j.assessment_id = a.id
WHERE a.submission_id = $1`
	rows, err := r.DB.QueryContext(ctx, r.q(query), submissionID)
	if err != nil {
		return err
	}
	defer rows.Close()

	var outcomes []effectiveInput
	for rows.Next() {
		var autoResult string
		var humanResult sql.NullString
		if err := rows.Scan(&autoResult, &humanResult); err != nil {
			return err
		}
		outcomes = append(outcomes, effectiveInput{
			AutoResult:  autoResult,
			HumanResult: tier.HumanResult(humanResult.String),
		})
	}
	if err := rows.Err(); err != nil {
		return err
	}

	counts := tallyCounts(outcomes)
	const update = `
UPDATE submissions
SET total_count = $1, pass_count = $2, fail_count = $3, partial_count = $4, pending_count = $5
WHERE id = $6`
	_, err = r.DB.ExecContext(ctx, r.q(update),
		counts.Total, counts.Pass, counts.Fail, counts.Partial, counts.Pending, submissionID)
	return err
}

func (r *SQLRepo) StartReviewSession(ctx context.Context, submissionID, reviewerID string) (ReviewSession, error) {
	const insert = `
INSERT INTO review_sessions (id, submission_id, reviewer_id, started_at, ended_at)
VALUES ($1, $2, $3, $4, NULL)`
	session := ReviewSession{
		ID:           uuid.NewString(),
		SubmissionID: submissionID,
		ReviewerID:   reviewerID,
		StartedAt:    time.Now().UTC(),
	}
	if _, err := r.DB.ExecContext(ctx, r.q(insert), session.ID, session.SubmissionID, session.ReviewerID, session.StartedAt); err != nil {
		return ReviewSession{}, fmt.Errorf("start review session for %s: %w", submissionID, err)
	}
	return session, nil
}

func (r *SQLRepo) EndReviewSession(ctx context.Context, id string) (ReviewSession, error) {
	const query = `
SELECT id, submission_id, reviewer_id, started_at, ended_at
FROM review_sessions
WHERE id = $1`
	var session ReviewSession
	var endedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, r.q(query), id).Scan(
		&session.ID,
		&session.SubmissionID,
		&session.ReviewerID,
		&session.StartedAt,
		&endedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ReviewSession{}, ErrNotFound
		}
		return ReviewSession{}, err
	}
	if endedAt.Valid {
		// Sessions are append-only; the first close wins.
		t := endedAt.Time
		session.EndedAt = &t
		return session, nil
	}

	now := time.Now().UTC()
	const update = `UPDATE review_sessions SET ended_at = $1 WHERE id = $2`
	if _, err := r.DB.ExecContext(ctx, r.q(update), now, id); err != nil {
		return ReviewSession{}, fmt.Errorf("end review session %s: %w", id, err)
	}
	session.EndedAt = &now
	return session, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return *value
}
