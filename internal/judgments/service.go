// Package judgments implements the bulk judgment pipeline: structural
// validation of a batch, hard-stop-aware tier legality checks per item,
// and independent per-item persistence with multi-status reporting.
package judgments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"review-backend/internal/review"
	"review-backend/internal/shared/telemetry"
	"review-backend/internal/tier"
)

const (
	maxBatchSize         = 100
	minOverrideReasonLen = 10
)

// ErrSubmissionNotFound aborts a whole batch: a missing submission is a
// caller error, not a per-item failure.
var ErrSubmissionNotFound = errors.New("submission not found")

// ValidationError is a request-level structural violation. Its message is
// user-facing validation text.
type ValidationError struct{ msg string }

func (e *ValidationError) Error() string { return e.msg }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// Service runs the bulk judgment pipeline against a review store.
type Service struct {
	Repo review.Repo
}

// ApplyBatch validates and applies a batch of proposed judgments. The
// returned error is request-level only (ValidationError or
// ErrSubmissionNotFound); item outcomes live in the BatchResult.
func (s *Service) ApplyBatch(ctx context.Context, req BatchRequest) (BatchResult, error) {
	if err := validateBatch(req); err != nil {
		return BatchResult{}, err
	}

	if _, err := s.Repo.GetSubmissionByID(ctx, req.SubmissionID); err != nil {
		if errors.Is(err, review.ErrNotFound) {
			return BatchResult{}, ErrSubmissionNotFound
		}
		return BatchResult{}, fmt.Errorf("load submission %s: %w", req.SubmissionID, err)
	}

	result := BatchResult{
		Processed: len(req.Judgments),
		Results:   make([]ItemResult, 0, len(req.Judgments)),
	}
	for _, item := range req.Judgments {
		result.Results = append(result.Results, s.applyItem(ctx, req.SubmissionID, item))
	}
	for _, item := range result.Results {
		if item.Success {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}

	// Counters are denormalized summaries; a refresh failure must not
	// void judgments that already committed.
	if err := s.Repo.RefreshSubmissionCounts(ctx, req.SubmissionID); err != nil {
		telemetry.Error("judgments.refresh_counts_failed", map[string]any{
			"submission_id": req.SubmissionID,
			"error":         err.Error(),
		})
	}
	return result, nil
}

// validateBatch performs the static structural checks that reject the
// whole request. It is not gated on store state.
func validateBatch(req BatchRequest) error {
	if strings.TrimSpace(req.SubmissionID) == "" {
		return validationErrorf("submissionId is required")
	}
	if len(req.Judgments) == 0 {
		return validationErrorf("judgments must contain at least 1 item")
	}
	if len(req.Judgments) > maxBatchSize {
		return validationErrorf("judgments must contain at most %d items, got %d", maxBatchSize, len(req.Judgments))
	}
	for i, item := range req.Judgments {
		if item.AssessmentID <= 0 {
			return validationErrorf("judgments[%d]: assessmentId must be a positive number", i)
		}
		if item.HumanResult != nil && !tier.HumanResult(*item.HumanResult).Valid() {
			return validationErrorf("judgments[%d]: unknown humanResult %q", i, *item.HumanResult)
		}
		if item.HumanConfidence != nil && !tier.Confidence(*item.HumanConfidence).Valid() {
			return validationErrorf("judgments[%d]: unknown humanConfidence %q", i, *item.HumanConfidence)
		}
		if err := ValidateOverrideReason(item.HumanResult, item.OverrideReason); err != nil {
			return validationErrorf("judgments[%d]: %s", i, err.Error())
		}
	}
	return nil
}

// ValidateOverrideReason enforces the override invariant: an override in
// either direction must carry a reason of at least 10 characters after
// trimming.
func ValidateOverrideReason(humanResult *string, overrideReason *string) error {
	if humanResult == nil {
		return nil
	}
	switch tier.HumanResult(*humanResult) {
	case tier.ResultOverridePass, tier.ResultOverrideFail:
	default:
		return nil
	}
	reason := ""
	if overrideReason != nil {
		reason = strings.TrimSpace(*overrideReason)
	}
	if len(reason) < minOverrideReasonLen {
		return fmt.Errorf("overrideReason must be at least %d characters when recording %s", minOverrideReasonLen, *humanResult)
	}
	return nil
}

func (s *Service) applyItem(ctx context.Context, submissionID string, item BatchItem) ItemResult {
	fail := func(msg string) ItemResult {
		return ItemResult{AssessmentID: item.AssessmentID, Error: msg}
	}

	assessment, err := s.Repo.GetAssessmentByID(ctx, item.AssessmentID)
	if err != nil {
		if errors.Is(err, review.ErrNotFound) {
			return fail(fmt.Sprintf("assessment %d not found", item.AssessmentID))
		}
		telemetry.Error("judgments.load_assessment_failed", map[string]any{
			"assessment_id": item.AssessmentID,
			"error":         err.Error(),
		})
		return fail(fmt.Sprintf("failed to load assessment %d", item.AssessmentID))
	}
	if assessment.SubmissionID != submissionID {
		return fail(fmt.Sprintf("assessment %d does not belong to submission %s", item.AssessmentID, submissionID))
	}

	if item.HumanResult != nil {
		// The hard-stop is re-checked here on every batch, never trusted
		// from the stored tier.
		err := tier.ValidateJudgmentForAssessment(
			assessment.Tier,
			tier.HumanResult(*item.HumanResult),
			assessment.HardStopTexts()...,
		)
		if err != nil {
			return fail(err.Error())
		}
	}

	judgment, err := s.Repo.GetOrCreateJudgment(ctx, item.AssessmentID)
	if err != nil {
		telemetry.Error("judgments.get_or_create_failed", map[string]any{
			"assessment_id": item.AssessmentID,
			"error":         err.Error(),
		})
		return fail(fmt.Sprintf("failed to load judgment for assessment %d", item.AssessmentID))
	}

	patch := patchFromItem(item)
	updated, err := s.Repo.UpdateJudgment(ctx, judgment.ID, patch)
	if err != nil {
		telemetry.Error("judgments.update_failed", map[string]any{
			"assessment_id": item.AssessmentID,
			"judgment_id":   judgment.ID,
			"error":         err.Error(),
		})
		return fail(fmt.Sprintf("failed to persist judgment for assessment %d", item.AssessmentID))
	}

	return ItemResult{AssessmentID: item.AssessmentID, Success: true, JudgmentID: updated.ID}
}

// patchFromItem maps supplied fields onto a judgment patch. Recording a
// human result completes the review; DEFER lands in DEFERRED, everything
// else in COMPLETED.
func patchFromItem(item BatchItem) review.JudgmentPatch {
	var patch review.JudgmentPatch
	if item.HumanResult != nil {
		result := tier.HumanResult(*item.HumanResult)
		patch.HumanResult = &result
		status := review.StatusCompleted
		if result == tier.ResultDefer {
			status = review.StatusDeferred
		}
		patch.ReviewStatus = &status
	}
	if item.HumanConfidence != nil {
		confidence := tier.Confidence(*item.HumanConfidence)
		patch.HumanConfidence = &confidence
	}
	if item.JudgmentNotes != nil {
		patch.Notes = item.JudgmentNotes
	}
	if item.OverrideReason != nil {
		patch.OverrideReason = item.OverrideReason
	}
	return patch
}
