package review

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory Repo used when no database is available and
// in tests. Safe for concurrent use.
type MemoryRepo struct {
	mu          sync.RWMutex
	submissions map[string]Submission
	assessments map[int64]Assessment
	judgments   map[string]Judgment
	byAssess    map[int64]string
	sessions    map[string]ReviewSession
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		submissions: make(map[string]Submission),
		assessments: make(map[int64]Assessment),
		judgments:   make(map[string]Judgment),
		byAssess:    make(map[int64]string),
		sessions:    make(map[string]ReviewSession),
	}
}

func (r *MemoryRepo) CreateSubmission(_ context.Context, sub Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.submissions[sub.ID]; exists {
		return fmt.Errorf("submission %s already exists", sub.ID)
	}
	if sub.ImportedAt.IsZero() {
		sub.ImportedAt = time.Now().UTC()
	}
	r.submissions[sub.ID] = sub
	return nil
}

func (r *MemoryRepo) GetSubmissionByID(_ context.Context, id string) (Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.submissions[id]
	if !ok {
		return Submission{}, ErrNotFound
	}
	return sub, nil
}

func (r *MemoryRepo) CreateAssessment(_ context.Context, a Assessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.assessments[a.ID]; exists {
		return fmt.Errorf("assessment %d already exists", a.ID)
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	r.assessments[a.ID] = a
	return nil
}

func (r *MemoryRepo) GetAssessmentByID(_ context.Context, id int64) (Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assessments[id]
	if !ok {
		return Assessment{}, ErrNotFound
	}
	return a, nil
}

func (r *MemoryRepo) ListAssessmentsBySubmission(_ context.Context, submissionID string) ([]Assessment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Assessment
	for _, a := range r.assessments {
		if a.SubmissionID == submissionID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepo) GetOrCreateJudgment(_ context.Context, assessmentID int64) (Judgment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byAssess[assessmentID]; ok {
		return r.judgments[id], nil
	}
	now := time.Now().UTC()
	j := Judgment{
		ID:           uuid.NewString(),
		AssessmentID: assessmentID,
		ReviewStatus: StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.judgments[j.ID] = j
	r.byAssess[assessmentID] = j.ID
	return j, nil
}

func (r *MemoryRepo) UpdateJudgment(_ context.Context, id string, patch JudgmentPatch) (Judgment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.judgments[id]
	if !ok {
		return Judgment{}, ErrNotFound
	}
	j = applyPatch(j, patch)
	j.UpdatedAt = time.Now().UTC()
	r.judgments[id] = j
	return j, nil
}

func (r *MemoryRepo) RefreshSubmissionCounts(_ context.Context, submissionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.submissions[submissionID]
	if !ok {
		return ErrNotFound
	}
	var inputs []effectiveInput
	for _, a := range r.assessments {
		if a.SubmissionID != submissionID {
			continue
		}
		in := effectiveInput{AutoResult: a.AutoResult}
		if jid, ok := r.byAssess[a.ID]; ok {
			in.HumanResult = r.judgments[jid].HumanResult
		}
		inputs = append(inputs, in)
	}
	counts := tallyCounts(inputs)
	sub.TotalCount = counts.Total
	sub.PassCount = counts.Pass
	sub.FailCount = counts.Fail
	sub.PartialCount = counts.Partial
	sub.PendingCount = counts.Pending
	r.submissions[submissionID] = sub
	return nil
}

func (r *MemoryRepo) StartReviewSession(_ context.Context, submissionID, reviewerID string) (ReviewSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session := ReviewSession{
		ID:           uuid.NewString(),
		SubmissionID: submissionID,
		ReviewerID:   reviewerID,
		StartedAt:    time.Now().UTC(),
	}
	r.sessions[session.ID] = session
	return session, nil
}

func (r *MemoryRepo) EndReviewSession(_ context.Context, id string) (ReviewSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return ReviewSession{}, ErrNotFound
	}
	if session.EndedAt == nil {
		now := time.Now().UTC()
		session.EndedAt = &now
		r.sessions[id] = session
	}
	return session, nil
}
