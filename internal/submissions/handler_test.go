package submissions_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"review-backend/internal/review"
	"review-backend/internal/submissions"
	"review-backend/internal/tier"
)

func newTestRouter(t *testing.T, repo review.Repo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := submissions.NewHandler(repo)
	api := r.Group("/api/v1")
	handler.RegisterRoutes(api)
	handler.RegisterAdminRoutes(api) // capability middleware tested separately
	return r
}

func seedRepo(t *testing.T) *review.MemoryRepo {
	t.Helper()
	ctx := context.Background()
	repo := review.NewMemoryRepo()
	if err := repo.CreateSubmission(ctx, review.Submission{ID: "S1", SiteID: "SITE-1", SubmissionType: "CULVERT"}); err != nil {
		t.Fatalf("seed submission: %v", err)
	}
	assessments := []review.Assessment{
		{ID: 1, SubmissionID: "S1", PolicyID: "POL-1", Tier: tier.Tier1Binary, AutoResult: "PASS", AutoConfidence: 0.95},
		{ID: 2, SubmissionID: "S1", PolicyID: "POL-2", Tier: tier.Tier1Binary, AutoResult: "FAIL", AutoConfidence: 0.4},
		{ID: 3, SubmissionID: "S1", PolicyID: "POL-3", PolicyText: "work inside the traditional territory", Tier: tier.Tier1Binary, AutoResult: "PASS", AutoConfidence: 0.9},
	}
	for _, a := range assessments {
		if err := repo.CreateAssessment(ctx, a); err != nil {
			t.Fatalf("seed assessment %d: %v", a.ID, err)
		}
	}
	return repo
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetSubmission(t *testing.T) {
	r := newTestRouter(t, seedRepo(t))

	w := doJSON(t, r, http.MethodGet, "/api/v1/submissions/S1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got %d: %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodGet, "/api/v1/submissions/ghost", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing submission: got %d", w.Code)
	}
}

func TestWorklistOrdering(t *testing.T) {
	r := newTestRouter(t, seedRepo(t))

	w := doJSON(t, r, http.MethodGet, "/api/v1/submissions/S1/assessments", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got %d: %s", w.Code, w.Body.String())
	}
	var items []submissions.WorklistItem
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("want 3 items, got %d", len(items))
	}
	// The hard-stop assessment surfaces first, then the unsure tier-1
	// fail, then the confident pass.
	if items[0].Assessment.ID != 3 || items[0].EffectiveTier != tier.Tier3Statutory {
		t.Fatalf("first item = %+v", items[0])
	}
	if items[0].HardStopTerm == "" {
		t.Fatal("hard-stop item should carry the matched term")
	}
	if items[1].Assessment.ID != 2 {
		t.Fatalf("second item = %+v", items[1])
	}
	if items[2].Assessment.ID != 1 || items[2].RequiresReview {
		t.Fatalf("third item = %+v", items[2])
	}
}

func TestGetJudgmentLazyCreate(t *testing.T) {
	r := newTestRouter(t, seedRepo(t))

	w := doJSON(t, r, http.MethodGet, "/api/v1/assessments/1/judgment", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got %d: %s", w.Code, w.Body.String())
	}
	var first review.Judgment
	if err := json.Unmarshal(w.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first.ReviewStatus != review.StatusPending || first.ID == "" {
		t.Fatalf("judgment = %+v", first)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/assessments/1/judgment", nil)
	var second review.Judgment
	if err := json.Unmarshal(w.Body.Bytes(), &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("repeat reads must return the same judgment")
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/assessments/999/judgment", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing assessment: got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/v1/assessments/zero/judgment", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("non-numeric assessment id: got %d", w.Code)
	}
}

func TestImportSubmission(t *testing.T) {
	r := newTestRouter(t, review.NewMemoryRepo())

	w := doJSON(t, r, http.MethodPost, "/api/v1/imports/submissions", map[string]any{
		"submissionId":   "S9",
		"siteId":         "SITE-9",
		"submissionType": "BRIDGE",
		"assessments": []map[string]any{
			{"id": 1, "policyId": "POL-1", "tier": "TIER_1_BINARY", "autoResult": "PASS", "autoConfidence": 0.9},
			{"id": 2, "policyId": "POL-2", "tier": "TIER_2_PROFESSIONAL", "autoResult": "FAIL", "autoConfidence": 0.6},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("import: got %d: %s", w.Code, w.Body.String())
	}
	var sub review.Submission
	if err := json.Unmarshal(w.Body.Bytes(), &sub); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sub.TotalCount != 2 || sub.PendingCount != 2 {
		t.Fatalf("imported counters = %+v", sub)
	}

	// Re-import is a conflict.
	w = doJSON(t, r, http.MethodPost, "/api/v1/imports/submissions", map[string]any{
		"submissionId":   "S9",
		"siteId":         "SITE-9",
		"submissionType": "BRIDGE",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate import: got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/imports/submissions", map[string]any{"siteId": "SITE-9"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid import: got %d", w.Code)
	}
}

func TestReviewSessionEndpoints(t *testing.T) {
	r := newTestRouter(t, seedRepo(t))

	w := doJSON(t, r, http.MethodPost, "/api/v1/submissions/S1/review-sessions", map[string]any{"reviewerId": "reviewer-1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("start session: got %d: %s", w.Code, w.Body.String())
	}
	var session review.ReviewSession
	if err := json.Unmarshal(w.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if session.ReviewerID != "reviewer-1" || session.EndedAt != nil {
		t.Fatalf("session = %+v", session)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/review-sessions/"+session.ID+"/end", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("end session: got %d: %s", w.Code, w.Body.String())
	}
	var ended review.ReviewSession
	if err := json.Unmarshal(w.Body.Bytes(), &ended); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ended.EndedAt == nil {
		t.Fatal("ended session should carry an end time")
	}

	// No reviewer identity anywhere.
	w = doJSON(t, r, http.MethodPost, "/api/v1/submissions/S1/review-sessions", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing reviewer: got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/submissions/ghost/review-sessions", map[string]any{"reviewerId": "reviewer-1"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing submission: got %d", w.Code)
	}
}
