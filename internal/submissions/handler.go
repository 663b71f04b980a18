// Package submissions serves the read side of the review workflow:
// submissions with their counters, priority-ordered worklists, lazy
// judgment access, review sessions, and the admin import step.
package submissions

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"review-backend/internal/review"
	"review-backend/internal/shared/server/middleware"
	"review-backend/internal/shared/server/respond"
	"review-backend/internal/tier"
)

// Handler wires submission and review-session routes to the review store.
type Handler struct {
	Repo review.Repo
}

// NewHandler constructs a Handler.
func NewHandler(repo review.Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes attaches read routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/submissions/:id", h.getSubmission)
	rg.GET("/submissions/:id/assessments", h.worklist)
	rg.GET("/assessments/:id/judgment", h.getJudgment)
}

// RegisterAdminRoutes attaches the mutating routes gated on the admin
// capability.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/imports/submissions", h.importSubmission)
	rg.POST("/submissions/:id/review-sessions", h.startSession)
	rg.POST("/review-sessions/:id/end", h.endSession)
}

func (h *Handler) getSubmission(c *gin.Context) {
	id := c.Param("id")
	c.Set("submissionId", id)

	sub, err := h.Repo.GetSubmissionByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, review.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "submission not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch submission", nil)
		return
	}
	respond.JSON(c, http.StatusOK, sub)
}

func (h *Handler) worklist(c *gin.Context) {
	id := c.Param("id")
	c.Set("submissionId", id)

	if _, err := h.Repo.GetSubmissionByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, review.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "submission not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch submission", nil)
		return
	}

	assessments, err := h.Repo.ListAssessmentsBySubmission(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list assessments", nil)
		return
	}

	items := make([]WorklistItem, 0, len(assessments))
	for _, a := range assessments {
		texts := a.HardStopTexts()
		term, _ := tier.HardStopMatch(texts...)
		effective := tier.EffectiveTier(a.Tier, texts...)
		items = append(items, WorklistItem{
			Assessment:     a,
			EffectiveTier:  effective,
			HardStopTerm:   term,
			Priority:       tier.Priority(effective, a.AutoResult, a.AutoConfidence),
			RequiresReview: tier.RequiresHumanReview(effective, a.AutoResult, a.AutoConfidence),
		})
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		return tier.Less(
			a.EffectiveTier, a.Assessment.AutoResult, a.Assessment.AutoConfidence, a.Assessment.ID,
			b.EffectiveTier, b.Assessment.AutoResult, b.Assessment.AutoConfidence, b.Assessment.ID,
		)
	})
	respond.JSON(c, http.StatusOK, items)
}

// getJudgment is the lazy judgment touchpoint: the first read creates the
// PENDING row, later reads return it unchanged.
func (h *Handler) getJudgment(c *gin.Context) {
	assessmentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || assessmentID <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "assessment id must be a positive number", nil)
		return
	}

	if _, err := h.Repo.GetAssessmentByID(c.Request.Context(), assessmentID); err != nil {
		if errors.Is(err, review.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "assessment not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch assessment", nil)
		return
	}

	judgment, err := h.Repo.GetOrCreateJudgment(c.Request.Context(), assessmentID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load judgment", nil)
		return
	}
	respond.JSON(c, http.StatusOK, judgment)
}

func (h *Handler) importSubmission(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	c.Set("submissionId", req.SubmissionID)

	sub := review.Submission{
		ID:             req.SubmissionID,
		SiteID:         req.SiteID,
		SubmissionType: req.SubmissionType,
		EvaluatedAt:    req.EvaluatedAt,
	}
	if err := h.Repo.CreateSubmission(c.Request.Context(), sub); err != nil {
		if strings.Contains(err.Error(), "already exists") || strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "duplicate") {
			respond.Error(c, http.StatusConflict, "already_exists", "submission already imported", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to import submission", nil)
		return
	}

	for _, in := range req.Assessments {
		evidence := make([]review.Evidence, 0, len(in.Evidence))
		for _, ev := range in.Evidence {
			evidence = append(evidence, review.Evidence(ev))
		}
		a := review.Assessment{
			ID:             in.ID,
			SubmissionID:   req.SubmissionID,
			PolicyID:       in.PolicyID,
			PolicyText:     in.PolicyText,
			Tier:           tier.Tier(in.Tier),
			AutoResult:     in.AutoResult,
			AutoConfidence: in.AutoConfidence,
			Evidence:       evidence,
		}
		if err := h.Repo.CreateAssessment(c.Request.Context(), a); err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to import assessments", nil)
			return
		}
	}

	if err := h.Repo.RefreshSubmissionCounts(c.Request.Context(), req.SubmissionID); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to compute counters", nil)
		return
	}
	sub, err := h.Repo.GetSubmissionByID(c.Request.Context(), req.SubmissionID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch submission", nil)
		return
	}
	respond.Created(c, sub)
}

func (h *Handler) startSession(c *gin.Context) {
	submissionID := c.Param("id")
	c.Set("submissionId", submissionID)

	// The body is optional; the reviewer id can also come from the
	// identity header.
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = StartSessionRequest{}
	}
	reviewerID := strings.TrimSpace(req.ReviewerID)
	if reviewerID == "" {
		reviewerID = middleware.ReviewerIDFromContext(c)
	}
	if reviewerID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "reviewer identity is required to start a session", nil)
		return
	}

	if _, err := h.Repo.GetSubmissionByID(c.Request.Context(), submissionID); err != nil {
		if errors.Is(err, review.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "submission not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch submission", nil)
		return
	}

	session, err := h.Repo.StartReviewSession(c.Request.Context(), submissionID, reviewerID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to start review session", nil)
		return
	}
	c.Set("sessionId", session.ID)
	respond.Created(c, session)
}

func (h *Handler) endSession(c *gin.Context) {
	id := c.Param("id")
	c.Set("sessionId", id)

	session, err := h.Repo.EndReviewSession(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, review.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "review session not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to end review session", nil)
		return
	}
	respond.JSON(c, http.StatusOK, session)
}
