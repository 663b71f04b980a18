package judgments

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"review-backend/internal/shared/server/respond"
)

// Handler wires the bulk judgment endpoint to the pipeline service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches judgment routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/judgments/bulk", h.bulk)
}

func (h *Handler) bulk(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	c.Set("submissionId", req.SubmissionID)

	result, err := h.Svc.ApplyBatch(c.Request.Context(), req)
	if err != nil {
		var validationErr *ValidationError
		switch {
		case errors.As(err, &validationErr):
			respond.Error(c, http.StatusBadRequest, "validation_error", validationErr.Error(), nil)
		case errors.Is(err, ErrSubmissionNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "submission not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process judgments", nil)
		}
		return
	}

	respond.JSON(c, statusForResult(result), result)
}

// statusForResult maps the aggregate outcome: every item failed is
// unprocessable, every item succeeded is OK, a mix is multi-status.
func statusForResult(result BatchResult) int {
	switch {
	case result.AllFailed():
		return http.StatusUnprocessableEntity
	case result.AllSucceeded():
		return http.StatusOK
	default:
		return http.StatusMultiStatus
	}
}
