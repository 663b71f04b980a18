package packets

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"review-backend/internal/shared/server/respond"
)

// Handler serves packet discovery and review views.
type Handler struct {
	Store *Store
}

// NewHandler constructs a Handler.
func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

// RegisterRoutes attaches packet routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/packets", h.list)
	rg.GET("/packets/:sessionId", h.get)
}

type sessionListResponse struct {
	Sessions []string `json:"sessions"`
}

// PacketView is the review projection of one packet: metadata with
// fallbacks applied, the validation outcome, and the flattened records.
type PacketView struct {
	Metadata   Metadata         `json:"metadata"`
	Validation ValidationResult `json:"validation"`
	Records    []FlatRecord     `json:"records"`
}

func (h *Handler) list(c *gin.Context) {
	respond.JSON(c, http.StatusOK, sessionListResponse{Sessions: h.Store.DiscoverSessions()})
}

func (h *Handler) get(c *gin.Context) {
	sessionID := c.Param("sessionId")
	c.Set("sessionId", sessionID)

	raw, err := h.Store.LoadBySessionID(sessionID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "no packet for session", nil)
		case errors.Is(err, ErrMalformed):
			// Undecodable bytes still get a view: fallback metadata plus
			// the violation, not an error page.
			respond.JSON(c, http.StatusOK, PacketView{
				Metadata:   ExtractMetadata(nil),
				Validation: ValidationResult{Valid: false, Violations: []string{ErrMalformed.Error()}},
				Records:    []FlatRecord{},
			})
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load packet", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, BuildView(raw))
}

// BuildView assembles the review projection for a decoded packet tree.
func BuildView(raw map[string]any) PacketView {
	records := ExtractRecords(raw)
	flattened := make([]FlatRecord, 0, len(records))
	for _, rec := range records {
		flattened = append(flattened, FlattenRecord(rec))
	}
	return PacketView{
		Metadata:   ExtractMetadata(raw),
		Validation: ValidatePacket(raw),
		Records:    flattened,
	}
}
