package browse

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stashd/gateway/internal/response"
)

// Handler holds HTTP handlers for listing endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new browse Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// View godoc
//
//	@Summary		List a folder
//	@Description	Returns the files and subfolders directly under the given key prefix, one page at a time.
//	@Tags			files
//	@Produce		json
//	@Param			path	path		string	false	"Key prefix to list; empty for the bucket root"
//	@Param			cursor	query		string	false	"Continuation cursor from a previous page"
//	@Param			limit	query		int		false	"Requested page size; a server-side cap overrides it when configured"
//	@Success		200		{object}	browse.View
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/view/{path} [get]
func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	prefix, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		response.BadRequest(w, "invalid path")
		return
	}
	cursor := r.URL.Query().Get("cursor")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.BadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	body, err := h.svc.List(r.Context(), prefix, cursor, limit)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "not found")
			return
		}
		log.Printf("browse: %v", err)
		response.InternalError(w, "error listing bucket")
		return
	}

	response.Raw(w, http.StatusOK, body)
}
