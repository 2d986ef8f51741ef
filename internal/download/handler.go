package download

import (
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/stashd/gateway/internal/response"
)

// Handler holds HTTP handlers for download endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new download Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Download godoc
//
//	@Summary		Download a file
//	@Description	Redirects to a time-limited presigned URL for the object; the gateway never proxies the bytes.
//	@Tags			files
//	@Param			path	path	string	true	"Object key"
//	@Success		302
//	@Failure		404	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/download/{path} [get]
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || key == "" {
		response.NotFound(w, "not found")
		return
	}

	u, err := h.svc.Resolve(r.Context(), key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(w, "not found")
			return
		}
		log.Printf("download: %v", err)
		response.InternalError(w, "error accessing object")
		return
	}

	http.Redirect(w, r, u.String(), http.StatusFound)
}
