package upload

import (
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/stashd/gateway/internal/response"
)

// defaultContentType is assumed for upload fields that do not declare one.
const defaultContentType = "text/plain"

// Handler holds HTTP handlers for upload endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new upload Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Streams the "file" field of a multipart/form-data body into the object store under the given key.
//	@Tags			files
//	@Accept			mpfd
//	@Param			path	path	string	true	"Destination object key"
//	@Param			file	formData	file	true	"File content"
//	@Success		204
//	@Failure		400	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/upload/{path} [put]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		response.BadRequest(w, "invalid path")
		return
	}

	// MultipartReader streams the body frame by frame; the payload is never
	// buffered in full.
	mr, err := r.MultipartReader()
	if err != nil {
		response.BadRequest(w, "expected a multipart/form-data body")
		return
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			response.BadRequest(w, "malformed multipart body")
			return
		}
		if part.FormName() != "file" {
			continue
		}

		contentType := part.Header.Get("Content-Type")
		if contentType == "" {
			contentType = defaultContentType
		}

		if err := h.svc.Upload(r.Context(), key, contentType, part); err != nil {
			log.Printf("upload: %v", err)
			if errors.Is(err, ErrTooManyParts) {
				response.InternalError(w, "too many parts")
				return
			}
			response.InternalError(w, "error uploading to bucket")
			return
		}

		w.WriteHeader(http.StatusNoContent)
		return
	}

	response.BadRequest(w, "no 'file' field found in request")
}
