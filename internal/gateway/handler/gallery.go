package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	galleryrepo "adcanvas/internal/gateway/repository/gallery"
	"adcanvas/internal/gateway/service/publish"
)

type GalleryHandler struct {
	publish *publish.Service
}

func NewGalleryHandler(pub *publish.Service) *GalleryHandler {
	return &GalleryHandler{publish: pub}
}

// HandleImage serves GET /gallery/{id}. Backends with presigned URLs get
// a redirect; the rest stream the bytes.
func (h *GalleryHandler) HandleImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	item, data, url, err := h.publish.Image(r.Context(), id)
	switch {
	case errors.Is(err, galleryrepo.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	case url != "":
		http.Redirect(w, r, url, http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", item.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
	_, _ = w.Write(data)
}
