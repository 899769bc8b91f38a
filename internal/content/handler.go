package content

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/truck-repair-platform/pkg/logging"
)

const maxUploadBytes = 10 << 20

// Handler serves public content and the admin editor.
type Handler struct {
	repo     Repository
	settings SettingsStore
	media    MediaStore
	logger   *logging.Logger
}

// NewHandler creates a content handler. media may be nil, which disables uploads.
func NewHandler(repo Repository, settings SettingsStore, media MediaStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, settings: settings, media: media, logger: logger}
}

// PublicRoutes mounts the read-only site endpoints.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Get("/posts", h.ListPublishedPosts)
	r.Get("/posts/{slug}", h.GetPublishedPost)
	r.Get("/services", h.ListActiveServices)
	r.Get("/services/{slug}", h.GetActiveService)
	r.Get("/settings", h.GetSettings)
}

// AdminRoutes mounts the editor endpoints. Callers wrap them in admin auth.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Route("/posts", func(r chi.Router) {
		r.Get("/", h.ListAllPosts)
		r.Post("/", h.CreatePost)
		r.Put("/{postID}", h.UpdatePost)
		r.Delete("/{postID}", h.DeletePost)
	})
	r.Route("/services", func(r chi.Router) {
		r.Get("/", h.ListAllServices)
		r.Post("/", h.CreateService)
		r.Put("/{serviceID}", h.UpdateService)
		r.Delete("/{serviceID}", h.DeleteService)
	})
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.SaveSettings)
	r.Post("/media", h.UploadMedia)
}

// ListPublishedPosts handles GET /api/posts
func (h *Handler) ListPublishedPosts(w http.ResponseWriter, r *http.Request) {
	h.listPosts(w, r, true)
}

// ListAllPosts handles GET /admin/posts, drafts included.
func (h *Handler) ListAllPosts(w http.ResponseWriter, r *http.Request) {
	h.listPosts(w, r, false)
}

func (h *Handler) listPosts(w http.ResponseWriter, r *http.Request, publishedOnly bool) {
	posts, err := h.repo.ListPosts(r.Context(), publishedOnly)
	if err != nil {
		h.writeRepoError(w, err, "failed to list posts")
		return
	}
	if tag := strings.TrimSpace(r.URL.Query().Get("tag")); tag != "" {
		posts = filterByTag(posts, tag)
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// GetPublishedPost handles GET /api/posts/{slug}. Drafts are hidden.
func (h *Handler) GetPublishedPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.repo.GetPostBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeRepoError(w, err, "failed to load post")
		return
	}
	if !post.Published {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// CreatePost handles POST /admin/posts
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var post BlogPost
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.repo.CreatePost(r.Context(), &post); err != nil {
		h.writeRepoError(w, err, "failed to create post")
		return
	}
	h.logger.Info("blog post created", "post_id", post.ID, "slug", post.Slug)
	writeJSON(w, http.StatusCreated, post)
}

// UpdatePost handles PUT /admin/posts/{postID}
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var post BlogPost
	if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	post.ID = chi.URLParam(r, "postID")
	if err := h.repo.UpdatePost(r.Context(), &post); err != nil {
		h.writeRepoError(w, err, "failed to update post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// DeletePost handles DELETE /admin/posts/{postID}
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeletePost(r.Context(), chi.URLParam(r, "postID")); err != nil {
		h.writeRepoError(w, err, "failed to delete post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListActiveServices handles GET /api/services
func (h *Handler) ListActiveServices(w http.ResponseWriter, r *http.Request) {
	h.listServices(w, r, true)
}

// ListAllServices handles GET /admin/services
func (h *Handler) ListAllServices(w http.ResponseWriter, r *http.Request) {
	h.listServices(w, r, false)
}

func (h *Handler) listServices(w http.ResponseWriter, r *http.Request, activeOnly bool) {
	services, err := h.repo.ListServices(r.Context(), activeOnly)
	if err != nil {
		h.writeRepoError(w, err, "failed to list services")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": services})
}

// GetActiveService handles GET /api/services/{slug}
func (h *Handler) GetActiveService(w http.ResponseWriter, r *http.Request) {
	svc, err := h.repo.GetService(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeRepoError(w, err, "failed to load service")
		return
	}
	if !svc.Active {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

// CreateService handles POST /admin/services
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var svc Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.repo.CreateService(r.Context(), &svc); err != nil {
		h.writeRepoError(w, err, "failed to create service")
		return
	}
	writeJSON(w, http.StatusCreated, svc)
}

// UpdateService handles PUT /admin/services/{serviceID}
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	var svc Service
	if err := json.NewDecoder(r.Body).Decode(&svc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	svc.ID = chi.URLParam(r, "serviceID")
	if err := h.repo.UpdateService(r.Context(), &svc); err != nil {
		h.writeRepoError(w, err, "failed to update service")
		return
	}
	writeJSON(w, http.StatusOK, svc)
}

// DeleteService handles DELETE /admin/services/{serviceID}
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteService(r.Context(), chi.URLParam(r, "serviceID")); err != nil {
		h.writeRepoError(w, err, "failed to delete service")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSettings handles GET /api/settings and GET /admin/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to load site settings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// SaveSettings handles PUT /admin/settings
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings SiteSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(settings.ShopName) == "" || strings.TrimSpace(settings.Phone) == "" {
		writeError(w, http.StatusUnprocessableEntity, "shopName and phone are required")
		return
	}
	if err := h.settings.Save(r.Context(), settings); err != nil {
		h.logger.Error("failed to save site settings", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// UploadMedia handles POST /admin/media (multipart field "file", images only).
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if h.media == nil {
		writeError(w, http.StatusServiceUnavailable, "media uploads are not configured")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusUnsupportedMediaType, "only images can be uploaded")
		return
	}

	url, err := h.media.Upload(r.Context(), header.Filename, contentType, file)
	if err != nil {
		h.logger.Error("media upload failed", "filename", header.Filename, "error", err)
		writeError(w, http.StatusBadGateway, "upload failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

func (h *Handler) writeRepoError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, ErrSlugTaken):
		writeError(w, http.StatusConflict, "slug already in use")
	case errors.Is(err, ErrInvalid):
		writeError(w, http.StatusUnprocessableEntity, strings.TrimPrefix(err.Error(), ErrInvalid.Error()+"\n"))
	default:
		h.logger.Error(msg, "error", err)
		writeError(w, http.StatusInternalServerError, msg)
	}
}

func filterByTag(posts []BlogPost, tag string) []BlogPost {
	out := make([]BlogPost, 0, len(posts))
	for _, p := range posts {
		for _, t := range p.Tags {
			if strings.EqualFold(t, tag) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
