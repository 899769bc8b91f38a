package content

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContentRouter(t *testing.T, media MediaStore) (http.Handler, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	h := NewHandler(repo, NewMemorySettingsStore(DefaultSettings("Big Rig Repair", "555-0199")), media, nil)
	r := chi.NewRouter()
	r.Route("/api", h.PublicRoutes)
	r.Route("/admin", h.AdminRoutes)
	return r, repo
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_PostLifecycle(t *testing.T) {
	h, _ := newContentRouter(t, nil)

	rec := do(t, h, http.MethodPost, "/admin/posts/", `{"title":"Winter Prep","body":"Check your batteries.","tags":["Winter"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post BlogPost
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, "winter-prep", post.Slug)
	assert.False(t, post.Published)

	rec = do(t, h, http.MethodGet, "/api/posts/winter-prep", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "drafts stay hidden")

	rec = do(t, h, http.MethodGet, "/api/posts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"posts":[]}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/admin/posts/"+post.ID, `{"title":"Winter Prep","body":"Check your batteries.","tags":["Winter"],"published":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/posts/winter-prep", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/posts?tag=winter", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Posts []BlogPost `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Posts, 1)

	rec = do(t, h, http.MethodPost, "/admin/posts/", `{"title":"Winter Prep"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/admin/posts/", `{"body":"no title"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "title is required")

	rec = do(t, h, http.MethodDelete, "/admin/posts/"+post.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodDelete, "/admin/posts/"+post.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Services(t *testing.T) {
	h, repo := newContentRouter(t, nil)
	ctx := context.Background()
	require.NoError(t, repo.CreateService(ctx, &Service{Name: "Engine Repair", Active: true}))
	require.NoError(t, repo.CreateService(ctx, &Service{Name: "Paint"}))

	rec := do(t, h, http.MethodGet, "/api/services", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Services []Service `json:"services"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Services, 1)
	assert.Equal(t, "engine-repair", list.Services[0].Slug)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/services/paint", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/services/engine-repair", "").Code)

	rec = do(t, h, http.MethodGet, "/admin/services/", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Services, 2)

	rec = do(t, h, http.MethodPost, "/admin/services/", `{"name":"Tire Service","features":["Mounting"],"active":true}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var svc Service
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &svc))

	rec = do(t, h, http.MethodPut, "/admin/services/"+svc.ID, `{"name":"Tire Service","active":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/services/tire-service", "").Code)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/admin/services/"+svc.ID, "").Code)
}

func TestHandler_Settings(t *testing.T) {
	h, _ := newContentRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"shopName":"Big Rig Repair"`)

	rec = do(t, h, http.MethodPut, "/admin/settings", `{"shopName":"","phone":"1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPut, "/admin/settings", `{"shopName":"Big Rig Repair","phone":"555-0100","emergencyAvailable":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/settings", "")
	assert.Contains(t, rec.Body.String(), `"phone":"555-0100"`)
}

func multipartUpload(t *testing.T, filename, contentType, data string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandler_UploadMedia(t *testing.T) {
	client := &mockS3Client{}
	h, _ := newContentRouter(t, NewS3MediaStore(client, "shop-media", "https://cdn.shop.example"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartUpload(t, "truck.png", "image/png", "png-bytes"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, strings.HasPrefix(body["url"], "https://cdn.shop.example/media/"))
	assert.Equal(t, "png-bytes", string(client.body))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, multipartUpload(t, "notes.txt", "text/plain", "hello"))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Len(t, client.puts, 1)
}

func TestHandler_UploadMediaDisabled(t *testing.T) {
	h, _ := newContentRouter(t, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartUpload(t, "truck.png", "image/png", "png-bytes"))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
