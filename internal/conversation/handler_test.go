package conversation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *fixture) {
	t.Helper()
	f := newFixture(t)
	r := chi.NewRouter()
	r.Route("/api/chat", NewHandler(f.engine, nil).Routes)
	return r, f
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func startSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/chat/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var reply Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	require.NotNil(t, reply.Session)
	return reply.Session.ID
}

func TestHandler_AppointmentFlow(t *testing.T) {
	h, f := newTestRouter(t)
	id := startSession(t, h)
	base := "/api/chat/sessions/" + id

	rec := doJSON(t, h, http.MethodPost, base+"/messages", `{"message":"my engine keeps stalling"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var reply Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, StepAppointmentForm, reply.Step)
	assert.True(t, reply.ShowForm)

	rec = doJSON(t, h, http.MethodPost, base+"/lead", `{"name":"Jane","phone":"555-0100","truckMake":"Volvo","issue":"won't start","urgency":"urgent"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, f.repo.Len())
	assert.Len(t, f.email.sent, 1)

	rec = doJSON(t, h, http.MethodGet, base+"/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var session map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "completed", session["currentStep"])

	rec = doJSON(t, h, http.MethodPost, base+"/messages", `{"message":"hello?"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_LeadValidation(t *testing.T) {
	h, f := newTestRouter(t)
	id := startSession(t, h)
	base := "/api/chat/sessions/" + id

	rec := doJSON(t, h, http.MethodPost, base+"/options", `{"option":"emergency"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, base+"/lead", `{"name":"Sam","phone":"555-0111","issue":"smoke"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Missing []string `json:"missing"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"location"}, body.Missing)
	assert.Equal(t, 0, f.repo.Len())
}

func TestHandler_Errors(t *testing.T) {
	h, _ := newTestRouter(t)
	id := startSession(t, h)
	base := "/api/chat/sessions/" + id

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown session", http.MethodGet, "/api/chat/sessions/nope/", "", http.StatusNotFound},
		{"bad json", http.MethodPost, base + "/messages", `{`, http.StatusBadRequest},
		{"blank message", http.MethodPost, base + "/messages", `{"message":"  "}`, http.StatusBadRequest},
		{"unknown option", http.MethodPost, base + "/options", `{"option":"tow"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHandler_FAQ(t *testing.T) {
	h, _ := newTestRouter(t)
	id := startSession(t, h)

	rec := doJSON(t, h, http.MethodGet, "/api/chat/sessions/"+id+"/faq", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var reply Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, StepFAQ, reply.Step)
	assert.Contains(t, reply.Messages[0].Text, "Here are some frequently asked questions:")
}
