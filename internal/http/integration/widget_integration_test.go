package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/userdesk/internal/config"
	apphttp "github.com/geocoder89/userdesk/internal/http"
	"github.com/geocoder89/userdesk/internal/http/middlewares"
	"github.com/geocoder89/userdesk/internal/observability"
	"github.com/geocoder89/userdesk/internal/session"
	"github.com/geocoder89/userdesk/internal/widget"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		Env:                "test",
		ServiceName:        "userdesk-test",
		SessionTTL:         time.Minute,
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 1000,
	}
}

type snapshotResponse struct {
	User *struct {
		ID    int64  `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
	Form struct {
		Mode        string            `json:"mode"`
		EditingID   *int64            `json:"editingId"`
		SubmitLabel string            `json:"submitLabel"`
		Name        string            `json:"name"`
		Email       string            `json:"email"`
		Errors      map[string]string `json:"errors"`
	} `json:"form"`
	Sort *struct {
		Key       string `json:"key"`
		Direction string `json:"direction"`
	} `json:"sort"`
	Page struct {
		Items []struct {
			ID    int64  `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"items"`
		Page       int  `json:"page"`
		TotalPages int  `json:"totalPages"`
		TotalItems int  `json:"totalItems"`
		HasPrev    bool `json:"hasPrev"`
		HasNext    bool `json:"hasNext"`
	} `json:"page"`
}

type apiErrorResponse struct {
	Error struct {
		Code      string          `json:"code"`
		Message   string          `json:"message"`
		RequestID string          `json:"requestId"`
		Details   json.RawMessage `json:"details"`
	} `json:"error"`
}

type client struct {
	t         *testing.T
	router    *gin.Engine
	sessionID string
}

func setupTestRouter(t *testing.T) (*gin.Engine, *prometheus.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	sessions := session.NewStore(time.Minute, func() *widget.Widget {
		return widget.New(widget.WithLogger(logger), widget.WithRecorder(prom))
	}, prom.SessionsActive, logger)

	router := apphttp.NewRouter(apphttp.Deps{
		Config:   testConfig(),
		Log:      logger,
		Sessions: sessions,
		Prom:     prom,
		Gatherer: reg,
	})

	return router, reg
}

func newClient(t *testing.T, router *gin.Engine) *client {
	return &client{t: t, router: router, sessionID: session.NewID()}
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middlewares.SessionHeader, c.sessionID)

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func (c *client) snapshot(w *httptest.ResponseRecorder, wantStatus int) snapshotResponse {
	c.t.Helper()
	require.Equal(c.t, wantStatus, w.Code, "body=%s", w.Body.String())

	var resp snapshotResponse
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp), "body=%s", w.Body.String())
	return resp
}

func (c *client) apiError(w *httptest.ResponseRecorder, wantStatus int) apiErrorResponse {
	c.t.Helper()
	require.Equal(c.t, wantStatus, w.Code, "body=%s", w.Body.String())

	var resp apiErrorResponse
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp), "body=%s", w.Body.String())
	return resp
}

func (c *client) add(name, email string) snapshotResponse {
	c.t.Helper()
	body := fmt.Sprintf(`{"name":%q,"email":%q}`, name, email)
	return c.snapshot(c.do(http.MethodPost, "/api/widget/submit", body), http.StatusCreated)
}

func TestWidgetCRUDFlow(t *testing.T) {
	router, _ := setupTestRouter(t)
	c := newClient(t, router)

	created := c.add("Ada", "ada@example.com")
	require.NotNil(t, created.User)
	assert.Equal(t, 1, created.Page.TotalItems)
	assert.Equal(t, "Add User", created.Form.SubmitLabel)

	c.add("Grace", "grace@example.com")

	// duplicate by email, different case
	errResp := c.apiError(c.do(http.MethodPost, "/api/widget/submit", `{"name":"Someone","email":"ADA@example.com"}`), http.StatusConflict)
	assert.Equal(t, "duplicate_user", errResp.Error.Code)
	assert.Equal(t, "User with the same name or email already exists.", errResp.Error.Message)

	snap := c.snapshot(c.do(http.MethodGet, "/api/widget", ""), http.StatusOK)
	assert.Equal(t, 2, snap.Page.TotalItems)

	// edit and resubmit unchanged values
	id := created.User.ID
	snap = c.snapshot(c.do(http.MethodPost, fmt.Sprintf("/api/widget/users/%d/edit", id), ""), http.StatusOK)
	assert.Equal(t, "edit", snap.Form.Mode)
	assert.Equal(t, "Update User", snap.Form.SubmitLabel)
	assert.Equal(t, "Ada", snap.Form.Name)

	snap = c.snapshot(c.do(http.MethodPost, "/api/widget/submit", `{"name":"Ada","email":"ada@example.com"}`), http.StatusOK)
	assert.Equal(t, "create", snap.Form.Mode)
	assert.Equal(t, id, snap.User.ID)

	// deleting the edited record resets the form
	c.snapshot(c.do(http.MethodPost, fmt.Sprintf("/api/widget/users/%d/edit", id), ""), http.StatusOK)
	snap = c.snapshot(c.do(http.MethodDelete, fmt.Sprintf("/api/widget/users/%d", id), ""), http.StatusOK)
	assert.Equal(t, "create", snap.Form.Mode)
	assert.Nil(t, snap.Form.EditingID)
	assert.Equal(t, 1, snap.Page.TotalItems)

	c.apiError(c.do(http.MethodDelete, fmt.Sprintf("/api/widget/users/%d", id), ""), http.StatusNotFound)
}

func TestWidgetValidationErrors(t *testing.T) {
	router, _ := setupTestRouter(t)
	c := newClient(t, router)

	resp := c.apiError(c.do(http.MethodPost, "/api/widget/submit", `{"name":"","email":"not-an-email"}`), http.StatusBadRequest)
	assert.Equal(t, "invalid_request", resp.Error.Code)

	var details struct {
		Fields []struct {
			Field   string `json:"field"`
			Rule    string `json:"rule"`
			Message string `json:"message"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(resp.Error.Details, &details))
	require.Len(t, details.Fields, 2)
	assert.Equal(t, "name", details.Fields[0].Field)
	assert.Equal(t, "Name is required", details.Fields[0].Message)
	assert.Equal(t, "email", details.Fields[1].Field)
	assert.Equal(t, "Invalid email address", details.Fields[1].Message)

	// the form remembers what was typed and why it failed
	snap := c.snapshot(c.do(http.MethodGet, "/api/widget", ""), http.StatusOK)
	assert.Equal(t, "not-an-email", snap.Form.Email)
	assert.Equal(t, "Invalid email address", snap.Form.Errors["email"])
	assert.Equal(t, 0, snap.Page.TotalItems)
}

func TestWidgetSortToggle(t *testing.T) {
	router, _ := setupTestRouter(t)
	c := newClient(t, router)

	c.add("carol", "a@example.com")
	c.add("alice", "c@example.com")
	c.add("bob", "b@example.com")

	snap := c.snapshot(c.do(http.MethodPost, "/api/widget/sort/name", ""), http.StatusOK)
	require.NotNil(t, snap.Sort)
	assert.Equal(t, "ascending", snap.Sort.Direction)
	assert.Equal(t, "alice", snap.Page.Items[0].Name)

	snap = c.snapshot(c.do(http.MethodPost, "/api/widget/sort/name", ""), http.StatusOK)
	assert.Equal(t, "descending", snap.Sort.Direction)
	assert.Equal(t, "carol", snap.Page.Items[0].Name)

	snap = c.snapshot(c.do(http.MethodPost, "/api/widget/sort/email", ""), http.StatusOK)
	assert.Equal(t, "email", snap.Sort.Key)
	assert.Equal(t, "ascending", snap.Sort.Direction)
	assert.Equal(t, "carol", snap.Page.Items[0].Name)

	c.apiError(c.do(http.MethodPost, "/api/widget/sort/id", ""), http.StatusBadRequest)
}

func TestWidgetPagination(t *testing.T) {
	router, _ := setupTestRouter(t)
	c := newClient(t, router)

	for i := 1; i <= 12; i++ {
		c.add(fmt.Sprintf("user%02d", i), fmt.Sprintf("user%02d@example.com", i))
	}

	snap := c.snapshot(c.do(http.MethodGet, "/api/widget", ""), http.StatusOK)
	assert.Equal(t, 1, snap.Page.Page)
	assert.Equal(t, 3, snap.Page.TotalPages)
	assert.False(t, snap.Page.HasPrev)
	assert.Equal(t, "user01", snap.Page.Items[0].Name)
	assert.Len(t, snap.Page.Items, 5)

	snap = c.snapshot(c.do(http.MethodPost, "/api/widget/page/3", ""), http.StatusOK)
	assert.False(t, snap.Page.HasNext)
	require.Len(t, snap.Page.Items, 2)
	assert.Equal(t, "user11", snap.Page.Items[0].Name)
	assert.Equal(t, "user12", snap.Page.Items[1].Name)

	snap = c.snapshot(c.do(http.MethodPost, "/api/widget/next", ""), http.StatusOK)
	assert.Equal(t, 3, snap.Page.Page)

	snap = c.snapshot(c.do(http.MethodPost, "/api/widget/prev", ""), http.StatusOK)
	assert.Equal(t, 2, snap.Page.Page)

	snap = c.snapshot(c.do(http.MethodGet, "/api/widget?page=99", ""), http.StatusOK)
	assert.Equal(t, 3, snap.Page.Page)

	c.apiError(c.do(http.MethodPost, "/api/widget/page/0", ""), http.StatusBadRequest)
	c.apiError(c.do(http.MethodGet, "/api/widget?page=0", ""), http.StatusBadRequest)
}

func TestSessionsDoNotShareWidgets(t *testing.T) {
	router, _ := setupTestRouter(t)
	a := newClient(t, router)
	b := newClient(t, router)

	a.add("Ada", "ada@example.com")

	snap := b.snapshot(b.do(http.MethodGet, "/api/widget", ""), http.StatusOK)
	assert.Equal(t, 0, snap.Page.TotalItems)

	// same values are fine in another session
	b.add("Ada", "ada@example.com")
}

func TestResetSessionStartsOver(t *testing.T) {
	router, _ := setupTestRouter(t)
	c := newClient(t, router)
	c.add("Ada", "ada@example.com")

	snap := c.snapshot(c.do(http.MethodDelete, "/api/widget/session", ""), http.StatusOK)
	assert.Equal(t, 0, snap.Page.TotalItems)
	assert.Equal(t, "create", snap.Form.Mode)

	// the old record is gone, so the same values are accepted again
	c.add("Ada", "ada@example.com")
}

func TestSnapshotETag(t *testing.T) {
	router, _ := setupTestRouter(t)
	c := newClient(t, router)
	c.add("Ada", "ada@example.com")

	w := c.do(http.MethodGet, "/api/widget", "")
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/api/widget", nil)
	req.Header.Set(middlewares.SessionHeader, c.sessionID)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotModified, w.Code)
}

func TestHTMLPageFlow(t *testing.T) {
	router, _ := setupTestRouter(t)
	sid := session.NewID()

	post := func(path string, form string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: middlewares.SessionCookie, Value: sid})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}
	page := func() string {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: middlewares.SessionCookie, Value: sid})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		return w.Body.String()
	}

	body := page()
	assert.Contains(t, body, "Add User")
	assert.Contains(t, body, `<label for="name">Name:</label>`)

	w := post("/ui/submit", "name=Ada&email=ada%40example.com")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?page=1", w.Header().Get("Location"))
	assert.Contains(t, page(), "ada@example.com")

	post("/ui/submit", "name=ADA&email=x%40example.com")
	assert.Contains(t, page(), "User with the same name or email already exists.")

	post("/ui/submit", "name=&email=bad")
	body = page()
	assert.Contains(t, body, "Name is required")
	assert.Contains(t, body, "Invalid email address")

	post("/ui/sort/name", "")
	assert.Contains(t, page(), "Name ↑")
	post("/ui/sort/name", "")
	assert.Contains(t, page(), "Name ↓")

	w = post("/ui/users/abc/edit", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOperationalEndpoints(t *testing.T) {
	router, _ := setupTestRouter(t)
	c := newClient(t, router)
	c.add("Ada", "ada@example.com")

	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `userdesk_widget_events_total{event="add",result="ok"} 1`)
	assert.Contains(t, w.Body.String(), "userdesk_sessions_active 1")
}
