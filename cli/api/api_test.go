package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"gotest.tools/v3/assert"

	"github.com/oaiiae/contacts-api/datastores"
)

func do(h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewRouter(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	handler, _ := NewRouter(&RouterOptions{}, "1.0.0", "abc", "today", datastores.NewContactsInmem(), nil, logger)

	rec := do(handler, http.MethodPost, "/contacts",
		`{"firstName":"Ann","lastName":"Lee","email":"a@x.com","favoriteColor":"blue","birthday":"1990-01-01"}`,
		"X-Request-Id", "req-1")
	assert.Equal(t, rec.Code, http.StatusCreated)
	assert.Equal(t, rec.Header().Get("X-Request-Id"), "req-1")
	var created struct{ ID string }
	assert.NilError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = do(handler, http.MethodGet, "/contacts/"+created.ID, "")
	assert.Equal(t, rec.Code, http.StatusOK)
	assert.Assert(t, rec.Header().Get("X-Request-Id") != "", "a request id is generated")

	rec = do(handler, http.MethodGet, "/contacts/nope", "")
	assert.Equal(t, rec.Code, http.StatusBadRequest)

	assert.Assert(t, strings.Contains(logs.String(), "x-request-id=req-1"))
	assert.Assert(t, strings.Contains(logs.String(), `msg="POST /contacts HTTP/1.1"`))
	assert.Assert(t, strings.Contains(logs.String(), "level=WARN msg=\"error occurred\""))

	rec = do(handler, http.MethodGet, "/metrics", "")
	assert.Equal(t, rec.Code, http.StatusOK)
	metrics := rec.Body.String()
	assert.Assert(t, strings.Contains(metrics, `build_info{goversion=`))
	assert.Assert(t, strings.Contains(metrics, `http_requests_total{method="POST",path="/contacts",status="201"} 1`))
	assert.Assert(t, strings.Contains(metrics, `http_requests_total{method="GET",path="/contacts/{id}",status="400"} 1`))

	assert.Equal(t, do(handler, http.MethodGet, "/readiness", "").Code, http.StatusOK)
	assert.Equal(t, do(handler, http.MethodGet, "/liveness", "").Code, http.StatusOK)
}

func TestNewRouterPrefix(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	handler, api := NewRouter(&RouterOptions{EndpointsPrefix: "/api"}, "1.0.0", "", "", datastores.NewContactsInmem(), nil, logger)

	assert.Equal(t, do(handler, http.MethodGet, "/api/contacts", "").Code, http.StatusOK)
	assert.Equal(t, do(handler, http.MethodGet, "/contacts", "").Code, http.StatusNotFound)
	assert.Assert(t, api.OpenAPI().Paths["/api/contacts/{id}"] != nil)
	assert.Equal(t, api.OpenAPI().Info.Title, "Contacts API")
}

func TestNewRouterNotReady(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	store := &datastores.ContactsMongo{Handle: new(datastores.Mongo)}
	handler, _ := NewRouter(&RouterOptions{}, "1.0.0", "", "", store, new(datastores.Mongo).Ping, logger)

	assert.Equal(t, do(handler, http.MethodGet, "/readiness", "").Code, http.StatusServiceUnavailable)

	rec := do(handler, http.MethodGet, "/contacts", "")
	assert.Equal(t, rec.Code, http.StatusInternalServerError)
	assert.Equal(t, strings.TrimSpace(rec.Body.String()), `{"message":"Internal server error"}`)
}

func TestNewServer(t *testing.T) {
	srv := NewServer(&ServerOptions{Host: "127.0.0.1", Port: "8080", ReadHeaderTimeout: time.Second}, http.NotFoundHandler(), slog.New(slog.DiscardHandler))
	assert.Equal(t, srv.Addr, "127.0.0.1:8080")
	assert.Equal(t, srv.ReadHeaderTimeout, time.Second)
	assert.Assert(t, srv.ErrorLog != nil)
}

type statusErr struct{ status int }

func (e statusErr) Error() string  { return "status error" }
func (e statusErr) GetStatus() int { return e.status }

var _ huma.StatusError = statusErr{}

func TestErrorHandler(t *testing.T) {
	var logs bytes.Buffer
	handle := ctxlog{}.errorHandler(slog.New(slog.NewTextHandler(&logs, nil)))

	for _, tc := range []struct {
		err   error
		level string
	}{
		{errors.New("plain"), "level=ERROR"},
		{statusErr{http.StatusInternalServerError}, "level=ERROR"},
		{statusErr{http.StatusNotFound}, "level=WARN"},
	} {
		logs.Reset()
		handle(context.Background(), tc.err)
		assert.Assert(t, strings.HasPrefix(logs.String(), "time="), logs.String())
		assert.Assert(t, strings.Contains(logs.String(), tc.level), logs.String())
	}
}

func TestRecoverMiddleware(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	handler, api := NewRouter(&RouterOptions{}, "1.0.0", "", "", datastores.NewContactsInmem(), nil, logger)
	huma.Get(api, "/panic", func(context.Context, *struct{}) (*struct{}, error) { panic("boom") })

	rec := do(handler, http.MethodGet, "/panic", "")
	assert.Equal(t, rec.Code, http.StatusInternalServerError)
	assert.Assert(t, strings.Contains(logs.String(), "panic occurred"))
	assert.Assert(t, strings.Contains(logs.String(), "recovered=boom"))
}
