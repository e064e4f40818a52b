package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uniportal/internal/normalize"
	"github.com/noah-isme/uniportal/pkg/apiclient"
	appErrors "github.com/noah-isme/uniportal/pkg/errors"
)

type portalCall struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
}

type portalHandler func(call portalCall) (interface{}, error)

// fakePortal routes calls by "METHOD path" and records them. Unrouted calls
// answer 404.
type fakePortal struct {
	mu     sync.Mutex
	routes map[string]portalHandler
	calls  []portalCall
}

func newFakePortal() *fakePortal {
	return &fakePortal{routes: map[string]portalHandler{}}
}

func (f *fakePortal) on(method, path string, h portalHandler) *fakePortal {
	f.routes[method+" "+path] = h
	return f
}

func (f *fakePortal) reply(method, path string, payload interface{}) *fakePortal {
	return f.on(method, path, func(portalCall) (interface{}, error) { return payload, nil })
}

func (f *fakePortal) fail(method, path string, status int) *fakePortal {
	return f.on(method, path, func(portalCall) (interface{}, error) {
		return nil, appErrors.FromStatus(status, nil)
	})
}

func (f *fakePortal) recorded() []portalCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]portalCall(nil), f.calls...)
}

func (f *fakePortal) do(method, path string, query url.Values, body interface{}) (interface{}, error) {
	call := portalCall{Method: method, Path: path, Query: query, Body: body}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	h, ok := f.routes[method+" "+path]
	f.mu.Unlock()
	if !ok {
		return nil, appErrors.FromStatus(http.StatusNotFound, []byte("no route"))
	}
	return h(call)
}

func (f *fakePortal) Get(ctx context.Context, path string, query url.Values) (interface{}, error) {
	return f.do(http.MethodGet, path, query, nil)
}

func (f *fakePortal) Post(ctx context.Context, path string, body interface{}) (interface{}, error) {
	return f.do(http.MethodPost, path, nil, body)
}

func (f *fakePortal) Put(ctx context.Context, path string, body interface{}) (interface{}, error) {
	return f.do(http.MethodPut, path, nil, body)
}

func (f *fakePortal) Patch(ctx context.Context, path string, query url.Values, body interface{}) (interface{}, error) {
	return f.do(http.MethodPatch, path, query, body)
}

func (f *fakePortal) Delete(ctx context.Context, path string) (interface{}, error) {
	return f.do(http.MethodDelete, path, nil, nil)
}

func jsonPayload(t *testing.T, raw string) interface{} {
	t.Helper()
	v := normalize.Decode([]byte(raw))
	require.NotNil(t, v, "invalid fixture %s", raw)
	return v
}

// newHTTPPortal serves register's routes under /api and returns a real client
// pointed at them.
func newHTTPPortal(t *testing.T, register func(r *gin.RouterGroup)) *apiclient.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	register(r.Group("/api"))
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	client, err := apiclient.New(apiclient.Options{BaseURL: server.URL + "/api", AccessToken: "token"})
	require.NoError(t, err)
	return client
}
