package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"solr-admin-go/internal/config"
	"solr-admin-go/pkg/solr"
)

// recordedCall 是 fakeSolr 收到的一次请求。
type recordedCall struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// fakeSolr 是一个记录所有调用的 Solr 替身，路由由测试按路径后缀注册。
type fakeSolr struct {
	mu     sync.Mutex
	calls  []recordedCall
	routes map[string]http.HandlerFunc
	srv    *httptest.Server
}

func newFakeSolr(t *testing.T) *fakeSolr {
	t.Helper()
	f := &fakeSolr{routes: map[string]http.HandlerFunc{}}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

// BaseURL 模拟部署在 /solr 下的 Solr。
func (f *fakeSolr) BaseURL() string {
	return f.srv.URL + "/solr"
}

// on 为 "/solr/" 之后的路径注册处理函数，例如 "admin/collections"。
func (f *fakeSolr) on(path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[path] = h
}

func (f *fakeSolr) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := strings.TrimPrefix(r.URL.Path, "/solr/")

	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{
		Method: r.Method,
		Path:   path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	h, ok := f.routes[path]
	f.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"responseHeader": map[string]any{"status": 404},
			"error":          map[string]any{"msg": "no handler for " + path, "code": 404},
		})
		return
	}
	h(w, r)
}

func (f *fakeSolr) Calls() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeSolr) CallsTo(path string) []recordedCall {
	var out []recordedCall
	for _, c := range f.Calls() {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func okHeader() map[string]any {
	return map[string]any{"status": 0, "QTime": 1}
}

func respondOK(extra map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{"responseHeader": okHeader()}
		for k, v := range extra {
			body[k] = v
		}
		writeJSON(w, http.StatusOK, body)
	}
}

func respondStatus(status int, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, map[string]any{
			"responseHeader": map[string]any{"status": status},
			"error":          map[string]any{"msg": msg, "code": status},
		})
	}
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewRouter(config.Default())
}

// doRequest 发送请求；baseURL 为空时不携带 x-solr-url。
func doRequest(t *testing.T, r http.Handler, method, target, baseURL string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			payload, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(payload)
		}
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if baseURL != "" {
		req.Header.Set(solr.HeaderURL, baseURL)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}
