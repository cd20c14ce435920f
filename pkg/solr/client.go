package solr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"solr-admin-go/internal/config"
	"solr-admin-go/pkg/log"
)

// ErrInvalidResponse 表示 Solr 返回了 2xx，但响应体无法解析。
var ErrInvalidResponse = errors.New("invalid response from Solr")

// Request 描述一次出站调用。Path 相对于 Connection.BaseURL，且已经转义。
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body 非 nil 时按 JSON 编码发送。
	Body any
	// Probe 为 true 的读取/列表/状态类请求使用较短的超时。
	Probe bool
}

// ResponseHeader 是 Solr 响应中的 responseHeader。
type ResponseHeader struct {
	Status int `json:"status"`
	QTime  int `json:"QTime"`
}

// UpstreamError 描述 Solr 返回的失败，或阻止拿到响应的传输层错误。
type UpstreamError struct {
	// StatusCode 为 0 表示没有 HTTP 错误状态（传输失败，或 2xx 但 responseHeader.status 非 0）。
	StatusCode int
	Message    string
	Code       int
	Err        error

	scheme string
	port   string
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("solr request failed: %v", e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("solr returned HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("solr reported failure: %s", e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NewTransportError 包装拿到 HTTP 响应之前发生的错误，scheme 与 port 来自目标地址。
func NewTransportError(err error, scheme, port string) *UpstreamError {
	return &UpstreamError{Err: err, scheme: scheme, port: port}
}

// Transport 报告失败是否发生在拿到 HTTP 响应之前。
func (e *UpstreamError) Transport() bool {
	return e.Err != nil && e.StatusCode == 0
}

// Scheme 与 Port 用于给连接失败生成协议相关的提示。
func (e *UpstreamError) Scheme() string { return e.scheme }
func (e *UpstreamError) Port() string   { return e.port }

type errorBody struct {
	Msg           string   `json:"msg"`
	Code          int      `json:"code"`
	ErrorMessages []string `json:"errorMessages"`
	Details       []struct {
		ErrorMessages []string `json:"errorMessages"`
	} `json:"details"`
}

type envelope struct {
	ResponseHeader *ResponseHeader `json:"responseHeader"`
	Error          *errorBody      `json:"error"`
}

// message 合并 error.msg 与 schema API 的逐条 errorMessages，后者才包含 "already exists" 之类的细节。
func (e *envelope) message() string {
	if e.Error == nil {
		return ""
	}
	parts := []string{}
	if msg := strings.TrimSpace(e.Error.Msg); msg != "" {
		parts = append(parts, msg)
	}
	var details []string
	for _, m := range e.Error.ErrorMessages {
		details = append(details, strings.TrimSpace(m))
	}
	for _, d := range e.Error.Details {
		for _, m := range d.ErrorMessages {
			details = append(details, strings.TrimSpace(m))
		}
	}
	if len(details) > 0 {
		parts = append(parts, strings.Join(details, "; "))
	}
	return strings.Join(parts, ": ")
}

func (e *envelope) code() int {
	if e.Error == nil {
		return 0
	}
	return e.Error.Code
}

// Client 是无状态的 Solr HTTP 客户端：不缓存连接信息，也不复用连接。
type Client struct {
	httpClient     *http.Client
	probeTimeout   time.Duration
	writeTimeout   time.Duration
	downgradeHTTPS bool
}

// NewClient 根据配置创建客户端。
func NewClient(cfg config.SolrConfig) *Client {
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:             http.ProxyFromEnvironment,
				DisableKeepAlives: true,
			},
		},
		probeTimeout:   cfg.ProbeTimeout,
		writeTimeout:   cfg.WriteTimeout,
		downgradeHTTPS: cfg.DowngradeHTTPS,
	}
}

// Do 发送请求并把响应体解码到 out（out 可以为 nil）。
// HTTP 状态 >= 400 或 responseHeader.status 非 0 都返回 *UpstreamError。
func (c *Client) Do(ctx context.Context, conn Connection, req *Request, out any) (*ResponseHeader, error) {
	if c.downgradeHTTPS {
		conn = conn.DowngradeHTTPS()
	}

	timeout := c.writeTimeout
	if req.Probe {
		timeout = c.probeTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	target := conn.Endpoint(req.Path)
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal solr request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create solr request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if auth := conn.AuthorizationHeader(); auth != "" {
		httpReq.Header.Set("Authorization", auth)
	}

	scheme, port := conn.schemeAndPort()
	log.Debugf("[SolrClient] %s %s", req.Method, req.Path)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, NewTransportError(err, scheme, port)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Err: err, scheme: scheme, port: port}
	}

	// 非 JSON 响应体（例如 Jetty 的 HTML 错误页）直接忽略
	var env envelope
	_ = json.Unmarshal(data, &env)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: env.message(), Code: env.code(), scheme: scheme, port: port}
	}
	if env.ResponseHeader != nil && env.ResponseHeader.Status != 0 {
		return env.ResponseHeader, &UpstreamError{Message: env.message(), Code: env.code(), scheme: scheme, port: port}
	}

	if out != nil {
		if err := decodeNumbers(data, out); err != nil {
			return env.ResponseHeader, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
	}
	return env.ResponseHeader, nil
}

// decodeNumbers 保留数字的原始文本，long 字段超过 2^53 时不会被 float64 截断。
func decodeNumbers(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}
