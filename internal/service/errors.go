// Package service 提供了 Solr 管理控制台的业务逻辑：构造上游请求、规范化响应并翻译错误。
package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"

	"solr-admin-go/pkg/solr"
)

// Category 是对外暴露的错误分类。
type Category string

const (
	CategoryClientInput     Category = "ClientInputError"
	CategoryAuthentication  Category = "AuthenticationError"
	CategoryNotFound        Category = "NotFoundError"
	CategoryConflict        Category = "ConflictError"
	CategoryValidation      Category = "ValidationError"
	CategoryUnavailable     Category = "UnavailableError"
	CategoryInvalidResponse Category = "InvalidResponseError"
	CategoryUnknownUpstream Category = "UnknownUpstreamError"
)

const (
	msgAuthenticationFailed = "Authentication failed"
	msgUnexpected           = "An unexpected error occurred"
)

// APIError 是已经翻译好的错误，Status 与 Message 可直接写回浏览器。
type APIError struct {
	Status   int
	Category Category
	Message  string
	Err      error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%d): %s: %v", e.Category, e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%s (%d): %s", e.Category, e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

// NewClientInputError 用于请求本身不合法、不需要任何上游调用就能判定的情况。
func NewClientInputError(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Category: CategoryClientInput, Message: message}
}

// Scope 为一次翻译提供与操作相关的文案。空字段使用由 Resource 推导的默认文案。
type Scope struct {
	Resource      string
	NotFound      string
	InUse         string
	AlreadyExists string
	Fallback      string
	// DetailNotFound 表示上游文本中的 "not found" 指的是请求里引用的对象（字段、字段类型），
	// 此时返回 400 并带上上游的原始说明；HTTP 404 仍然表示资源本身不存在。
	DetailNotFound bool
}

func (s Scope) resource() string {
	if s.Resource == "" {
		return "Resource"
	}
	return s.Resource
}

func (s Scope) notFound() string {
	if s.NotFound != "" {
		return s.NotFound
	}
	return s.resource() + " not found"
}

func (s Scope) inUse() string {
	if s.InUse != "" {
		return s.InUse
	}
	return s.resource() + " is currently in use. Please try again later."
}

func (s Scope) alreadyExists() string {
	if s.AlreadyExists != "" {
		return s.AlreadyExists
	}
	return s.resource() + " already exists"
}

// substringRule 只在按状态码分类失败之后才参与匹配，匹配不区分大小写，按表中顺序取第一条。
type substringRule struct {
	substring string
	category  Category
	status    int
	message   func(Scope) string
}

func fixed(msg string) func(Scope) string {
	return func(Scope) string { return msg }
}

var substringRules = []substringRule{
	{"not found", CategoryNotFound, http.StatusNotFound, Scope.notFound},
	{"in use", CategoryConflict, http.StatusConflict, Scope.inUse},
	{"missing required field", CategoryValidation, http.StatusBadRequest, fixed("Missing required field in document")},
	{"unknown field", CategoryValidation, http.StatusBadRequest, fixed("Document contains unknown fields")},
	{"already exists", CategoryConflict, http.StatusBadRequest, Scope.alreadyExists},
}

// TranslateError 把任意错误归约成 *APIError。已经是 *APIError 的错误原样返回。
func TranslateError(err error, scope Scope) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, solr.ErrMissingURL), errors.Is(err, solr.ErrInvalidURL):
		return &APIError{Status: http.StatusBadRequest, Category: CategoryClientInput, Message: err.Error(), Err: err}
	case errors.Is(err, solr.ErrInvalidResponse):
		return &APIError{Status: http.StatusBadGateway, Category: CategoryInvalidResponse, Message: "Invalid response from Solr", Err: err}
	}

	var upstream *solr.UpstreamError
	if !errors.As(err, &upstream) {
		return &APIError{Status: http.StatusInternalServerError, Category: CategoryUnknownUpstream, Message: fallbackMessage("", scope), Err: err}
	}

	// 1. 传输层失败
	if upstream.Transport() {
		return &APIError{Status: http.StatusServiceUnavailable, Category: CategoryUnavailable, Message: transportMessage(upstream), Err: err}
	}

	// 2. / 3. 明确的状态码
	switch upstream.StatusCode {
	case http.StatusUnauthorized:
		return &APIError{Status: http.StatusUnauthorized, Category: CategoryAuthentication, Message: msgAuthenticationFailed, Err: err}
	case http.StatusNotFound:
		return &APIError{Status: http.StatusNotFound, Category: CategoryNotFound, Message: scope.notFound(), Err: err}
	}

	// 4. 文本匹配
	lower := strings.ToLower(upstream.Message)
	if scope.DetailNotFound && strings.Contains(lower, "not found") {
		return &APIError{Status: http.StatusBadRequest, Category: CategoryValidation, Message: upstream.Message, Err: err}
	}
	for _, rule := range substringRules {
		if strings.Contains(lower, rule.substring) {
			return &APIError{Status: rule.status, Category: rule.category, Message: rule.message(scope), Err: err}
		}
	}

	// 5. 兜底
	return &APIError{Status: fallbackStatus(upstream), Category: CategoryUnknownUpstream, Message: fallbackMessage(upstream.Message, scope), Err: err}
}

func fallbackStatus(e *solr.UpstreamError) int {
	if e.StatusCode >= http.StatusBadRequest {
		return e.StatusCode
	}
	// 200 响应但 responseHeader.status 非 0 时，error.code 通常就是 Solr 想要的 HTTP 状态
	if e.Code >= http.StatusBadRequest && e.Code < 600 {
		return e.Code
	}
	return http.StatusInternalServerError
}

func fallbackMessage(upstream string, scope Scope) string {
	if upstream != "" {
		return upstream
	}
	if scope.Fallback != "" {
		return scope.Fallback
	}
	return msgUnexpected
}

// transportMessage 区分拒绝连接、超时与其他拨号失败，并附上与协议/端口相关的提示。
func transportMessage(e *solr.UpstreamError) string {
	var msg string
	var netErr net.Error
	switch {
	case errors.Is(e.Err, syscall.ECONNREFUSED):
		msg = "Connection refused. Is Solr running?"
	case errors.Is(e.Err, context.DeadlineExceeded), errors.As(e.Err, &netErr) && netErr.Timeout():
		msg = "Timed out waiting for Solr to respond."
	default:
		msg = "Could not connect to Solr server."
	}

	switch {
	case e.Scheme() == "https":
		msg += " If Solr does not terminate TLS itself, try an http:// URL."
	case e.Scheme() == "http" && e.Port() == "":
		msg += " Check the port number (Solr listens on 8983 by default)."
	}
	return msg
}
