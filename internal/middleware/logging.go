// Package middleware 存放 Gin 框架的中间件。
package middleware

import (
	"bytes"
	"io"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"solr-admin-go/pkg/log"
	"solr-admin-go/pkg/solr"
)

const (
	// RequestIDHeader 允许调用方传入自己的请求 ID。
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = "requestID"

	redacted = "***"
)

// 请求体中的 AI 密钥在记录前被替换掉
var apiKeyPattern = regexp.MustCompile(`("apiKey"\s*:\s*)"(?:[^"\\]|\\.)*"`)

// bodyLogWriter 用于捕获响应体
type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write 实现了 io.Writer 接口，将响应写入 gin.ResponseWriter 和一个内部的 buffer
func (w bodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// RedactBody 隐藏请求体中的 apiKey 值。
func RedactBody(body []byte) string {
	return apiKeyPattern.ReplaceAllString(string(body), `${1}"`+redacted+`"`)
}

func redactSecret(v string) string {
	if v == "" {
		return ""
	}
	return redacted
}

// RequestLogger 是一个 Gin 中间件，用于记录详细的请求和响应日志。
// x-solr-password 与 AI 密钥永远不会出现在日志中。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		// 读取并重新缓存请求体
		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))

		blw := &bodyLogWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		log.Infow("HTTP Request Log",
			"requestID", requestID,
			"statusCode", c.Writer.Status(),
			"latency", time.Since(startTime).String(),
			"clientIP", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"solrUrl", c.GetHeader(solr.HeaderURL),
			"solrUsername", c.GetHeader(solr.HeaderUsername),
			"solrPassword", redactSecret(c.GetHeader(solr.HeaderPassword)),
			"requestBody", RedactBody(requestBody),
			"responseBody", blw.body.String(),
		)
	}
}
