// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"solr-admin-go/internal/middleware"
	"solr-admin-go/internal/service"
	"solr-admin-go/pkg/solr"
)

// upstreamContext 返回不会随浏览器断开而取消的上下文：上游调用一旦发出就会执行完毕。
func upstreamContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

// connection 取出中间件构造的 Connection；路由未挂载中间件时按缺少地址处理。
func connection(c *gin.Context) (solr.Connection, bool) {
	conn, ok := middleware.GetConnection(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": solr.ErrMissingURL.Error()})
		return solr.Connection{}, false
	}
	return conn, true
}

// respondError 把任意错误写成 {"error": "..."}，不会泄露上游原始响应。
func respondError(c *gin.Context, err error) {
	apiErr := service.TranslateError(err, service.Scope{})
	c.JSON(apiErr.Status, gin.H{"error": apiErr.Message})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}
