package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"solr-admin-go/pkg/solr"
)

var corsAllowHeaders = strings.Join([]string{
	"Origin", "Content-Type", "Accept", RequestIDHeader,
	solr.HeaderURL, solr.HeaderUsername, solr.HeaderPassword, "X-Commit-Within",
}, ",")

// CORS 允许浏览器端控制台跨域携带 x-solr-* 请求头。预检请求直接返回 204。
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
		c.Header("Access-Control-Expose-Headers", RequestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
