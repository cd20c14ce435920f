// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"solr-admin-go/pkg/log"
	"solr-admin-go/pkg/solr"
)

// ConnectionKey 是 Connection 在 Gin 上下文中的键。
const ConnectionKey = "solrConnection"

// SolrConnection 创建一个 Gin 中间件，从请求头中提取目标 Solr 地址与可选的 Basic 认证凭据。
// 缺少地址时直接中止请求，不会发出任何上游调用。
func SolrConnection() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := solr.NewConnection(
			c.GetHeader(solr.HeaderURL),
			c.GetHeader(solr.HeaderUsername),
			c.GetHeader(solr.HeaderPassword),
		)
		if err != nil {
			log.Warnf("[SolrConnection] 拒绝请求 %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		// 只提供了用户名或密码之一时按未认证处理，这里只记录下来
		if (conn.Username == "") != (conn.Password == "") {
			log.Warnf("[SolrConnection] 凭据不完整，将以未认证方式访问 %s", conn.BaseURL)
		}

		c.Set(ConnectionKey, conn)
		c.Next()
	}
}

// GetConnection 取出 SolrConnection 中间件存入的 Connection。
func GetConnection(c *gin.Context) (solr.Connection, bool) {
	v, exists := c.Get(ConnectionKey)
	if !exists {
		return solr.Connection{}, false
	}
	conn, ok := v.(solr.Connection)
	return conn, ok
}
