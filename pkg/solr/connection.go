// Package solr 提供了调用 Solr 管理/查询 HTTP API 的无状态客户端。
package solr

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
)

// 浏览器用这些请求头携带目标 Solr 地址与可选的 Basic 认证凭据。
const (
	HeaderURL      = "X-Solr-Url"
	HeaderUsername = "X-Solr-Username"
	HeaderPassword = "X-Solr-Password"
)

var (
	// ErrMissingURL 表示请求没有携带 Solr 基础地址。
	ErrMissingURL = errors.New("Solr base URL is required")
	// ErrInvalidURL 表示基础地址不是 http(s)://host[:port][/path] 形式。
	ErrInvalidURL = errors.New("Solr base URL must be an absolute http(s) URL")
)

// Connection 是每个入站请求构造一次的连接上下文，从不缓存或持久化。
type Connection struct {
	BaseURL  string
	Username string
	Password string
}

// NewConnection 校验并构造 Connection。baseURL 末尾的 "/" 会被去掉。
func NewConnection(baseURL, username, password string) (Connection, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return Connection{}, ErrMissingURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return Connection{}, ErrInvalidURL
	}
	return Connection{BaseURL: baseURL, Username: username, Password: password}, nil
}

// HasCredentials 仅当用户名和密码都非空时为 true。
// 只提供其中一个时按未认证处理，不报错。
func (c Connection) HasCredentials() bool {
	return c.Username != "" && c.Password != ""
}

// AuthorizationHeader 返回 Basic 认证头的值；没有完整凭据时返回空串。
func (c Connection) AuthorizationHeader() string {
	if !c.HasCredentials() {
		return ""
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.Username+":"+c.Password))
}

// DowngradeHTTPS 把 https 地址改写为 http。
func (c Connection) DowngradeHTTPS() Connection {
	if strings.HasPrefix(strings.ToLower(c.BaseURL), "https:") {
		c.BaseURL = "http:" + c.BaseURL[len("https:"):]
	}
	return c
}

// Endpoint 拼接基础地址与相对路径。
func (c Connection) Endpoint(path string) string {
	return c.BaseURL + "/" + strings.TrimLeft(path, "/")
}

// schemeAndPort 返回基础地址的协议和显式端口，解析失败时返回空串。
func (c Connection) schemeAndPort() (string, string) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", ""
	}
	return strings.ToLower(u.Scheme), u.Port()
}
