package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"solr-admin-go/internal/service"
)

// SystemHandler 提供连通性探测与控制台自身的健康检查。
type SystemHandler struct {
	systemService service.SystemService
}

// NewSystemHandler 创建一个新的 SystemHandler 实例。
func NewSystemHandler(systemService service.SystemService) *SystemHandler {
	return &SystemHandler{systemService: systemService}
}

// Test GET /solr/test，原样返回 admin/info/system 的响应。
func (h *SystemHandler) Test(c *gin.Context) {
	conn, ok := connection(c)
	if !ok {
		return
	}
	info, err := h.systemService.Probe(upstreamContext(c), conn)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Health GET /healthz
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
