package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"solr-admin-go/internal/service"
	"solr-admin-go/pkg/log"
)

// CoreHandler 负责 core 管理与复制接口。
type CoreHandler struct {
	coreService service.CoreService
}

// NewCoreHandler 创建一个新的 CoreHandler 实例。
func NewCoreHandler(coreService service.CoreService) *CoreHandler {
	return &CoreHandler{coreService: coreService}
}

type createCoreRequest struct {
	Name string `json:"name"`
}

type enableReplicationRequest struct {
	Master bool `json:"master"`
}

// Status GET /solr/cores
func (h *CoreHandler) Status(c *gin.Context) {
	conn, ok := connection(c)
	if !ok {
		return
	}
	status, err := h.coreService.Status(upstreamContext(c), conn)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// Create POST /solr/cores
func (h *CoreHandler) Create(c *gin.Context) {
	conn, ok := connection(c)
	if !ok {
		return
	}
	var req createCoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("[CoreHandler] 无法解析创建请求: %v", err)
		respondBadRequest(c, "Invalid request body")
		return
	}
	result, err := h.coreService.Create(upstreamContext(c), conn, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Reload POST /solr/cores/:core/reload
func (h *CoreHandler) Reload(c *gin.Context) {
	conn, ok := connection(c)
	if !ok {
		return
	}
	result, err := h.coreService.Reload(upstreamContext(c), conn, c.Param("core"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Replication GET /solr/cores/:core/replication
func (h *CoreHandler) Replication(c *gin.Context) {
	conn, ok := connection(c)
	if !ok {
		return
	}
	details, err := h.coreService.ReplicationDetails(upstreamContext(c), conn, c.Param("core"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// EnableReplication POST /solr/cores/:core/replication/enable，请求体 {"master": bool}。
func (h *CoreHandler) EnableReplication(c *gin.Context) {
	conn, ok := connection(c)
	if !ok {
		return
	}
	var req enableReplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("[CoreHandler] 无法解析复制配置: %v", err)
		respondBadRequest(c, "Invalid request body")
		return
	}
	result, err := h.coreService.EnableReplication(upstreamContext(c), conn, c.Param("core"), req.Master)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Replicate POST /solr/cores/:core/replication/replicate
func (h *CoreHandler) Replicate(c *gin.Context) {
	conn, ok := connection(c)
	if !ok {
		return
	}
	result, err := h.coreService.Replicate(upstreamContext(c), conn, c.Param("core"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
