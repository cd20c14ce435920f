package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"solr-admin-go/internal/model"
	"solr-admin-go/internal/service"
	"solr-admin-go/pkg/log"
)

// SchemaHandler 负责 schema 与字段的增删改查接口。
type SchemaHandler struct {
	schemaService service.SchemaService
}

// NewSchemaHandler 创建一个新的 SchemaHandler 实例。
func NewSchemaHandler(schemaService service.SchemaService) *SchemaHandler {
	return &SchemaHandler{schemaService: schemaService}
}

// replaceSchemaRequest 同时接受 {"schema": {...}} 与直接提交的 schema 对象。
type replaceSchemaRequest struct {
	Schema *model.SchemaDescriptor `json:"schema"`
	model.SchemaDescriptor
}

// Get GET /solr/schema/:collection
func (h *SchemaHandler) Get(c *gin.Context) {
	conn, ok := connection(c)
	if !ok {
		return
	}
	schema, err := h.schemaService.Get(upstreamContext(c), conn, c.Param("collection"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schema": schema})
}

// Replace PUT /solr/schema/:collection
func (h *SchemaHandler) Replace(c *gin.Context) {
	conn, ok := connection(c)
	if !ok {
		return
	}
	var req replaceSchemaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("[SchemaHandler] 无法解析 schema: %v", err)
		respondBadRequest(c, "Invalid schema body")
		return
	}
	desired := req.SchemaDescriptor
	if req.Schema != nil {
		desired = *req.Schema
	}

	result, err := h.schemaService.Replace(upstreamContext(c), conn, c.Param("collection"), desired)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AddField POST /solr/schema/:collection/fields
func (h *SchemaHandler) AddField(c *gin.Context) {
	conn, ok := connection(c)
	if !ok {
		return
	}
	field, ok := bindField(c)
	if !ok {
		return
	}
	result, err := h.schemaService.AddField(upstreamContext(c), conn, c.Param("collection"), field)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ReplaceField PUT /solr/schema/:collection/fields[/:field]，路径中的字段名优先于请求体。
func (h *SchemaHandler) ReplaceField(c *gin.Context) {
	conn, ok := connection(c)
	if !ok {
		return
	}
	field, ok := bindField(c)
	if !ok {
		return
	}
	if name := c.Param("field"); name != "" {
		field.Name = name
	}
	result, err := h.schemaService.ReplaceField(upstreamContext(c), conn, c.Param("collection"), field)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteField DELETE /solr/schema/:collection/fields/:field
func (h *SchemaHandler) DeleteField(c *gin.Context) {
	conn, ok := connection(c)
	if !ok {
		return
	}
	result, err := h.schemaService.DeleteField(upstreamContext(c), conn, c.Param("collection"), c.Param("field"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func bindField(c *gin.Context) (model.Field, bool) {
	var field model.Field
	if err := c.ShouldBindJSON(&field); err != nil {
		log.Warnf("[SchemaHandler] 无法解析字段定义: %v", err)
		respondBadRequest(c, "Invalid field definition")
		return model.Field{}, false
	}
	return field, true
}
