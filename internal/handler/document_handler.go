package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"solr-admin-go/internal/service"
	"solr-admin-go/pkg/log"
)

// CommitWithinHeader 控制批量导入的最大可见延迟（毫秒）。
const CommitWithinHeader = "X-Commit-Within"

// DocumentHandler 负责文档导入与更新接口。
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler 创建一个新的 DocumentHandler 实例。
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// Import POST /solr/schema/:collection/data，请求体可以是单个文档或文档数组。
func (h *DocumentHandler) Import(c *gin.Context) {
	conn, ok := connection(c)
	if !ok {
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	docs, err := decodeDocuments(raw)
	if err != nil {
		log.Warnf("[DocumentHandler] 无法解析文档: %v", err)
		respondBadRequest(c, "Request body must be a JSON document or an array of documents")
		return
	}

	result, err := h.documentService.Import(upstreamContext(c), conn, c.Param("collection"), docs, c.GetHeader(CommitWithinHeader))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Update PUT /solr/schema/:collection/data/:id
func (h *DocumentHandler) Update(c *gin.Context) {
	conn, ok := connection(c)
	if !ok {
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}
	var doc map[string]any
	if err := decodeDocument(raw, &doc); err != nil {
		log.Warnf("[DocumentHandler] 无法解析文档: %v", err)
		respondBadRequest(c, "Request body must be a JSON document")
		return
	}

	result, err := h.documentService.Update(upstreamContext(c), conn, c.Param("collection"), c.Param("id"), doc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func decodeDocuments(raw []byte) ([]map[string]any, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var docs []map[string]any
		if err := decodeDocument(raw, &docs); err != nil {
			return nil, err
		}
		return docs, nil
	}
	var doc map[string]any
	if err := decodeDocument(raw, &doc); err != nil {
		return nil, err
	}
	return []map[string]any{doc}, nil
}

// decodeDocument 用 json.Number 保存数字，原样转发给 Solr。
func decodeDocument(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}
