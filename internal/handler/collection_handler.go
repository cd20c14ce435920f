package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"solr-admin-go/internal/model"
	"solr-admin-go/internal/service"
	"solr-admin-go/pkg/log"
)

// CollectionHandler 负责 collection 的管理与查询接口。
type CollectionHandler struct {
	collectionService service.CollectionService
	searchService     service.SearchService
}

// NewCollectionHandler 创建一个新的 CollectionHandler 实例。
func NewCollectionHandler(collectionService service.CollectionService, searchService service.SearchService) *CollectionHandler {
	return &CollectionHandler{
		collectionService: collectionService,
		searchService:     searchService,
	}
}

type createCollectionRequest struct {
	Name string `json:"name"`
}

// List GET /solr/collections
func (h *CollectionHandler) List(c *gin.Context) {
	conn, ok := connection(c)
	if !ok {
		return
	}
	collections, err := h.collectionService.List(upstreamContext(c), conn)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": collections})
}

// Create POST /solr/collections
func (h *CollectionHandler) Create(c *gin.Context) {
	conn, ok := connection(c)
	if !ok {
		return
	}
	var req createCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("[CollectionHandler] 无法解析创建请求: %v", err)
		respondBadRequest(c, "Invalid request body")
		return
	}
	result, err := h.collectionService.Create(upstreamContext(c), conn, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get GET /solr/collections/:name，返回 schema 与索引状态的汇总。
func (h *CollectionHandler) Get(c *gin.Context) {
	conn, ok := connection(c)
	if !ok {
		return
	}
	summary, err := h.collectionService.Summary(upstreamContext(c), conn, c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Delete DELETE /solr/collections/:name
func (h *CollectionHandler) Delete(c *gin.Context) {
	conn, ok := connection(c)
	if !ok {
		return
	}
	result, err := h.collectionService.Delete(upstreamContext(c), conn, c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Status GET /solr/collections/:name/status
func (h *CollectionHandler) Status(c *gin.Context) {
	conn, ok := connection(c)
	if !ok {
		return
	}
	status, err := h.collectionService.Status(upstreamContext(c), conn, c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Search GET /solr/collections/:name/data/search
// facet.field 与 fq 可以重复出现，也接受 facet.field[] / fq[] 写法。
func (h *CollectionHandler) Search(c *gin.Context) {
	conn, ok := connection(c)
	if !ok {
		return
	}
	query := model.SearchQuery{
		Q:           c.Query("q"),
		FacetFields: append(c.QueryArray("facet.field"), c.QueryArray("facet.field[]")...),
		FilterQuery: append(c.QueryArray("fq"), c.QueryArray("fq[]")...),
		Sort:        c.Query("sort"),
	}
	if start, err := strconv.Atoi(c.DefaultQuery("start", "0")); err == nil {
		query.Start = start
	}
	if rows, err := strconv.Atoi(c.Query("rows")); err == nil {
		query.Rows = &rows
	}

	result, err := h.searchService.Search(upstreamContext(c), conn, c.Param("name"), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
