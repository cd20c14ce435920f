// Package server 负责组装依赖并注册所有路由。
package server

import (
	"github.com/gin-gonic/gin"

	"solr-admin-go/internal/config"
	"solr-admin-go/internal/handler"
	"solr-admin-go/internal/middleware"
	"solr-admin-go/internal/service"
	"solr-admin-go/pkg/llm"
	"solr-admin-go/pkg/solr"
)

// NewRouter 创建路由引擎。所有 /solr 路由都要求 x-solr-url 请求头。
func NewRouter(cfg config.Config) *gin.Engine {
	// 1. 出站客户端
	solrClient := solr.NewClient(cfg.Solr)
	llmClient := llm.NewClient(cfg.AI)

	// 2. Service (依赖注入)
	collectionService := service.NewCollectionService(solrClient)
	searchService := service.NewSearchService(solrClient, cfg.Solr.DefaultRows)
	schemaService := service.NewSchemaService(solrClient)
	documentService := service.NewDocumentService(solrClient, cfg.Solr.DefaultCommitWithin)
	coreService := service.NewCoreService(solrClient)
	systemService := service.NewSystemService(solrClient)
	aiService := service.NewAIService(llmClient)

	// 3. Handler
	collectionHandler := handler.NewCollectionHandler(collectionService, searchService)
	schemaHandler := handler.NewSchemaHandler(schemaService)
	documentHandler := handler.NewDocumentHandler(documentService)
	coreHandler := handler.NewCoreHandler(coreService)
	systemHandler := handler.NewSystemHandler(systemService)
	aiHandler := handler.NewAIHandler(aiService)

	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery(), middleware.CORS())

	r.GET("/healthz", systemHandler.Health)

	solrGroup := r.Group("/solr")
	solrGroup.Use(middleware.SolrConnection())
	{
		solrGroup.GET("/test", systemHandler.Test)

		collections := solrGroup.Group("/collections")
		{
			collections.GET("", collectionHandler.List)
			collections.POST("", collectionHandler.Create)
			collections.GET("/:name", collectionHandler.Get)
			collections.DELETE("/:name", collectionHandler.Delete)
			collections.GET("/:name/status", collectionHandler.Status)
			collections.GET("/:name/data/search", collectionHandler.Search)
		}

		schema := solrGroup.Group("/schema/:collection")
		{
			schema.GET("", schemaHandler.Get)
			schema.PUT("", schemaHandler.Replace)
			schema.POST("/fields", schemaHandler.AddField)
			schema.PUT("/fields", schemaHandler.ReplaceField)
			schema.PUT("/fields/:field", schemaHandler.ReplaceField)
			schema.DELETE("/fields/:field", schemaHandler.DeleteField)
			schema.POST("/data", documentHandler.Import)
			schema.PUT("/data/:id", documentHandler.Update)
		}

		cores := solrGroup.Group("/cores")
		{
			cores.GET("", coreHandler.Status)
			cores.POST("", coreHandler.Create)
			cores.POST("/:core/reload", coreHandler.Reload)
			cores.GET("/:core/replication", coreHandler.Replication)
			cores.POST("/:core/replication/enable", coreHandler.EnableReplication)
			cores.POST("/:core/replication/replicate", coreHandler.Replicate)
		}
	}

	ai := r.Group("/ai")
	{
		ai.POST("/generate", aiHandler.Generate)
		ai.GET("/generate/stream", aiHandler.Stream)
	}

	return r
}
