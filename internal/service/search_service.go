package service

import (
	"context"

	"solr-admin-go/internal/model"
	"solr-admin-go/pkg/log"
	"solr-admin-go/pkg/solr"
)

// SearchService 接口定义了 collection 上的即席查询。
type SearchService interface {
	Search(ctx context.Context, conn solr.Connection, collection string, query model.SearchQuery) (*model.SearchResult, error)
}

type searchService struct {
	client      SolrClient
	defaultRows int
}

// NewSearchService 创建一个新的 SearchService 实例。defaultRows 用于未指定 rows 的查询。
func NewSearchService(client SolrClient, defaultRows int) SearchService {
	if defaultRows <= 0 {
		defaultRows = 10
	}
	return &searchService{client: client, defaultRows: defaultRows}
}

func (s *searchService) Search(ctx context.Context, conn solr.Connection, collection string, query model.SearchQuery) (*model.SearchResult, error) {
	if query.Start < 0 {
		query.Start = 0
	}
	if query.Rows == nil || *query.Rows < 0 {
		query.Rows = model.Int(s.defaultRows)
	}
	log.Infof("[SearchService] collection: %s, q: '%s', facets: %v, fq: %v, start: %d, rows: %d",
		collection, query.Q, query.FacetFields, query.FilterQuery, query.Start, *query.Rows)

	var resp solr.SelectResponse
	if _, err := s.client.Do(ctx, conn, solr.SearchRequest(collection, query), &resp); err != nil {
		log.Errorf("[SearchService] 查询 collection '%s' 失败: %v", collection, err)
		return nil, TranslateError(err, Scope{Resource: "Collection", Fallback: "Failed to search collection"})
	}

	result, err := solr.NormalizeSearch(resp)
	if err != nil {
		log.Errorf("[SearchService] 无法解析查询结果: %v", err)
		return nil, TranslateError(err, Scope{Resource: "Collection"})
	}
	log.Infof("[SearchService] 查询成功, numFound: %d, 返回 %d 条", result.NumFound, len(result.Docs))
	return &result, nil
}
