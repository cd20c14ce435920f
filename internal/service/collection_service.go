package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"solr-admin-go/internal/model"
	"solr-admin-go/pkg/log"
	"solr-admin-go/pkg/solr"
)

// CollectionService 定义了 collection 的管理与查询操作。
type CollectionService interface {
	List(ctx context.Context, conn solr.Connection) ([]string, error)
	Create(ctx context.Context, conn solr.Connection, name string) (*model.OperationResult, error)
	Delete(ctx context.Context, conn solr.Connection, name string) (*model.OperationResult, error)
	Status(ctx context.Context, conn solr.Connection, name string) (*model.CollectionStatus, error)
	Summary(ctx context.Context, conn solr.Connection, name string) (*model.CollectionSummary, error)
}

type collectionService struct {
	client SolrClient
}

// NewCollectionService 创建一个新的 CollectionService 实例。
func NewCollectionService(client SolrClient) CollectionService {
	return &collectionService{client: client}
}

func (s *collectionService) List(ctx context.Context, conn solr.Connection) ([]string, error) {
	var resp solr.CollectionsListResponse
	if _, err := s.client.Do(ctx, conn, solr.ListCollectionsRequest(), &resp); err != nil {
		log.Errorf("[CollectionService] 获取 collection 列表失败: %v", err)
		return nil, TranslateError(err, Scope{Resource: "Collection", Fallback: "Failed to list collections"})
	}
	if resp.Collections == nil {
		return []string{}, nil
	}
	return resp.Collections, nil
}

// Create 先用 LIST 检查重名（区分大小写的精确匹配），重名时不会发出 CREATE。
func (s *collectionService) Create(ctx context.Context, conn solr.Connection, name string) (*model.OperationResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewClientInputError("Collection name is required")
	}

	existing, err := s.List(ctx, conn)
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		if c == name {
			log.Warnf("[CollectionService] collection '%s' 已存在，跳过创建", name)
			return nil, &APIError{
				Status:   http.StatusBadRequest,
				Category: CategoryConflict,
				Message:  fmt.Sprintf("Collection '%s' already exists", name),
			}
		}
	}

	scope := Scope{
		Resource:      "Collection",
		AlreadyExists: fmt.Sprintf("Collection '%s' already exists", name),
		Fallback:      "Failed to create collection",
	}
	if _, err := s.client.Do(ctx, conn, solr.CreateCollectionRequest(name), nil); err != nil {
		log.Errorf("[CollectionService] 创建 collection '%s' 失败: %v", name, err)
		return nil, TranslateError(err, scope)
	}
	log.Infof("[CollectionService] collection '%s' 创建成功", name)
	return &model.OperationResult{Success: true, Message: fmt.Sprintf("Collection '%s' created successfully", name)}, nil
}

func (s *collectionService) Delete(ctx context.Context, conn solr.Connection, name string) (*model.OperationResult, error) {
	scope := Scope{
		Resource: "Collection",
		NotFound: fmt.Sprintf("Collection '%s' not found", name),
		InUse:    "Collection is currently in use. Please try again later.",
		Fallback: "Failed to delete collection",
	}
	if _, err := s.client.Do(ctx, conn, solr.DeleteCollectionRequest(name), nil); err != nil {
		log.Errorf("[CollectionService] 删除 collection '%s' 失败: %v", name, err)
		return nil, TranslateError(err, scope)
	}
	log.Infof("[CollectionService] collection '%s' 已删除", name)
	return &model.OperationResult{Success: true, Message: "Collection deleted successfully"}, nil
}

func (s *collectionService) Status(ctx context.Context, conn solr.Connection, name string) (*model.CollectionStatus, error) {
	var resp solr.LukeResponse
	if _, err := s.client.Do(ctx, conn, solr.CollectionStatusRequest(name), &resp); err != nil {
		log.Errorf("[CollectionService] 获取 collection '%s' 状态失败: %v", name, err)
		return nil, TranslateError(err, Scope{Resource: "Collection", Fallback: "Failed to fetch collection status"})
	}
	status := solr.NormalizeStatus(resp)
	return &status, nil
}

// Summary 并发获取 schema 与索引状态，任一失败则整体失败，不会返回半成品。
func (s *collectionService) Summary(ctx context.Context, conn solr.Connection, name string) (*model.CollectionSummary, error) {
	var (
		schemaResp solr.SchemaResponse
		lukeResp   solr.LukeResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.client.Do(gctx, conn, solr.SchemaRequest(name), &schemaResp)
		return err
	})
	g.Go(func() error {
		_, err := s.client.Do(gctx, conn, solr.CollectionStatusRequest(name), &lukeResp)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Errorf("[CollectionService] 汇总 collection '%s' 信息失败: %v", name, err)
		return nil, TranslateError(err, Scope{Resource: "Collection", Fallback: "Failed to load collection"})
	}

	return &model.CollectionSummary{
		Name:             name,
		Schema:           solr.NormalizeSchema(name, schemaResp),
		CollectionStatus: solr.NormalizeStatus(lukeResp),
	}, nil
}
