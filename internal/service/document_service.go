package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"solr-admin-go/internal/model"
	"solr-admin-go/pkg/log"
	"solr-admin-go/pkg/solr"
)

// DocumentService 定义了文档导入与更新操作。
type DocumentService interface {
	// Import 批量导入文档。commitWithin 为空时使用配置的默认值（毫秒）。
	Import(ctx context.Context, conn solr.Connection, collection string, docs []map[string]any, commitWithin string) (*model.OperationResult, error)
	// Update 以 commit=true 写入单个文档，返回后立即可见。
	Update(ctx context.Context, conn solr.Connection, collection, id string, doc map[string]any) (*model.OperationResult, error)
}

type documentService struct {
	client              SolrClient
	defaultCommitWithin int
}

// NewDocumentService 创建一个新的 DocumentService 实例。
func NewDocumentService(client SolrClient, defaultCommitWithin int) DocumentService {
	if defaultCommitWithin <= 0 {
		defaultCommitWithin = 1000
	}
	return &documentService{client: client, defaultCommitWithin: defaultCommitWithin}
}

func documentScope(fallback string) Scope {
	return Scope{Resource: "Collection", Fallback: fallback}
}

func (s *documentService) Import(ctx context.Context, conn solr.Connection, collection string, docs []map[string]any, commitWithin string) (*model.OperationResult, error) {
	if len(docs) == 0 {
		return nil, NewClientInputError("At least one document is required")
	}

	commitWithin = strings.TrimSpace(commitWithin)
	if commitWithin == "" {
		commitWithin = strconv.Itoa(s.defaultCommitWithin)
	} else if ms, err := strconv.Atoi(commitWithin); err != nil || ms < 0 {
		return nil, NewClientInputError("x-commit-within must be a non-negative number of milliseconds")
	}

	log.Infof("[DocumentService] collection: %s, 导入 %d 个文档, commitWithin: %sms", collection, len(docs), commitWithin)
	if _, err := s.client.Do(ctx, conn, solr.UpdateWithinRequest(collection, docs, commitWithin), nil); err != nil {
		log.Errorf("[DocumentService] 导入文档失败: %v", err)
		return nil, TranslateError(err, documentScope("Failed to import documents"))
	}
	return &model.OperationResult{
		Success: true,
		Message: fmt.Sprintf("Successfully imported %d document(s)", len(docs)),
	}, nil
}

func (s *documentService) Update(ctx context.Context, conn solr.Connection, collection, id string, doc map[string]any) (*model.OperationResult, error) {
	if len(doc) == 0 {
		return nil, NewClientInputError("Document body is required")
	}

	log.Infof("[DocumentService] collection: %s, 更新文档 %s", collection, id)
	if _, err := s.client.Do(ctx, conn, solr.UpdateRequest(collection, []map[string]any{doc}), nil); err != nil {
		log.Errorf("[DocumentService] 更新文档 %s 失败: %v", id, err)
		return nil, TranslateError(err, documentScope("Failed to update document"))
	}
	return &model.OperationResult{Success: true, Message: "Document updated successfully"}, nil
}
