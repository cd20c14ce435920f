package service

import (
	"context"
	"fmt"

	"solr-admin-go/internal/model"
	"solr-admin-go/pkg/log"
	"solr-admin-go/pkg/solr"
)

// SolrClient 是服务层对 Solr 传输的全部依赖，*solr.Client 实现了它。
type SolrClient interface {
	Do(ctx context.Context, conn solr.Connection, req *solr.Request, out any) (*solr.ResponseHeader, error)
}

// reloadAfter 在 schema 变更成功后重载 core。重载失败只降级为 warning，变更本身已经生效。
func reloadAfter(ctx context.Context, client SolrClient, conn solr.Connection, core, verb string) *model.OperationResult {
	if _, err := client.Do(ctx, conn, solr.ReloadCoreRequest(core), nil); err != nil {
		log.Warnf("[SchemaService] core '%s' 重载失败: %v", core, err)
		return &model.OperationResult{
			Success: true,
			Warning: fmt.Sprintf("%s but core reload failed. Changes may not be visible until core is reloaded.", verb),
		}
	}
	return nil
}
