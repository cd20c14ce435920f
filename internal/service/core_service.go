package service

import (
	"context"
	"fmt"
	"strings"

	"solr-admin-go/internal/model"
	"solr-admin-go/pkg/log"
	"solr-admin-go/pkg/solr"
)

// CoreService 定义了 core 管理与主从复制操作。
type CoreService interface {
	Status(ctx context.Context, conn solr.Connection) (map[string]model.CoreStatus, error)
	Create(ctx context.Context, conn solr.Connection, name string) (*model.OperationResult, error)
	Reload(ctx context.Context, conn solr.Connection, core string) (*model.OperationResult, error)
	EnableReplication(ctx context.Context, conn solr.Connection, core string, master bool) (*model.OperationResult, error)
	Replicate(ctx context.Context, conn solr.Connection, core string) (*model.OperationResult, error)
	ReplicationDetails(ctx context.Context, conn solr.Connection, core string) (*model.ReplicationStatus, error)
}

type coreService struct {
	client SolrClient
}

// NewCoreService 创建一个新的 CoreService 实例。
func NewCoreService(client SolrClient) CoreService {
	return &coreService{client: client}
}

func coreScope(core, fallback string) Scope {
	s := Scope{Resource: "Core", Fallback: fallback}
	if core != "" {
		s.NotFound = fmt.Sprintf("Core '%s' not found", core)
		s.AlreadyExists = fmt.Sprintf("Core '%s' already exists", core)
	}
	return s
}

func (s *coreService) Status(ctx context.Context, conn solr.Connection) (map[string]model.CoreStatus, error) {
	var resp solr.CoreStatusResponse
	if _, err := s.client.Do(ctx, conn, solr.CoreStatusRequest(), &resp); err != nil {
		log.Errorf("[CoreService] 获取 core 状态失败: %v", err)
		return nil, TranslateError(err, coreScope("", "Failed to fetch core status"))
	}
	return solr.NormalizeCoreStatus(resp), nil
}

func (s *coreService) Create(ctx context.Context, conn solr.Connection, name string) (*model.OperationResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewClientInputError("Core name is required")
	}
	if _, err := s.client.Do(ctx, conn, solr.CreateCoreRequest(name), nil); err != nil {
		log.Errorf("[CoreService] 创建 core '%s' 失败: %v", name, err)
		return nil, TranslateError(err, coreScope(name, "Failed to create core"))
	}
	log.Infof("[CoreService] core '%s' 创建成功", name)
	return &model.OperationResult{Success: true, Message: fmt.Sprintf("Core %q created successfully", name)}, nil
}

func (s *coreService) Reload(ctx context.Context, conn solr.Connection, core string) (*model.OperationResult, error) {
	if _, err := s.client.Do(ctx, conn, solr.ReloadCoreRequest(core), nil); err != nil {
		log.Errorf("[CoreService] 重载 core '%s' 失败: %v", core, err)
		return nil, TranslateError(err, coreScope(core, "Failed to reload core"))
	}
	return &model.OperationResult{Success: true, Message: fmt.Sprintf("Core %q reloaded successfully", core)}, nil
}

// EnableReplication 通过 Config API 设置复制处理器后重载 core。
// 与字段修改不同，这里的重载失败会作为错误返回，因为新处理器只有在重载后才存在。
func (s *coreService) EnableReplication(ctx context.Context, conn solr.Connection, core string, master bool) (*model.OperationResult, error) {
	role := "slave"
	if master {
		role = "master"
	}
	log.Infof("[CoreService] core: %s, 启用复制, 角色: %s", core, role)

	scope := coreScope(core, "Failed to enable replication")
	if _, err := s.client.Do(ctx, conn, solr.ReplicationConfigRequest(conn, core, master), nil); err != nil {
		log.Errorf("[CoreService] 设置复制处理器失败: %v", err)
		return nil, TranslateError(err, scope)
	}
	if _, err := s.client.Do(ctx, conn, solr.ReloadCoreRequest(core), nil); err != nil {
		log.Errorf("[CoreService] 启用复制后重载 core 失败: %v", err)
		return nil, TranslateError(err, scope)
	}
	return &model.OperationResult{Success: true, Message: "Replication enabled as " + role}, nil
}

func (s *coreService) Replicate(ctx context.Context, conn solr.Connection, core string) (*model.OperationResult, error) {
	if _, err := s.client.Do(ctx, conn, solr.FetchIndexRequest(core), nil); err != nil {
		log.Errorf("[CoreService] 触发 core '%s' 复制失败: %v", core, err)
		return nil, TranslateError(err, coreScope(core, "Failed to start replication"))
	}
	return &model.OperationResult{Success: true, Message: "Replication process started"}, nil
}

func (s *coreService) ReplicationDetails(ctx context.Context, conn solr.Connection, core string) (*model.ReplicationStatus, error) {
	var resp solr.ReplicationDetailsResponse
	if _, err := s.client.Do(ctx, conn, solr.ReplicationDetailsRequest(core), &resp); err != nil {
		log.Errorf("[CoreService] 获取 core '%s' 复制状态失败: %v", core, err)
		return nil, TranslateError(err, coreScope(core, "Failed to fetch replication details"))
	}
	status := solr.NormalizeReplication(resp)
	return &status, nil
}
