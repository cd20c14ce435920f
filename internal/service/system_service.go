package service

import (
	"context"
	"net/http"

	"solr-admin-go/pkg/log"
	"solr-admin-go/pkg/solr"
)

// SystemService 提供连通性探测。
type SystemService interface {
	// Probe 读取 admin/info/system，并确认目标确实是 Solr。
	Probe(ctx context.Context, conn solr.Connection) (solr.SystemInfo, error)
}

type systemService struct {
	client SolrClient
}

// NewSystemService 创建一个新的 SystemService 实例。
func NewSystemService(client SolrClient) SystemService {
	return &systemService{client: client}
}

func (s *systemService) Probe(ctx context.Context, conn solr.Connection) (solr.SystemInfo, error) {
	log.Infof("[SystemService] 探测 Solr: %s", conn.BaseURL)
	var info solr.SystemInfo
	if _, err := s.client.Do(ctx, conn, solr.SystemInfoRequest(), &info); err != nil {
		log.Warnf("[SystemService] 探测失败: %v", err)
		return nil, TranslateError(err, Scope{
			Resource: "Solr endpoint",
			NotFound: "The Solr endpoint could not be found. Check the URL path.",
			Fallback: "Failed to connect to Solr",
		})
	}
	if !info.IsSolr() {
		log.Warnf("[SystemService] %s 的响应缺少 lucene/solr_home", conn.BaseURL)
		return nil, &APIError{
			Status:   http.StatusBadGateway,
			Category: CategoryInvalidResponse,
			Message:  "Invalid Solr response - are you sure this is a Solr server?",
		}
	}
	return info, nil
}
