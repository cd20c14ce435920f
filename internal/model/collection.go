package model

// CollectionStatus 是 collection 的索引统计信息。
type CollectionStatus struct {
	NumDocs      int64  `json:"numDocs"`
	MaxDoc       int64  `json:"maxDoc"`
	DeletedDocs  int64  `json:"deletedDocs"`
	IndexSize    string `json:"indexSize"`
	LastModified string `json:"lastModified"`
}

// CollectionSummary 由 schema 与状态两次上游调用按 collection 名称拼接而成。
type CollectionSummary struct {
	Name   string           `json:"name"`
	Schema SchemaDescriptor `json:"schema"`
	CollectionStatus
}

// SearchQuery 是浏览器传入的简化搜索请求。
type SearchQuery struct {
	Q           string
	FacetFields []string
	FilterQuery []string
	Sort        string
	Start       int
	// Rows 为 nil 表示未指定；显式的 0 只取计数与 facet。
	Rows *int
}

// SearchResult 是规范化后的搜索响应。
type SearchResult struct {
	Docs         []map[string]any               `json:"docs"`
	NumFound     int64                          `json:"numFound"`
	Start        int64                          `json:"start"`
	Facets       map[string]map[string]int64    `json:"facets"`
	Highlighting map[string]map[string][]string `json:"highlighting"`
}

// CoreStatus 是 admin/cores?action=STATUS 中单个 core 的状态。
type CoreStatus struct {
	Name        string    `json:"name"`
	InstanceDir string    `json:"instanceDir"`
	DataDir     string    `json:"dataDir"`
	Config      string    `json:"config"`
	Schema      string    `json:"schema"`
	StartTime   string    `json:"startTime"`
	Uptime      int64     `json:"uptime"`
	Index       CoreIndex `json:"index"`
}

type CoreIndex struct {
	NumDocs                 int64  `json:"numDocs"`
	MaxDoc                  int64  `json:"maxDoc"`
	DeletedDocs             int64  `json:"deletedDocs"`
	IndexHeapUsageBytes     int64  `json:"indexHeapUsageBytes"`
	Version                 int64  `json:"version"`
	SegmentCount            int64  `json:"segmentCount"`
	Current                 bool   `json:"current"`
	HasDeletions            bool   `json:"hasDeletions"`
	Directory               string `json:"directory"`
	SegmentsFile            string `json:"segmentsFile"`
	SegmentsFileSizeInBytes int64  `json:"segmentsFileSizeInBytes"`
	Size                    string `json:"size,omitempty"`
	LastModified            string `json:"lastModified,omitempty"`
}

// ReplicationStatus 是 {core}/replication?command=details 的规范化结果。
type ReplicationStatus struct {
	Replicable         bool     `json:"replicable"`
	ReplicationEnabled bool     `json:"replicationEnabled"`
	ReplicateAfter     []string `json:"replicateAfter"`
	MasterURL          string   `json:"masterUrl"`
	ConfFiles          []string `json:"confFiles"`
	Generation         int64    `json:"generation"`
	IndexVersion       int64    `json:"indexVersion"`
	Size               string   `json:"size"`
	IndexPath          string   `json:"indexPath"`
}

// OperationResult 是写操作的统一响应。Warning 非空表示主操作成功但后续步骤（例如 core reload）失败。
type OperationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Warning string `json:"warning,omitempty"`
}
