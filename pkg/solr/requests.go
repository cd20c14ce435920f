package solr

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"solr-admin-go/internal/model"
)

const (
	collectionsAdminPath = "admin/collections"
	coresAdminPath       = "admin/cores"
	systemInfoPath       = "admin/info/system"
)

func jsonParams(kv ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	v.Set("wt", "json")
	return v
}

func segment(name string) string {
	return url.PathEscape(name)
}

// ListCollectionsRequest: GET admin/collections?action=LIST
func ListCollectionsRequest() *Request {
	return &Request{
		Method: http.MethodGet,
		Path:   collectionsAdminPath,
		Query:  jsonParams("action", "LIST"),
		Probe:  true,
	}
}

// CreateCollectionRequest 使用 _default 配置集创建单分片单副本 collection。
func CreateCollectionRequest(name string) *Request {
	return &Request{
		Method: http.MethodGet,
		Path:   collectionsAdminPath,
		Query: jsonParams(
			"action", "CREATE",
			"name", name,
			"collection.configName", "_default",
			"numShards", "1",
			"replicationFactor", "1",
			"maxShardsPerNode", "1",
		),
	}
}

func DeleteCollectionRequest(name string) *Request {
	return &Request{
		Method: http.MethodPost,
		Path:   collectionsAdminPath,
		Query:  jsonParams("action", "DELETE", "name", name),
	}
}

// CollectionStatusRequest 通过 Luke handler 读取索引统计。
func CollectionStatusRequest(name string) *Request {
	return &Request{
		Method: http.MethodGet,
		Path:   segment(name) + "/admin/luke",
		Query:  jsonParams("numTerms", "0"),
		Probe:  true,
	}
}

func SchemaRequest(collection string) *Request {
	return &Request{
		Method: http.MethodGet,
		Path:   segment(collection) + "/schema",
		Query:  jsonParams(),
		Probe:  true,
	}
}

func UniqueKeyRequest(collection string) *Request {
	return &Request{
		Method: http.MethodGet,
		Path:   segment(collection) + "/schema/uniquekey",
		Query:  jsonParams(),
		Probe:  true,
	}
}

// Schema API 命令名。
const (
	CommandAddField            = "add-field"
	CommandReplaceField        = "replace-field"
	CommandDeleteField         = "delete-field"
	CommandAddDynamicField     = "add-dynamic-field"
	CommandReplaceDynamicField = "replace-dynamic-field"
	CommandDeleteDynamicField  = "delete-dynamic-field"
	CommandAddCopyField        = "add-copy-field"
	CommandDeleteCopyField     = "delete-copy-field"
)

// SchemaCommand 是一条 Schema API 命令，例如 {"add-field": {...}}。
type SchemaCommand struct {
	Name    string
	Payload any
}

// SchemaCommands 按顺序编码成同一个 JSON 对象，允许重复的键。
// Solr 按出现顺序执行这些命令，因此不能用 map 表示。
type SchemaCommands []SchemaCommand

func (cmds SchemaCommands) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cmd := range cmds {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(cmd.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(cmd.Payload)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SchemaCommandRequest 发送单条 schema 命令。
func SchemaCommandRequest(collection, command string, payload any) *Request {
	return SchemaBulkRequest(collection, SchemaCommands{{Name: command, Payload: payload}})
}

// SchemaBulkRequest 在一次 POST 中提交多条命令。
func SchemaBulkRequest(collection string, commands SchemaCommands) *Request {
	return &Request{
		Method: http.MethodPost,
		Path:   segment(collection) + "/schema",
		Body:   commands,
	}
}

func ReloadCoreRequest(core string) *Request {
	return &Request{
		Method: http.MethodGet,
		Path:   coresAdminPath,
		Query:  jsonParams("action", "RELOAD", "core", core),
	}
}

// SearchRequest 构造 {collection}/select 查询。总是请求高亮；存在 facet 字段时开启 facet。
func SearchRequest(collection string, q model.SearchQuery) *Request {
	params := url.Values{}
	query := q.Q
	if query == "" {
		query = "*:*"
	}
	params.Set("q", query)
	params.Set("wt", "json")
	params.Set("start", strconv.Itoa(q.Start))
	if q.Rows != nil {
		params.Set("rows", strconv.Itoa(*q.Rows))
	}

	if len(q.FacetFields) > 0 {
		params.Set("facet", "true")
		for _, f := range q.FacetFields {
			params.Add("facet.field", f)
		}
		params.Set("facet.mincount", "1")
	}
	for _, fq := range q.FilterQuery {
		params.Add("fq", fq)
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}

	params.Set("hl", "true")
	params.Set("hl.fl", "*")
	params.Set("hl.simple.pre", "<em>")
	params.Set("hl.simple.post", "</em>")

	return &Request{
		Method: http.MethodGet,
		Path:   segment(collection) + "/select",
		Query:  params,
	}
}

// UpdateRequest 以 commit=true 提交文档，立即可见。
func UpdateRequest(collection string, docs []map[string]any) *Request {
	return &Request{
		Method: http.MethodPost,
		Path:   segment(collection) + "/update",
		Query:  jsonParams("commit", "true"),
		Body:   docs,
	}
}

// UpdateWithinRequest 以 commitWithin 提交文档，最多延迟 commitWithin 毫秒后可见。
func UpdateWithinRequest(collection string, docs []map[string]any, commitWithin string) *Request {
	return &Request{
		Method: http.MethodPost,
		Path:   segment(collection) + "/update",
		Query:  jsonParams("commitWithin", commitWithin),
		Body:   docs,
	}
}

func CoreStatusRequest() *Request {
	return &Request{
		Method: http.MethodGet,
		Path:   coresAdminPath,
		Query:  jsonParams("action", "STATUS"),
		Probe:  true,
	}
}

func CreateCoreRequest(name string) *Request {
	return &Request{
		Method: http.MethodGet,
		Path:   coresAdminPath,
		Query: jsonParams(
			"action", "CREATE",
			"name", name,
			"instanceDir", name,
			"config", "solrconfig.xml",
			"dataDir", "data",
		),
	}
}

// ReplicationConfigRequest 通过 Config API 把 core 设置为 master 或 slave。
// slave 的 masterUrl 由同一个基础地址和 core 名推导。
func ReplicationConfigRequest(conn Connection, core string, master bool) *Request {
	property := map[string]any{}
	if master {
		property["name"] = "replicator"
		property["value"] = map[string]any{
			"class":  "solr.MasterReplicationHandler",
			"config": map[string]any{"replicateAfter": []string{"commit", "optimize"}},
		}
	} else {
		property["name"] = "replicator.slave"
		property["value"] = map[string]any{
			"class":  "solr.SlaveReplicationHandler",
			"config": map[string]any{"masterUrl": conn.Endpoint(segment(core) + "/replication")},
		}
	}
	return &Request{
		Method: http.MethodPost,
		Path:   segment(core) + "/config",
		Body:   map[string]any{"set-property": property},
	}
}

func FetchIndexRequest(core string) *Request {
	return &Request{
		Method: http.MethodGet,
		Path:   segment(core) + "/replication",
		Query:  jsonParams("command", "fetchindex"),
	}
}

func ReplicationDetailsRequest(core string) *Request {
	return &Request{
		Method: http.MethodGet,
		Path:   segment(core) + "/replication",
		Query:  jsonParams("command", "details"),
		Probe:  true,
	}
}

func SystemInfoRequest() *Request {
	return &Request{
		Method: http.MethodGet,
		Path:   systemInfoPath,
		Query:  jsonParams(),
		Probe:  true,
	}
}
