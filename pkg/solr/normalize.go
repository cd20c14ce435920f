package solr

import (
	"encoding/json"
	"fmt"
	"strconv"

	"solr-admin-go/internal/model"
)

// 以下 raw* 结构对应 Solr 的原始响应，Normalize* 把它们整理成对外的规范结构，
// 缺失的数组/对象一律变成空集合而不是 null。

type CollectionsListResponse struct {
	Collections []string `json:"collections"`
}

type rawSchema struct {
	Name          string               `json:"name"`
	Version       *float64             `json:"version"`
	UniqueKey     string               `json:"uniqueKey"`
	FieldTypes    []map[string]any     `json:"fieldTypes"`
	Fields        []model.Field        `json:"fields"`
	DynamicFields []model.DynamicField `json:"dynamicFields"`
	CopyFields    []model.CopyField    `json:"copyFields"`
}

type SchemaResponse struct {
	Schema rawSchema `json:"schema"`
}

type UniqueKeyResponse struct {
	UniqueKey string `json:"uniqueKey"`
}

// NormalizeSchema: 缺失的 uniqueKey 视为 "id"，缺失的 version 视为 1.0。
func NormalizeSchema(collection string, resp SchemaResponse) model.SchemaDescriptor {
	raw := resp.Schema
	out := model.SchemaDescriptor{
		Name:           collection,
		Version:        1.0,
		UniqueKeyField: raw.UniqueKey,
		FieldTypes:     raw.FieldTypes,
		Fields:         raw.Fields,
		DynamicFields:  raw.DynamicFields,
		CopyFields:     raw.CopyFields,
	}
	if raw.Version != nil {
		out.Version = *raw.Version
	}
	if out.UniqueKeyField == "" {
		out.UniqueKeyField = "id"
	}
	if out.FieldTypes == nil {
		out.FieldTypes = []map[string]any{}
	}
	if out.Fields == nil {
		out.Fields = []model.Field{}
	}
	if out.DynamicFields == nil {
		out.DynamicFields = []model.DynamicField{}
	}
	if out.CopyFields == nil {
		out.CopyFields = []model.CopyField{}
	}
	return out
}

type LukeResponse struct {
	Index struct {
		NumDocs      int64  `json:"numDocs"`
		MaxDoc       int64  `json:"maxDoc"`
		DeletedDocs  int64  `json:"deletedDocs"`
		Size         string `json:"size"`
		LastModified string `json:"lastModified"`
	} `json:"index"`
}

// NormalizeStatus 不引入任何本地时间戳，相同的上游状态总是得到相同的输出。
func NormalizeStatus(resp LukeResponse) model.CollectionStatus {
	out := model.CollectionStatus{
		NumDocs:      resp.Index.NumDocs,
		MaxDoc:       resp.Index.MaxDoc,
		DeletedDocs:  resp.Index.DeletedDocs,
		IndexSize:    resp.Index.Size,
		LastModified: resp.Index.LastModified,
	}
	if out.IndexSize == "" {
		out.IndexSize = "0 bytes"
	}
	return out
}

type SelectResponse struct {
	Response *struct {
		NumFound int64            `json:"numFound"`
		Start    int64            `json:"start"`
		Docs     []map[string]any `json:"docs"`
	} `json:"response"`
	FacetCounts *struct {
		FacetFields map[string]json.RawMessage `json:"facet_fields"`
	} `json:"facet_counts"`
	Highlighting map[string]map[string][]string `json:"highlighting"`
}

// NormalizeSearch 拆开 response / facet_counts.facet_fields / highlighting 三层信封。
func NormalizeSearch(resp SelectResponse) (model.SearchResult, error) {
	out := model.SearchResult{
		Docs:         []map[string]any{},
		Facets:       map[string]map[string]int64{},
		Highlighting: map[string]map[string][]string{},
	}
	if resp.Response != nil {
		out.NumFound = resp.Response.NumFound
		out.Start = resp.Response.Start
		if resp.Response.Docs != nil {
			out.Docs = resp.Response.Docs
		}
	}
	if resp.FacetCounts != nil {
		for field, raw := range resp.FacetCounts.FacetFields {
			counts, err := decodeFacetCounts(raw)
			if err != nil {
				return model.SearchResult{}, fmt.Errorf("%w: facet %q: %v", ErrInvalidResponse, field, err)
			}
			out.Facets[field] = counts
		}
	}
	if resp.Highlighting != nil {
		out.Highlighting = resp.Highlighting
	}
	return out, nil
}

// decodeFacetCounts 同时支持默认的 json.nl=flat（["a",3,"b",1]）和 json.nl=map（{"a":3}）。
func decodeFacetCounts(raw json.RawMessage) (map[string]int64, error) {
	counts := map[string]int64{}
	var asMap map[string]int64
	if err := json.Unmarshal(raw, &asMap); err == nil {
		for k, v := range asMap {
			counts[k] = v
		}
		return counts, nil
	}
	var flat []any
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	if len(flat)%2 != 0 {
		return nil, fmt.Errorf("odd number of entries (%d)", len(flat))
	}
	for i := 0; i < len(flat); i += 2 {
		value := fmt.Sprint(flat[i])
		if flat[i] == nil {
			// facet.missing 的计数用 null 作为值
			value = ""
		}
		n, ok := flat[i+1].(float64)
		if !ok {
			return nil, fmt.Errorf("count for %q is not a number", value)
		}
		counts[value] = int64(n)
	}
	return counts, nil
}

type CoreStatusResponse struct {
	Status map[string]model.CoreStatus `json:"status"`
}

func NormalizeCoreStatus(resp CoreStatusResponse) map[string]model.CoreStatus {
	if resp.Status == nil {
		return map[string]model.CoreStatus{}
	}
	return resp.Status
}

// flexBool 兼容 Solr 在 replication details 中把布尔值写成字符串的情况。
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = flexBool(t)
	case string:
		parsed, _ := strconv.ParseBool(t)
		*b = flexBool(parsed)
	default:
		*b = false
	}
	return nil
}

type ReplicationDetailsResponse struct {
	Details struct {
		IndexSize    string   `json:"indexSize"`
		IndexPath    string   `json:"indexPath"`
		Generation   int64    `json:"generation"`
		IndexVersion int64    `json:"indexVersion"`
		IsMaster     flexBool `json:"isMaster"`
		Master       *struct {
			ReplicationEnabled flexBool `json:"replicationEnabled"`
			ReplicateAfter     []string `json:"replicateAfter"`
			ConfFiles          []string `json:"confFiles"`
		} `json:"master"`
		Slave *struct {
			MasterURL string `json:"masterUrl"`
		} `json:"slave"`
	} `json:"details"`
}

func NormalizeReplication(resp ReplicationDetailsResponse) model.ReplicationStatus {
	d := resp.Details
	out := model.ReplicationStatus{
		Replicable:     bool(d.IsMaster),
		ReplicateAfter: []string{},
		ConfFiles:      []string{},
		Generation:     d.Generation,
		IndexVersion:   d.IndexVersion,
		Size:           d.IndexSize,
		IndexPath:      d.IndexPath,
	}
	if d.Master != nil {
		out.ReplicationEnabled = bool(d.Master.ReplicationEnabled)
		if d.Master.ReplicateAfter != nil {
			out.ReplicateAfter = d.Master.ReplicateAfter
		}
		if d.Master.ConfFiles != nil {
			out.ConfFiles = d.Master.ConfFiles
		}
	}
	if d.Slave != nil {
		out.MasterURL = d.Slave.MasterURL
	}
	return out
}

// SystemInfo 是 admin/info/system 的原始响应，原样返回给浏览器。
type SystemInfo map[string]any

// IsSolr 检查响应中是否同时带有 lucene 与 solr_home 两个标志。
func (s SystemInfo) IsSolr() bool {
	lucene, hasLucene := s["lucene"]
	home, hasHome := s["solr_home"]
	return hasLucene && lucene != nil && hasHome && home != nil && home != ""
}
