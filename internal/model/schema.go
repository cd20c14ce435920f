// Package model 定义了控制台对外 JSON 契约中使用的结构体。
package model

import (
	"bytes"
	"encoding/json"
)

// SchemaDescriptor 是规范化后的 collection schema。
type SchemaDescriptor struct {
	Name           string           `json:"name"`
	Version        float64          `json:"version"`
	UniqueKeyField string           `json:"uniqueKeyField"`
	FieldTypes     []map[string]any `json:"fieldTypes"`
	Fields         []Field          `json:"fields"`
	DynamicFields  []DynamicField   `json:"dynamicFields"`
	CopyFields     []CopyField      `json:"copyFields"`
}

// HasField 报告 schema 中是否存在给定名称的字段。
func (s SchemaDescriptor) HasField(name string) bool {
	for _, f := range s.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// Field 描述一个 schema 字段。
// Solr 支持的其它属性（default、omitNorms、termVectors 等）保存在 Extra 中并原样往返。
type Field struct {
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Required    *bool          `json:"required,omitempty"`
	Indexed     *bool          `json:"indexed,omitempty"`
	Stored      *bool          `json:"stored,omitempty"`
	MultiValued *bool          `json:"multiValued,omitempty"`
	DocValues   *bool          `json:"docValues,omitempty"`
	Extra       map[string]any `json:"-"`
}

// DynamicField 与 Field 结构相同，Name 保存通配模式（例如 "*_s"）。
type DynamicField = Field

// CopyField 描述索引时从 Source 复制到 Dest 的规则。
type CopyField struct {
	Source   string `json:"source"`
	Dest     string `json:"dest"`
	MaxChars *int   `json:"maxChars,omitempty"`
}

var knownFieldKeys = []string{"name", "type", "required", "indexed", "stored", "multiValued", "docValues"}

// fieldAlias 避免 MarshalJSON/UnmarshalJSON 递归。
type fieldAlias Field

func (f *Field) UnmarshalJSON(data []byte) error {
	var alias fieldAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range knownFieldKeys {
		delete(all, k)
	}
	if len(all) > 0 {
		alias.Extra = all
	}
	*f = Field(alias)
	return nil
}

func (f Field) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(fieldAlias(f))
	if err != nil {
		return nil, err
	}
	if len(f.Extra) == 0 {
		return base, nil
	}
	merged := make(map[string]any, len(f.Extra)+len(knownFieldKeys))
	for k, v := range f.Extra {
		merged[k] = v
	}
	var known map[string]any
	if err := json.Unmarshal(base, &known); err != nil {
		return nil, err
	}
	// 已知属性优先于 Extra 中的同名键
	for k, v := range known {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// SameDefinition 比较两个字段定义是否完全一致（包括 Extra 属性）。
func (f Field) SameDefinition(other Field) bool {
	a, errA := json.Marshal(f)
	b, errB := json.Marshal(other)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(a, b)
}

// Bool 返回指向 v 的指针，便于构造 Field。
func Bool(v bool) *bool { return &v }

func Int(v int) *int { return &v }
