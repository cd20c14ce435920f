package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"solr-admin-go/internal/model"
	"solr-admin-go/pkg/log"
	"solr-admin-go/pkg/solr"
)

// SchemaService 定义了 schema 的读取与修改操作。所有修改成功后都会尝试重载 core。
type SchemaService interface {
	Get(ctx context.Context, conn solr.Connection, collection string) (*model.SchemaDescriptor, error)
	Replace(ctx context.Context, conn solr.Connection, collection string, desired model.SchemaDescriptor) (*model.OperationResult, error)
	AddField(ctx context.Context, conn solr.Connection, collection string, field model.Field) (*model.OperationResult, error)
	ReplaceField(ctx context.Context, conn solr.Connection, collection string, field model.Field) (*model.OperationResult, error)
	DeleteField(ctx context.Context, conn solr.Connection, collection, field string) (*model.OperationResult, error)
}

type schemaService struct {
	client SolrClient
}

// NewSchemaService 创建一个新的 SchemaService 实例。
func NewSchemaService(client SolrClient) SchemaService {
	return &schemaService{client: client}
}

func schemaScope(fallback string) Scope {
	return Scope{
		Resource:      "Collection",
		AlreadyExists: "A field with this name already exists",
		Fallback:      fallback,
	}
}

// mutationScope 用于 schema 写操作，"Field type 'x' not found" 这类细节原样返回。
func mutationScope(fallback string) Scope {
	scope := schemaScope(fallback)
	scope.DetailNotFound = true
	return scope
}

func (s *schemaService) Get(ctx context.Context, conn solr.Connection, collection string) (*model.SchemaDescriptor, error) {
	var resp solr.SchemaResponse
	if _, err := s.client.Do(ctx, conn, solr.SchemaRequest(collection), &resp); err != nil {
		log.Errorf("[SchemaService] 获取 collection '%s' 的 schema 失败: %v", collection, err)
		return nil, TranslateError(err, schemaScope("Failed to fetch schema"))
	}
	schema := solr.NormalizeSchema(collection, resp)
	return &schema, nil
}

func validateField(field model.Field) error {
	if strings.TrimSpace(field.Name) == "" {
		return NewClientInputError("Field name is required")
	}
	if strings.TrimSpace(field.Type) == "" {
		return NewClientInputError(fmt.Sprintf("Field type is required for field '%s'", field.Name))
	}
	return nil
}

func (s *schemaService) AddField(ctx context.Context, conn solr.Connection, collection string, field model.Field) (*model.OperationResult, error) {
	if err := validateField(field); err != nil {
		return nil, err
	}
	return s.mutate(ctx, conn, collection, solr.CommandAddField, field, "Field was added", "Field added and core reloaded successfully")
}

func (s *schemaService) ReplaceField(ctx context.Context, conn solr.Connection, collection string, field model.Field) (*model.OperationResult, error) {
	if err := validateField(field); err != nil {
		return nil, err
	}
	return s.mutate(ctx, conn, collection, solr.CommandReplaceField, field, "Field was updated", "Field updated and core reloaded successfully")
}

// DeleteField 拒绝删除 schema 的 uniqueKey 字段。
func (s *schemaService) DeleteField(ctx context.Context, conn solr.Connection, collection, field string) (*model.OperationResult, error) {
	if strings.TrimSpace(field) == "" {
		return nil, NewClientInputError("Field name is required")
	}

	var key solr.UniqueKeyResponse
	if _, err := s.client.Do(ctx, conn, solr.UniqueKeyRequest(collection), &key); err != nil {
		log.Errorf("[SchemaService] 获取 collection '%s' 的 uniqueKey 失败: %v", collection, err)
		return nil, TranslateError(err, mutationScope("Failed to delete field"))
	}
	if key.UniqueKey == field {
		log.Warnf("[SchemaService] 拒绝删除 uniqueKey 字段 '%s'", field)
		return nil, &APIError{
			Status:   http.StatusBadRequest,
			Category: CategoryValidation,
			Message:  fmt.Sprintf("Cannot delete the unique key field '%s'", field),
		}
	}

	payload := map[string]string{"name": field}
	return s.mutate(ctx, conn, collection, solr.CommandDeleteField, payload, "Field was deleted", "Field deleted and core reloaded successfully")
}

func (s *schemaService) mutate(ctx context.Context, conn solr.Connection, collection, command string, payload any, verb, okMessage string) (*model.OperationResult, error) {
	log.Infof("[SchemaService] collection: %s, 执行 %s", collection, command)
	if _, err := s.client.Do(ctx, conn, solr.SchemaCommandRequest(collection, command, payload), nil); err != nil {
		log.Errorf("[SchemaService] %s 失败: %v", command, err)
		return nil, TranslateError(err, mutationScope(fmt.Sprintf("Failed to %s", strings.ReplaceAll(command, "-", " "))))
	}
	if warn := reloadAfter(ctx, s.client, conn, collection, verb); warn != nil {
		return warn, nil
	}
	return &model.OperationResult{Success: true, Message: okMessage}, nil
}

// Replace 把当前 schema 与 desired 做差异比较，生成一次批量 schema 请求。
// uniqueKey 字段和以 "_" 开头的内部字段永远不会被删除。
func (s *schemaService) Replace(ctx context.Context, conn solr.Connection, collection string, desired model.SchemaDescriptor) (*model.OperationResult, error) {
	current, err := s.Get(ctx, conn, collection)
	if err != nil {
		return nil, err
	}

	if !desired.HasField(current.UniqueKeyField) {
		return nil, NewClientInputError(fmt.Sprintf("Schema must keep the unique key field '%s'", current.UniqueKeyField))
	}
	if err := validateFieldList(desired.Fields); err != nil {
		return nil, err
	}
	if err := validateFieldList(desired.DynamicFields); err != nil {
		return nil, err
	}

	cmds := diffSchema(*current, desired)
	if len(cmds) == 0 {
		log.Infof("[SchemaService] collection '%s' 的 schema 没有变化", collection)
		return &model.OperationResult{Success: true, Message: "Schema is already up to date"}, nil
	}

	log.Infof("[SchemaService] collection: %s, 批量提交 %d 条 schema 命令", collection, len(cmds))
	if _, err := s.client.Do(ctx, conn, solr.SchemaBulkRequest(collection, cmds), nil); err != nil {
		log.Errorf("[SchemaService] 批量更新 schema 失败: %v", err)
		return nil, TranslateError(err, mutationScope("Failed to update schema"))
	}
	if warn := reloadAfter(ctx, s.client, conn, collection, "Schema was updated"); warn != nil {
		return warn, nil
	}
	return &model.OperationResult{
		Success: true,
		Message: fmt.Sprintf("Schema updated with %d change(s) and core reloaded successfully", len(cmds)),
	}, nil
}

func validateFieldList(fields []model.Field) error {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if err := validateField(f); err != nil {
			return err
		}
		if _, dup := seen[f.Name]; dup {
			return NewClientInputError(fmt.Sprintf("Field '%s' is defined more than once", f.Name))
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

func protectedField(name, uniqueKey string) bool {
	return name == uniqueKey || strings.HasPrefix(name, "_")
}

// diffSchema 的命令顺序：先删除 copy field，再删除字段，再新增/替换字段，最后新增 copy field。
func diffSchema(current, desired model.SchemaDescriptor) solr.SchemaCommands {
	fieldCmds := diffFields(current.Fields, desired.Fields, current.UniqueKeyField,
		solr.CommandAddField, solr.CommandReplaceField, solr.CommandDeleteField)
	dynamicCmds := diffFields(current.DynamicFields, desired.DynamicFields, "",
		solr.CommandAddDynamicField, solr.CommandReplaceDynamicField, solr.CommandDeleteDynamicField)

	currentCopies := make(map[string]model.CopyField, len(current.CopyFields))
	desiredCopies := make(map[string]model.CopyField, len(desired.CopyFields))
	var deleteCopies, addCopies solr.SchemaCommands

	for _, cf := range current.CopyFields {
		currentCopies[copyKey(cf)] = cf
	}
	for _, cf := range desired.CopyFields {
		desiredCopies[copyKey(cf)] = cf
	}
	for _, cf := range current.CopyFields {
		want, ok := desiredCopies[copyKey(cf)]
		if !ok || !sameMaxChars(cf.MaxChars, want.MaxChars) {
			deleteCopies = append(deleteCopies, solr.SchemaCommand{
				Name:    solr.CommandDeleteCopyField,
				Payload: map[string]string{"source": cf.Source, "dest": cf.Dest},
			})
		}
	}
	for _, cf := range desired.CopyFields {
		have, ok := currentCopies[copyKey(cf)]
		if !ok || !sameMaxChars(cf.MaxChars, have.MaxChars) {
			addCopies = append(addCopies, solr.SchemaCommand{Name: solr.CommandAddCopyField, Payload: cf})
		}
	}

	var out solr.SchemaCommands
	out = append(out, deleteCopies...)
	out = append(out, fieldCmds.deletes...)
	out = append(out, dynamicCmds.deletes...)
	out = append(out, fieldCmds.upserts...)
	out = append(out, dynamicCmds.upserts...)
	out = append(out, addCopies...)
	return out
}

type fieldDiff struct {
	deletes solr.SchemaCommands
	upserts solr.SchemaCommands
}

func diffFields(current, desired []model.Field, uniqueKey, addCmd, replaceCmd, deleteCmd string) fieldDiff {
	var d fieldDiff
	have := make(map[string]model.Field, len(current))
	for _, f := range current {
		have[f.Name] = f
	}
	want := make(map[string]struct{}, len(desired))
	for _, f := range desired {
		want[f.Name] = struct{}{}
		existing, ok := have[f.Name]
		switch {
		case !ok:
			d.upserts = append(d.upserts, solr.SchemaCommand{Name: addCmd, Payload: f})
		case !existing.SameDefinition(f):
			d.upserts = append(d.upserts, solr.SchemaCommand{Name: replaceCmd, Payload: f})
		}
	}
	for _, f := range current {
		if _, ok := want[f.Name]; ok || protectedField(f.Name, uniqueKey) {
			continue
		}
		d.deletes = append(d.deletes, solr.SchemaCommand{Name: deleteCmd, Payload: map[string]string{"name": f.Name}})
	}
	return d
}

func copyKey(cf model.CopyField) string {
	return cf.Source + "\x00" + cf.Dest
}

func sameMaxChars(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
