package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solr-admin-go/internal/model"
	"solr-admin-go/pkg/solr"
)

// stubClient 按请求路径返回预设的响应体或错误，并记录所有请求。
type stubClient struct {
	mu       sync.Mutex
	requests []*solr.Request
	bodies   map[string]string
	errs     map[string]error
}

func newStubClient() *stubClient {
	return &stubClient{bodies: map[string]string{}, errs: map[string]error{}}
}

func (s *stubClient) Do(_ context.Context, _ solr.Connection, req *solr.Request, out any) (*solr.ResponseHeader, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	key := req.Method + " " + req.Path
	err := s.errs[key]
	body, ok := s.bodies[key]
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if out != nil && ok {
		if err := json.Unmarshal([]byte(body), out); err != nil {
			return nil, err
		}
	}
	return &solr.ResponseHeader{}, nil
}

func (s *stubClient) calls(method, path string) []*solr.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*solr.Request
	for _, r := range s.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

var testConn = solr.Connection{BaseURL: "http://localhost:8983/solr"}

func commandNames(cmds solr.SchemaCommands) []string {
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
	}
	return names
}

func TestDiffSchema_Order(t *testing.T) {
	current := model.SchemaDescriptor{
		UniqueKeyField: "id",
		Fields: []model.Field{
			{Name: "id", Type: "string"},
			{Name: "_root_", Type: "string"},
			{Name: "title", Type: "text_general"},
			{Name: "obsolete", Type: "string"},
		},
		DynamicFields: []model.DynamicField{
			{Name: "*_s", Type: "string"},
			{Name: "*_old", Type: "string"},
		},
		CopyFields: []model.CopyField{
			{Source: "obsolete", Dest: "_text_"},
			{Source: "title", Dest: "_text_"},
		},
	}
	desired := model.SchemaDescriptor{
		Fields: []model.Field{
			{Name: "id", Type: "string"},
			{Name: "title", Type: "text_en"},
			{Name: "price", Type: "pfloat"},
		},
		DynamicFields: []model.DynamicField{
			{Name: "*_s", Type: "string", MultiValued: model.Bool(true)},
			{Name: "*_i", Type: "pint"},
		},
		CopyFields: []model.CopyField{
			{Source: "title", Dest: "_text_"},
			{Source: "price", Dest: "price_s"},
		},
	}

	cmds := diffSchema(current, desired)

	assert.Equal(t, []string{
		solr.CommandDeleteCopyField,
		solr.CommandDeleteField,
		solr.CommandDeleteDynamicField,
		solr.CommandReplaceField,
		solr.CommandAddField,
		solr.CommandReplaceDynamicField,
		solr.CommandAddDynamicField,
		solr.CommandAddCopyField,
	}, commandNames(cmds))

	b, err := json.Marshal(cmds)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "_root_")
	assert.Contains(t, string(b), `"delete-field":{"name":"obsolete"}`)
	assert.Contains(t, string(b), `"delete-dynamic-field":{"name":"*_old"}`)
}

func TestDiffSchema_NoChanges(t *testing.T) {
	schema := model.SchemaDescriptor{
		UniqueKeyField: "id",
		Fields:         []model.Field{{Name: "id", Type: "string", Stored: model.Bool(true)}},
		CopyFields:     []model.CopyField{{Source: "id", Dest: "_text_"}},
	}
	assert.Empty(t, diffSchema(schema, schema))
}

func TestDiffSchema_CopyFieldMaxCharsChange(t *testing.T) {
	before, after := 100, 200
	current := model.SchemaDescriptor{CopyFields: []model.CopyField{{Source: "a", Dest: "b", MaxChars: &before}}}
	desired := model.SchemaDescriptor{CopyFields: []model.CopyField{{Source: "a", Dest: "b", MaxChars: &after}}}

	cmds := diffSchema(current, desired)
	assert.Equal(t, []string{solr.CommandDeleteCopyField, solr.CommandAddCopyField}, commandNames(cmds))
}

func TestSchemaService_ReplaceNoChanges(t *testing.T) {
	client := newStubClient()
	client.bodies["GET products/schema"] = `{"schema":{"uniqueKey":"id","fields":[{"name":"id","type":"string"}]}}`
	svc := NewSchemaService(client)

	result, err := svc.Replace(context.Background(), testConn, "products", model.SchemaDescriptor{
		Fields: []model.Field{{Name: "id", Type: "string"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "Schema is already up to date", result.Message)
	assert.Empty(t, client.calls(http.MethodPost, "products/schema"))
	assert.Empty(t, client.calls(http.MethodGet, "admin/cores"))
}

func TestSchemaService_ReplaceValidation(t *testing.T) {
	client := newStubClient()
	client.bodies["GET products/schema"] = `{"schema":{"uniqueKey":"id"}}`
	svc := NewSchemaService(client)

	tests := []struct {
		name    string
		desired model.SchemaDescriptor
		wantMsg string
	}{
		{
			name:    "drops unique key",
			desired: model.SchemaDescriptor{Fields: []model.Field{{Name: "title", Type: "string"}}},
			wantMsg: "Schema must keep the unique key field 'id'",
		},
		{
			name: "duplicate field",
			desired: model.SchemaDescriptor{Fields: []model.Field{
				{Name: "id", Type: "string"}, {Name: "id", Type: "string"},
			}},
			wantMsg: "Field 'id' is defined more than once",
		},
		{
			name: "missing type",
			desired: model.SchemaDescriptor{Fields: []model.Field{
				{Name: "id", Type: "string"}, {Name: "title"},
			}},
			wantMsg: "Field type is required for field 'title'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Replace(context.Background(), testConn, "products", tt.desired)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.Status)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
	assert.Empty(t, client.calls(http.MethodPost, "products/schema"))
}

func TestSchemaService_AddFieldReloadWarning(t *testing.T) {
	client := newStubClient()
	client.errs["GET admin/cores"] = &solr.UpstreamError{StatusCode: http.StatusInternalServerError, Message: "reload failed"}
	svc := NewSchemaService(client)

	result, err := svc.AddField(context.Background(), testConn, "products", model.Field{Name: "title", Type: "string"})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Field was added but core reload failed. Changes may not be visible until core is reloaded.", result.Warning)
	assert.Empty(t, result.Message)
}

func TestSchemaService_DeleteFieldGuards(t *testing.T) {
	client := newStubClient()
	client.bodies["GET products/schema/uniquekey"] = `{"uniqueKey":"sku"}`
	svc := NewSchemaService(client)

	_, err := svc.DeleteField(context.Background(), testConn, "products", "sku")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Cannot delete the unique key field 'sku'", apiErr.Message)

	_, err = svc.DeleteField(context.Background(), testConn, "products", " ")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Field name is required", apiErr.Message)

	assert.Empty(t, client.calls(http.MethodPost, "products/schema"))
}
