package solr

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solr-admin-go/internal/model"
)

func TestSearchRequest(t *testing.T) {
	t.Run("facets and filters", func(t *testing.T) {
		req := SearchRequest("products", model.SearchQuery{
			Q:           "title:phone",
			FacetFields: []string{"brand", "color"},
			FilterQuery: []string{"inStock:true"},
			Sort:        "price desc",
			Start:       20,
			Rows:        model.Int(10),
		})

		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "products/select", req.Path)
		q := req.Query
		assert.Equal(t, "title:phone", q.Get("q"))
		assert.Equal(t, "true", q.Get("facet"))
		assert.Equal(t, "1", q.Get("facet.mincount"))
		assert.Equal(t, []string{"brand", "color"}, q["facet.field"])
		assert.Equal(t, []string{"inStock:true"}, q["fq"])
		assert.Equal(t, "price desc", q.Get("sort"))
		assert.Equal(t, "20", q.Get("start"))
		assert.Equal(t, "10", q.Get("rows"))
		assert.Equal(t, "json", q.Get("wt"))
	})

	t.Run("empty query", func(t *testing.T) {
		req := SearchRequest("products", model.SearchQuery{Rows: model.Int(0)})
		q := req.Query
		assert.Equal(t, "*:*", q.Get("q"))
		assert.NotContains(t, q, "facet")
		assert.NotContains(t, q, "facet.mincount")
		assert.NotContains(t, q, "fq")
		assert.NotContains(t, q, "sort")
		assert.Equal(t, "true", q.Get("hl"))
		assert.Equal(t, "0", q.Get("rows"))
	})
}

func TestSchemaCommands_MarshalJSON(t *testing.T) {
	cmds := SchemaCommands{
		{Name: CommandDeleteField, Payload: map[string]string{"name": "b"}},
		{Name: CommandDeleteField, Payload: map[string]string{"name": "a"}},
		{Name: CommandAddField, Payload: model.Field{Name: "c", Type: "string", Stored: model.Bool(true)}},
	}

	b, err := json.Marshal(cmds)
	require.NoError(t, err)
	assert.Equal(t,
		`{"delete-field":{"name":"b"},"delete-field":{"name":"a"},"add-field":{"name":"c","type":"string","stored":true}}`,
		string(b))

	empty, err := json.Marshal(SchemaCommands{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(empty))
}

func TestSchemaCommandRequest(t *testing.T) {
	req := SchemaCommandRequest("my collection", CommandDeleteField, map[string]string{"name": "title"})

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "my%20collection/schema", req.Path)
	b, err := json.Marshal(req.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"delete-field":{"name":"title"}}`, string(b))
}

func TestCollectionAdminRequests(t *testing.T) {
	create := CreateCollectionRequest("products")
	assert.Equal(t, "admin/collections", create.Path)
	assert.Equal(t, "CREATE", create.Query.Get("action"))
	assert.Equal(t, "_default", create.Query.Get("collection.configName"))
	assert.Equal(t, "1", create.Query.Get("numShards"))
	assert.Equal(t, "1", create.Query.Get("replicationFactor"))
	assert.Equal(t, "1", create.Query.Get("maxShardsPerNode"))
	assert.False(t, create.Probe)

	del := DeleteCollectionRequest("products")
	assert.Equal(t, http.MethodPost, del.Method)
	assert.Equal(t, "DELETE", del.Query.Get("action"))

	list := ListCollectionsRequest()
	assert.True(t, list.Probe)
	assert.Equal(t, "LIST", list.Query.Get("action"))

	status := CollectionStatusRequest("products")
	assert.Equal(t, "products/admin/luke", status.Path)
	assert.Equal(t, "0", status.Query.Get("numTerms"))
}

func TestUpdateRequests(t *testing.T) {
	docs := []map[string]any{{"id": "1"}}

	immediate := UpdateRequest("products", docs)
	assert.Equal(t, "true", immediate.Query.Get("commit"))
	assert.Empty(t, immediate.Query.Get("commitWithin"))

	within := UpdateWithinRequest("products", docs, "500")
	assert.Equal(t, "500", within.Query.Get("commitWithin"))
	assert.Empty(t, within.Query.Get("commit"))
	assert.Equal(t, "products/update", within.Path)
}

func TestReplicationConfigRequest(t *testing.T) {
	conn := Connection{BaseURL: "http://solr1:8983/solr"}

	master, err := json.Marshal(ReplicationConfigRequest(conn, "core1", true).Body)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"set-property":{"name":"replicator","value":{"class":"solr.MasterReplicationHandler","config":{"replicateAfter":["commit","optimize"]}}}}`,
		string(master))

	slave, err := json.Marshal(ReplicationConfigRequest(conn, "core1", false).Body)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"set-property":{"name":"replicator.slave","value":{"class":"solr.SlaveReplicationHandler","config":{"masterUrl":"http://solr1:8983/solr/core1/replication"}}}}`,
		string(slave))
}
