package swagger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

type securityScheme struct {
	Type string `json:"type"`
	Name string `json:"name"`
	In   string `json:"in"`
}

type document struct {
	Host                string                                `json:"host"`
	Paths               map[string]map[string]json.RawMessage `json:"paths"`
	SecurityDefinitions map[string]securityScheme             `json:"securityDefinitions"`
}

func read(t *testing.T, instance string) document {
	t.Helper()
	raw, err := swag.ReadDoc(instance)
	require.NoError(t, err)
	var doc document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return doc
}

func TestProfilesDocument(t *testing.T) {
	doc := read(t, ProfilesInfo.InstanceName())

	assert.Equal(t, "localhost:8081", doc.Host)
	assert.Contains(t, doc.Paths["/api/v1/profiles"], "get")
	assert.Contains(t, doc.Paths["/api/v1/profiles"], "post")
	assert.Contains(t, doc.Paths["/api/v1/profiles/{id}"], "get")
	assert.NotContains(t, doc.Paths, "/api/v1/orders")
}

func TestBearerSchemeOnBothDocuments(t *testing.T) {
	for _, instance := range []string{OrdersInfo.InstanceName(), ProfilesInfo.InstanceName()} {
		doc := read(t, instance)

		bearer, ok := doc.SecurityDefinitions["BearerAuth"]
		require.True(t, ok, instance)
		assert.Equal(t, "apiKey", bearer.Type)
		assert.Equal(t, "Authorization", bearer.Name)
		assert.Equal(t, "header", bearer.In)
		assert.NotContains(t, doc.SecurityDefinitions, "ApiKeyAuth")
	}
}
