package openapi

import (
	"context"
	"testing"

	"github.com/CliForge/pinterest-ads-cli/pkg/commandtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adsSpec = `{
  "openapi": "3.0.3",
  "info": {"title": "Pinterest REST API", "version": "5.14.0"},
  "servers": [{"url": "https://api.example.com/v5"}],
  "security": [{"pinterest_oauth2": ["ads:read"]}],
  "components": {
    "parameters": {
      "ad_account_id": {"name": "ad_account_id", "in": "path", "required": true, "schema": {"type": "string"}}
    },
    "schemas": {
      "Paginated": {"type": "object", "properties": {"bookmark": {"type": "string", "nullable": true}}},
      "CampaignList": {"allOf": [{"$ref": "#/components/schemas/Paginated"}, {"type": "object"}]},
      "Status": {"type": "string", "enum": ["ACTIVE", "PAUSED"]}
    }
  },
  "paths": {
    "/ad_accounts/{ad_account_id}/campaigns": {
      "parameters": [{"$ref": "#/components/parameters/ad_account_id"}],
      "get": {
        "operationId": "campaigns/list",
        "summary": "List campaigns",
        "tags": ["campaigns"],
        "parameters": [
          {"name": "page_size", "in": "query", "schema": {"type": "integer"}},
          {"name": "entity_statuses", "in": "query", "explode": false, "schema": {"type": "array", "items": {"$ref": "#/components/schemas/Status"}}},
          {"name": "campaign_ids", "in": "query", "schema": {"type": "array", "items": {}}}
        ],
        "responses": {
          "200": {"description": "ok", "content": {"application/json": {"schema": {"$ref": "#/components/schemas/CampaignList"}}}}
        }
      },
      "post": {
        "operationId": "campaigns/create",
        "security": [{"pinterest_oauth2": ["ads:write"]}],
        "requestBody": {
          "required": true,
          "content": {"application/json": {"schema": {"type": "array"}}, "application/x-www-form-urlencoded": {}}
        },
        "responses": {"200": {"description": "ok", "content": {"application/json": {"schema": {"type": "object"}}}}}
      }
    },
    "/ad_accounts/{ad_account_id}/targeting_analytics": {
      "parameters": [{"$ref": "#/components/parameters/ad_account_id"}],
      "get": {
        "operationId": "targeting_analytics/get",
        "parameters": [
          {"name": "filters", "in": "query", "style": "deepObject", "explode": true, "schema": {"type": "object"}}
        ],
        "responses": {"200": {"description": "ok"}}
      }
    },
    "/ad_accounts/{ad_account_id}/campaigns/bulk": {
      "parameters": [{"$ref": "#/components/parameters/ad_account_id"}],
      "patch": {
        "operationId": "campaigns/list",
        "security": [],
        "responses": {"202": {"description": "accepted"}}
      }
    },
    "/conversions": {
      "post": {
        "operationId": "conversion_events/send/batch",
        "security": [{"conversion_token": []}],
        "responses": {"200": {"description": "ok"}}
      }
    },
    "/health": {
      "get": {
        "operationId": "getHealthStatus",
        "responses": {"200": {"description": "ok"}}
      },
      "delete": {
        "responses": {"204": {"description": "no operationId"}}
      }
    }
  }
}`

func generate(t *testing.T, spec string) *commandtree.CommandTree {
	t.Helper()
	parsed, err := NewParser().Parse(context.Background(), []byte(spec))
	require.NoError(t, err)
	tree, err := NewGenerator().Generate(parsed)
	require.NoError(t, err)
	return tree
}

func TestToKebab(t *testing.T) {
	tests := map[string]string{
		"ad_accounts":       "ad-accounts",
		"getHealthStatus":   "get-health-status",
		"HTTPServer":        "http-server",
		"listAdGroups":      "list-ad-groups",
		"__weird__Name__":   "weird-name",
		"already-kebab":     "already-kebab",
		"audienceInsights2": "audience-insights2",
		"campaignID":        "campaign-id",
	}
	for in, want := range tests {
		assert.Equal(t, want, ToKebab(in), in)
	}
}

func TestNormalizeOperationID(t *testing.T) {
	tests := []struct {
		id       string
		tags     []string
		resource string
		op       string
	}{
		{"campaigns/list", nil, "campaigns", "list"},
		{"ad_groups/bid_floor/get", nil, "ad-groups", "bid-floor-get"},
		{"listThings", []string{"thing_stuff"}, "thing-stuff", "list-things"},
		{"listThings", nil, "misc", "list-things"},
	}
	for _, tt := range tests {
		res, op := NormalizeOperationID(tt.id, tt.tags)
		assert.Equal(t, tt.resource, res, tt.id)
		assert.Equal(t, tt.op, op, tt.id)
	}
}

func TestGenerate_TreeShape(t *testing.T) {
	tree := generate(t, adsSpec)

	assert.Equal(t, 1, tree.Version)
	assert.Equal(t, "5.14.0", tree.APIVersion)
	assert.Equal(t, "https://api.example.com/v5", tree.BaseURL)

	var names []string
	for _, res := range tree.Resources {
		names = append(names, res.Name)
	}
	assert.Equal(t, []string{"campaigns", "conversion-events", "misc", "targeting-analytics"}, names)

	campaigns, ok := tree.Resource("campaigns")
	require.True(t, ok)
	var ops []string
	for _, op := range campaigns.Operations {
		ops = append(ops, op.Name)
	}
	// The plain path sorts before the bulk one, so the bulk duplicate of
	// "list" gets the suffix.
	assert.Equal(t, []string{"create", "list", "list-2"}, ops)

	bulk, err := tree.Find("campaigns", "list-2")
	require.NoError(t, err)
	assert.Equal(t, "PATCH", bulk.Method)
	assert.Equal(t, "/ad_accounts/{ad_account_id}/campaigns/bulk", bulk.Path)

	_, err = tree.Find("misc", "get-health-status")
	assert.NoError(t, err)
	_, err = tree.Find("conversion-events", "send-batch")
	assert.NoError(t, err)
}

func TestGenerate_Params(t *testing.T) {
	tree := generate(t, adsSpec)

	list, err := tree.Find("campaigns", "list")
	require.NoError(t, err)
	assert.Equal(t, "List campaigns", list.Summary)
	assert.Equal(t, []string{"campaigns"}, list.Tags)

	require.Len(t, list.Params, 4)
	assert.Equal(t, "ad_account_id", list.Params[0].Name)
	assert.Equal(t, commandtree.LocationPath, list.Params[0].In)
	assert.True(t, list.Params[0].Required)

	assert.Equal(t, "campaign_ids", list.Params[1].Name)
	assert.Equal(t, "array", list.Params[1].SchemaType)
	assert.Equal(t, "string", list.Params[1].ItemsType)

	assert.Equal(t, "entity_statuses", list.Params[2].Name)
	assert.Equal(t, "entity-statuses", list.Params[2].Flag)
	assert.Equal(t, "string", list.Params[2].ItemsType)
	require.NotNil(t, list.Params[2].Explode)
	assert.False(t, *list.Params[2].Explode)

	assert.Equal(t, "page_size", list.Params[3].Name)
	assert.Equal(t, "integer", list.Params[3].SchemaType)
	assert.Empty(t, list.Params[3].ItemsType)

	analytics, err := tree.Find("targeting-analytics", "get")
	require.NoError(t, err)
	require.Len(t, analytics.Params, 2)
	assert.True(t, analytics.Params[1].IsDeepObject())
	assert.Equal(t, "object", analytics.Params[1].SchemaType)
}

func TestGenerate_PaginationBodyAndSecurity(t *testing.T) {
	tree := generate(t, adsSpec)

	list, err := tree.Find("campaigns", "list")
	require.NoError(t, err)
	assert.True(t, list.Paginated)
	assert.Equal(t, []map[string][]string{{"pinterest_oauth2": {"ads:read"}}}, list.Security)
	assert.Nil(t, list.RequestBody)

	create, err := tree.Find("campaigns", "create")
	require.NoError(t, err)
	assert.False(t, create.Paginated)
	assert.Equal(t, []map[string][]string{{"pinterest_oauth2": {"ads:write"}}}, create.Security)
	require.NotNil(t, create.RequestBody)
	assert.True(t, create.RequestBody.Required)
	assert.Equal(t, []string{"application/json", "application/x-www-form-urlencoded"}, create.RequestBody.ContentTypes)

	bulk, err := tree.Find("campaigns", "list-2")
	require.NoError(t, err)
	assert.Empty(t, bulk.Security)
	assert.False(t, bulk.Paginated)

	send, err := tree.Find("conversion-events", "send-batch")
	require.NoError(t, err)
	assert.Equal(t, []string{"conversion_token"}, send.SecuritySchemes())
	assert.Equal(t, []string{}, send.Security[0]["conversion_token"])
}

func TestGenerate_DefaultBaseURL(t *testing.T) {
	tree := generate(t, `{"openapi": "3.0.0", "info": {"title": "t", "version": "1"}, "paths": {}}`)
	assert.Equal(t, DefaultBaseURL, tree.BaseURL)
	assert.Empty(t, tree.Resources)
}

func TestGenerate_RejectsMismatchedPlaceholders(t *testing.T) {
	spec := `{
	  "openapi": "3.0.0",
	  "info": {"title": "t", "version": "1"},
	  "paths": {
	    "/pins/{pin_id}": {
	      "get": {"operationId": "pins/get", "responses": {"200": {"description": "ok"}}}
	    }
	  }
	}`
	parsed, err := NewParser().Parse(context.Background(), []byte(spec))
	require.NoError(t, err)

	_, err = NewGenerator().Generate(parsed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pin_id")
}

func TestGenerate_NilSpec(t *testing.T) {
	_, err := NewGenerator().Generate(nil)
	assert.Error(t, err)
}
