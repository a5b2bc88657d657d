package mcp_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statuswatch/statuswatch/internal/mcp"
)

func TestCatalog_Shape(t *testing.T) {
	catalog := mcp.Catalog()
	require.Len(t, catalog, 7)

	seen := map[string]bool{}
	for _, tool := range catalog {
		assert.NotEmpty(t, tool.Name)
		assert.NotEmpty(t, tool.Description)
		assert.False(t, seen[tool.Name], "duplicate tool name %q", tool.Name)
		seen[tool.Name] = true

		require.NotNil(t, tool.InputSchema)
		assert.Equal(t, "object", tool.InputSchema["type"])
		_, ok := tool.InputSchema["properties"].(map[string]any)
		assert.True(t, ok, "tool %q has no properties", tool.Name)
	}
}

func TestCatalog_EveryToolIsDispatchable(t *testing.T) {
	fx := newFixture()

	for _, tool := range mcp.Catalog() {
		t.Run(tool.Name, func(t *testing.T) {
			result := fx.dispatcher.Dispatch(context.Background(), "key", tool.Name, map[string]any{})
			if result.IsError {
				require.NotEmpty(t, result.Content)
				assert.False(t, strings.HasPrefix(result.Content[0].Text, "unknown tool"),
					"catalog advertises %q but the dispatcher does not know it", tool.Name)
			}
		})
	}
}

func TestCatalog_RequiredFieldsAreValidated(t *testing.T) {
	fx := newFixture()

	for _, tool := range mcp.Catalog() {
		required, _ := tool.InputSchema["required"].([]string)
		if len(required) == 0 {
			continue
		}
		t.Run(tool.Name, func(t *testing.T) {
			result := fx.dispatcher.Dispatch(context.Background(), "key", tool.Name, map[string]any{})
			require.True(t, result.IsError, "omitting required arguments must fail validation")
			for _, field := range required {
				assert.Contains(t, result.Content[0].Text, "missing required argument: "+field)
			}
		})
	}
}

func TestCatalog_RequiredFieldsExistInProperties(t *testing.T) {
	for _, tool := range mcp.Catalog() {
		required, _ := tool.InputSchema["required"].([]string)
		props, _ := tool.InputSchema["properties"].(map[string]any)
		for _, field := range required {
			assert.Contains(t, props, field, "tool %q requires undeclared field %q", tool.Name, field)
		}
	}
}

func TestToolNames_MatchCatalogOrder(t *testing.T) {
	names := mcp.ToolNames()
	catalog := mcp.Catalog()
	require.Len(t, names, len(catalog))
	for i, tool := range catalog {
		assert.Equal(t, tool.Name, names[i])
	}
}
