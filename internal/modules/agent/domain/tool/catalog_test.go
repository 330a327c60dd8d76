package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogComplete(t *testing.T) {
	domains := make(map[string]bool, len(Domains))
	for _, d := range Domains {
		domains[d.Name] = true
	}

	for _, def := range All() {
		assert.NotEmpty(t, def.Name)
		assert.NotEmpty(t, def.Description)
		assert.True(t, domains[def.Domain], "tool %s references unknown domain %s", def.Name, def.Domain)
		require.NotNil(t, def.Info, "tool %s missing schema info", def.Name)
		assert.Equal(t, def.Name, def.Info.Name)
	}
}

func TestIsMutating(t *testing.T) {
	reads := []string{"get_orders", "get_products", "get_customers", "get_inventory", "get_analytics_summary"}
	writes := []string{"issue_refund", "cancel_order", "update_inventory", "create_discount", "add_order_note"}

	for _, name := range reads {
		require.NotNil(t, Get(name), name)
		assert.False(t, IsMutating(name), "%s should not require approval", name)
	}
	for _, name := range writes {
		require.NotNil(t, Get(name), name)
		assert.True(t, IsMutating(name), "%s should require approval", name)
	}

	assert.False(t, IsMutating("no_such_tool"))
}

func TestInfos(t *testing.T) {
	infos := Infos("get_orders", "no_such_tool", "issue_refund")
	require.Len(t, infos, 2)
	assert.Equal(t, "get_orders", infos[0].Name)
	assert.Equal(t, "issue_refund", infos[1].Name)

	assert.Len(t, AllInfos(), len(All()))
}
