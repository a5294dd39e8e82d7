package dependency

import (
	"testing"

	"github.com/compose-spec/compose-go/v2/types"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServicesDependencyGraph(t *testing.T) {
	// db <- webapp <- proxy
	project := &types.Project{
		Name: "test-project",
		Services: types.Services{
			"db": types.ServiceConfig{
				Name:  "db",
				Image: "mariadb:latest",
			},
			"webapp": types.ServiceConfig{
				Name:  "webapp",
				Image: "wordpress:latest",
				DependsOn: types.DependsOnConfig{
					"db": types.ServiceDependency{},
				},
			},
			"proxy": types.ServiceConfig{
				Name:  "proxy",
				Image: "nginx:latest",
				DependsOn: types.DependsOnConfig{
					"webapp": types.ServiceDependency{},
				},
			},
		},
	}

	g, err := FromProject(project)
	require.NoError(t, err)

	deps, err := g.Dependencies("db")
	require.NoError(t, err)
	assert.Empty(t, deps)

	dependents, err := g.Dependents("db")
	require.NoError(t, err)
	assert.Equal(t, []string{"webapp"}, dependents)

	deps, err = g.Dependencies("proxy")
	require.NoError(t, err)
	assert.Equal(t, []string{"webapp"}, deps)

	order, err := g.Order()
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"db", "webapp", "proxy"}, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderKeepsInsertionOrderForIndependentNodes(t *testing.T) {
	g := New()
	for _, step := range []string{"environment", "service", "restart-timer", "monitor-timer"} {
		require.NoError(t, g.AddNode(step))
	}
	require.NoError(t, g.AddDependency("service", "environment"))
	require.NoError(t, g.AddDependency("restart-timer", "service"))
	require.NoError(t, g.AddDependency("monitor-timer", "service"))

	order, err := g.Order()
	require.NoError(t, err)
	assert.Equal(t, []string{"environment", "service", "restart-timer", "monitor-timer"}, order)
}

func TestAddDependencyErrors(t *testing.T) {
	t.Run("self dependency", func(t *testing.T) {
		g := New()
		assert.ErrorContains(t, g.AddDependency("a", "a"), "self-dependency")
	})

	t.Run("cycle", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddDependency("b", "a"))
		require.NoError(t, g.AddDependency("c", "b"))
		assert.ErrorContains(t, g.AddDependency("a", "c"), "cycle")
	})

	t.Run("duplicate edge is ignored", func(t *testing.T) {
		g := New()
		require.NoError(t, g.AddDependency("b", "a"))
		assert.NoError(t, g.AddDependency("b", "a"))
	})

	t.Run("empty node", func(t *testing.T) {
		assert.Error(t, New().AddNode(""))
	})

	t.Run("unknown node", func(t *testing.T) {
		_, err := New().Dependencies("missing")
		assert.ErrorContains(t, err, "unknown node")
	})
}
