package routetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticegw/gatewayd/internal/proxydef"
)

func defAt(id, path string) proxydef.Definition {
	return proxydef.Definition{ID: id, ListenPath: path}
}

func TestBuild_DuplicateListenPathIsRoutingError(t *testing.T) {
	defs := []proxydef.Definition{
		defAt("a", "/foo"),
		defAt("b", "/foo"),
	}

	_, err := Build(defs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate listen_path")
}

func TestMatch_ExactBeatsPrefix(t *testing.T) {
	defs := []proxydef.Definition{
		defAt("users", "/api/users"),
		defAt("users-id", "/api/users/:id"),
	}
	table, err := Build(defs)
	require.NoError(t, err)

	m, ok := table.Match("/api/users")
	require.True(t, ok)
	assert.Equal(t, "users", m.Definition.ID)

	m, ok = table.Match("/api/users/42")
	require.True(t, ok)
	assert.Equal(t, "users-id", m.Definition.ID)
	assert.Equal(t, "42", m.Params["id"])
}

func TestMatch_LongestLiteralPrefixWins(t *testing.T) {
	defs := []proxydef.Definition{
		defAt("catchall", "/api/:rest"),
		defAt("specific", "/api/reports"),
	}
	table, err := Build(defs)
	require.NoError(t, err)

	m, ok := table.Match("/api/reports")
	require.True(t, ok)
	assert.Equal(t, "specific", m.Definition.ID)

	m, ok = table.Match("/api/anything")
	require.True(t, ok)
	assert.Equal(t, "catchall", m.Definition.ID)
	assert.Equal(t, "anything", m.Params["rest"])
}

func TestMatch_CaseSensitiveNoDecodeTrailingSlashSignificant(t *testing.T) {
	defs := []proxydef.Definition{
		defAt("lower", "/Foo"),
		defAt("trailing", "/bar/"),
	}
	table, err := Build(defs)
	require.NoError(t, err)

	_, ok := table.Match("/foo")
	assert.False(t, ok, "match must be case-sensitive")

	_, ok = table.Match("/bar")
	assert.False(t, ok, "trailing slash must be significant")

	_, ok = table.Match("/bar/")
	assert.True(t, ok)
}

func TestMatch_LiteralSegmentsStopsAtFirstParam(t *testing.T) {
	defs := []proxydef.Definition{
		defAt("rewrite", "/rewrite/:path"),
		defAt("static", "/static/assets/logo"),
	}
	table, err := Build(defs)
	require.NoError(t, err)

	m, ok := table.Match("/rewrite/test")
	require.True(t, ok)
	assert.Equal(t, 1, m.LiteralSegments, "only the literal segment before :path should count")

	m, ok = table.Match("/static/assets/logo")
	require.True(t, ok)
	assert.Equal(t, 3, m.LiteralSegments, "a fully literal pattern consumes all its segments")
}

func TestMatch_Unregistered404(t *testing.T) {
	table, err := Build(nil)
	require.NoError(t, err)

	_, ok := table.Match("/nope")
	assert.False(t, ok)
}
