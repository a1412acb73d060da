package langtypescript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_FunctionDeclaration(t *testing.T) {
	p := New()
	src := []byte("function greet(): number {\n  return 1;\n}\n")
	tree, err := p.Parse(src)
	require.NoError(t, err)
	require.False(t, tree.HasErrors())

	nodes, err := p.Extract("function_declaration", tree, src)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "greet", nodes[0].Name)
}

func TestExtensions_ExcludesJS(t *testing.T) {
	p := New()
	assert.NotContains(t, p.Extensions(), ".js")
	assert.Contains(t, p.Extensions(), ".tsx")
}
