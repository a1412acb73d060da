package langpython

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_FunctionDefinition(t *testing.T) {
	p := New()
	src := []byte("def greet():\n    return 1\n")
	tree, err := p.Parse(src)
	require.NoError(t, err)
	require.False(t, tree.HasErrors())

	nodes, err := p.Extract("function_definition", tree, src)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "greet", nodes[0].Name)
}
