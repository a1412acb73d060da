package langgo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_FunctionDeclaration(t *testing.T) {
	p := New()
	src := []byte("package a\n\nfunc Hello() {}\n")
	tree, err := p.Parse(src)
	require.NoError(t, err)
	require.False(t, tree.HasErrors())

	nodes, err := p.Extract("function_declaration", tree, src)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Hello", nodes[0].Name)
}

func TestExtract_ReportsParseFailureOnSyntaxError(t *testing.T) {
	p := New()
	src := []byte("package a\n\nfunc Hello( {{{\n")
	tree, err := p.Parse(src)
	require.NoError(t, err)
	require.True(t, tree.HasErrors())

	_, err = p.Extract("function_declaration", tree, src)
	assert.Error(t, err)
}

func TestName_ReportsGo(t *testing.T) {
	p := New()
	assert.Equal(t, "Go", p.Name())
	assert.Equal(t, []string{".go"}, p.Extensions())
}
