package applyengine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxhq/identedit/internal/handle"
)

func TestSplice_ReplaceSingleSpan(t *testing.T) {
	src := []byte("def process_data(value):\n    return value + 1\n")
	op := handle.Operation{
		Kind:    handle.OpReplace,
		NewText: "def process_data(value):\n    return value + 2",
		Preview: handle.Preview{MatchedSpan: handle.Span{Start: 0, End: 45}},
	}
	out := Splice(src, []handle.Operation{op})
	assert.Equal(t, "def process_data(value):\n    return value + 2\n", string(out))
}

func TestSplice_PreservesOrderIndependenceForDisjointOps(t *testing.T) {
	src := []byte("AAAABBBBCCCC")
	ops := []handle.Operation{
		{Kind: handle.OpReplace, NewText: "xx", Preview: handle.Preview{MatchedSpan: handle.Span{Start: 0, End: 4}}},
		{Kind: handle.OpReplace, NewText: "yy", Preview: handle.Preview{MatchedSpan: handle.Span{Start: 8, End: 12}}},
	}
	reversed := []handle.Operation{ops[1], ops[0]}

	out1 := Splice(src, ops)
	out2 := Splice(src, reversed)
	assert.Equal(t, string(out1), string(out2))
	assert.Equal(t, "xxBBBByy", string(out1))
}

func TestSplice_Delete(t *testing.T) {
	src := []byte("keep-DELETE-keep")
	op := handle.Operation{
		Kind:    handle.OpDelete,
		Preview: handle.Preview{MatchedSpan: handle.Span{Start: 5, End: 11}},
	}
	out := Splice(src, []handle.Operation{op})
	assert.Equal(t, "keep--keep", string(out))
}

func TestSplice_InsertAtZeroLengthPoint(t *testing.T) {
	src := []byte("AB")
	op := handle.Operation{
		Kind:    handle.OpInsertAfter,
		NewText: "X",
		Preview: handle.Preview{MatchedSpan: handle.Span{Start: 1, End: 1}},
	}
	out := Splice(src, []handle.Operation{op})
	assert.Equal(t, "AXB", string(out))
}
