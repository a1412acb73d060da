package strictjson

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxhq/identedit/internal/apperr"
)

func TestCheckDuplicateKeys_TopLevelDuplicate(t *testing.T) {
	err := CheckDuplicateKeys([]byte(`{"command":"select","command":"apply"}`))
	assertDuplicateField(t, err, "command")
}

func TestCheckDuplicateKeys_NestedObjectDuplicate(t *testing.T) {
	err := CheckDuplicateKeys([]byte(`{"selector":{"kind":"function_definition","kind":"class_definition"}}`))
	assertDuplicateField(t, err, "kind")
}

func TestCheckDuplicateKeys_DuplicateInsideArrayElement(t *testing.T) {
	err := CheckDuplicateKeys([]byte(`{"operations":[{"identity":"a","identity":"b"}]}`))
	assertDuplicateField(t, err, "identity")
}

func TestCheckDuplicateKeys_NoDuplicatesPasses(t *testing.T) {
	err := CheckDuplicateKeys([]byte(`{"file":"a.py","selector":{"kind":"function_definition"},"operations":[{"identity":"a"},{"identity":"b"}]}`))
	assert.NoError(t, err)
}

func TestCheckDuplicateKeys_SameKeyInDifferentObjectsIsFine(t *testing.T) {
	err := CheckDuplicateKeys([]byte(`{"a":{"kind":"x"},"b":{"kind":"y"}}`))
	assert.NoError(t, err)
}

func assertDuplicateField(t *testing.T, err error, field string) {
	t.Helper()
	if assert.Error(t, err) {
		e, ok := apperr.As(err)
		assert.True(t, ok)
		assert.Equal(t, apperr.InvalidRequest, e.Type)
		assert.Contains(t, e.Message, "duplicate field `"+field+"`")
	}
}
