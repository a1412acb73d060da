// Package strictjson guards identedit's JSON-mode request payloads against
// silently-clobbering duplicate keys. encoding/json's Unmarshal keeps only
// the last occurrence of a repeated object key, which would let a second
// "command" or "identity" key silently override the first; spec.md 4.6
// requires a deterministic "duplicate field `<name>`" rejection instead.
package strictjson

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/oxhq/identedit/internal/apperr"
)

// CheckDuplicateKeys walks data's token stream (recursively, through
// nested objects and arrays) and returns an invalid_request error naming
// the first duplicate key found, or nil if every object in the document
// has distinct keys at its own nesting level.
func CheckDuplicateKeys(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	return checkValue(dec)
}

// checkValue consumes exactly one JSON value (scalar, object, or array)
// from dec and reports the first duplicate object key found within it.
func checkValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return nil // malformed JSON is left to the caller's own Unmarshal to report
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil
	}
	switch delim {
	case '{':
		seen := make(map[string]bool)
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil
			}
			key, _ := keyTok.(string)
			if seen[key] {
				return apperr.New(apperr.InvalidRequest, fmt.Sprintf("duplicate field `%s`", key))
			}
			seen[key] = true
			if err := checkValue(dec); err != nil {
				return err
			}
		}
		_, _ = dec.Token() // closing '}'
	case '[':
		for dec.More() {
			if err := checkValue(dec); err != nil {
				return err
			}
		}
		_, _ = dec.Token() // closing ']'
	}
	return nil
}
