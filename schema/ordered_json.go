package schema

import (
	"encoding/json"
	"fmt"
)

// orderedPair is one key/value entry of a JSON object, in the order it
// appeared in the source document.
type orderedPair struct {
	Key   string
	Value interface{}
}

// orderedObject is a JSON object decoded with its key order preserved.
// encoding/json's map[string]interface{} would lose that order, which
// would make codegen output (and duplicate-name error messages) vary
// nondeterministically between runs.
type orderedObject []orderedPair

// decodeOrdered reads one JSON value from dec, returning an orderedObject
// for `{...}`, a string/bool/float64 for scalars, or an error for arrays
// (not a legal shape anywhere in the schema DSL).
func decodeOrdered(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeOrderedValue(dec, tok)
}

func decodeOrderedValue(dec *json.Decoder, tok json.Token) (interface{}, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			var obj orderedObject
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is not a string: %v", keyTok)
				}
				val, err := decodeOrdered(dec)
				if err != nil {
					return nil, err
				}
				obj = append(obj, orderedPair{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return obj, nil
		case '[':
			return nil, fmt.Errorf("arrays are not a valid schema shape")
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	default:
		return tok, nil
	}
}
