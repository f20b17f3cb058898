package geo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iancoleman/orderedmap"
)

// Member is a single "key": value pair of a JSON object, value kept verbatim.
type Member struct {
	Key   string
	Value json.RawMessage
}

// Members holds object members in document order. GeoJSON objects use it
// for foreign members (name, crs, ...) that have no dedicated field.
type Members []Member

// Clone returns a copy that shares no memory with m.
func (m Members) Clone() Members {
	if m == nil {
		return nil
	}
	out := make(Members, len(m))
	for i, e := range m {
		out[i] = Member{Key: e.Key, Value: bytes.Clone(e.Value)}
	}
	return out
}

// Get returns the raw value of the first member named key.
func (m Members) Get(key string) (json.RawMessage, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// splitMembers breaks a JSON object into its members in document order.
// A JSON null yields no members.
func splitMembers(data []byte) (Members, error) {
	if isNull(data) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var out Members
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out = append(out, Member{Key: key, Value: raw})
	}

	// closing brace
	_, err = dec.Token()
	return out, err
}

// joinMembers encodes known members followed by foreign ones as a JSON object.
// Foreign members that shadow a known key are skipped.
func joinMembers(known, foreign Members) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	write := func(m Member) error {
		key, err := json.Marshal(m.Key)
		if err != nil {
			return err
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(m.Value)
		return nil
	}

	for _, m := range known {
		if err := write(m); err != nil {
			return nil, err
		}
	}
	for _, m := range foreign {
		if _, shadowed := known.Get(m.Key); shadowed {
			continue
		}
		if err := write(m); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// member marshals v under key.
func member(key string, v interface{}) (Member, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Member{}, fmt.Errorf("%s: %w", key, err)
	}
	return Member{Key: key, Value: raw}, nil
}

// decodeValue decodes arbitrary JSON keeping numbers as json.Number literals
// and objects as *orderedmap.OrderedMap in key order, so integers beyond
// float64 precision and key order both survive a round-trip.
func decodeValue(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := readValue(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("unexpected data after value")
	}
	return v, nil
}

func readValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	d, ok := tok.(json.Delim)
	if !ok {
		// string, json.Number, bool or nil
		return tok, nil
	}

	switch d {
	case '{':
		obj := orderedmap.New()
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := kt.(string)

			v, err := readValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil

	case '[':
		arr := []interface{}{}
		for dec.More() {
			v, err := readValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}

	return nil, fmt.Errorf("unexpected delimiter %q", d)
}
