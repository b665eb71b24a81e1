package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EntityGroup is one entity type ("people", "locations", ...) with its names.
type EntityGroup struct {
	Type  string
	Names []string
}

// Entities maps entity type to names. It is encoded as a JSON object, but
// unlike a Go map it keeps the key order of the document it was read from.
type Entities []EntityGroup

// Len returns the total number of names across all groups.
func (e Entities) Len() int {
	n := 0
	for _, g := range e {
		n += len(g.Names)
	}
	return n
}

// Names returns the names recorded for the given type, or nil.
func (e Entities) Names(typ string) []string {
	for _, g := range e {
		if g.Type == typ {
			return g.Names
		}
	}
	return nil
}

// MarshalJSON encodes the groups as a JSON object in slice order.
func (e Entities) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range e {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(g.Type)
		if err != nil {
			return nil, err
		}
		names := g.Names
		if names == nil {
			names = []string{}
		}
		val, err := json.Marshal(names)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of string arrays, preserving key order.
// A repeated key appends to the group that was seen first.
func (e *Entities) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*e = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("key entities: expected object, got %v", tok)
	}

	var groups Entities
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("key entities: expected key, got %v", tok)
		}
		var names []string
		if err := dec.Decode(&names); err != nil {
			return fmt.Errorf("key entities %q: %w", key, err)
		}
		if i, seen := index[key]; seen {
			groups[i].Names = append(groups[i].Names, names...)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, EntityGroup{Type: key, Names: names})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*e = groups
	return nil
}
