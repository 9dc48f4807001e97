package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// PageContext is an insertion-ordered mapping from display labels to
// display values. The prompt builder serializes it line by line, so key
// order is part of the observable behavior and a plain map will not do.
type PageContext struct {
	keys   []string
	values map[string]any
}

// NewPageContext creates an empty context.
func NewPageContext() *PageContext {
	return &PageContext{values: make(map[string]any)}
}

// Set adds or replaces a key. A new key is appended; replacing an existing
// key keeps its original position.
func (c *PageContext) Set(key string, value any) *PageContext {
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
	return c
}

// Get returns the value for key.
func (c *PageContext) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Has reports whether key is present.
func (c *PageContext) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (c *PageContext) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of keys.
func (c *PageContext) Len() int { return len(c.keys) }

// Page returns the "Page" field if set, else "".
func (c *PageContext) Page() string {
	if v, ok := c.values["Page"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Lines renders each pair as "key: value" in insertion order.
func (c *PageContext) Lines() []string {
	lines := make([]string, 0, len(c.keys))
	for _, k := range c.keys {
		lines = append(lines, k+": "+FormatValue(c.values[k]))
	}
	return lines
}

// String renders the context as the newline-joined key/value block that is
// interpolated into prompts.
func (c *PageContext) String() string {
	return strings.Join(c.Lines(), "\n")
}

// MarshalJSON emits an object with keys in insertion order, so the
// grounding inspection endpoints mirror what the prompt sees.
func (c *PageContext) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(c.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FormatValue renders a display value for prompt serialization. Strings
// pass through, slices are comma-joined, everything else falls back to a
// compact fmt rendering.
func FormatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		return strings.Join(t, ", ")
	case fmt.Stringer:
		return t.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
