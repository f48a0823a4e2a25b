package config

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// ServerSettings is the free-form key/value map forwarded to the server as
// --key=value flags. Keys keep the order they were read in.
type ServerSettings struct {
	m *orderedmap.OrderedMap[string, any]
}

// NewServerSettings creates an empty settings map
func NewServerSettings() *ServerSettings {
	return &ServerSettings{m: orderedmap.New[string, any]()}
}

func (s *ServerSettings) init() {
	if s.m == nil {
		s.m = orderedmap.New[string, any]()
	}
}

// Set adds or replaces key, keeping its original position on replace
func (s *ServerSettings) Set(key string, value any) {
	s.init()
	s.m.Set(key, value)
}

// Get returns the value stored for key
func (s *ServerSettings) Get(key string) (any, bool) {
	if s == nil || s.m == nil {
		return nil, false
	}
	return s.m.Get(key)
}

// Delete removes key
func (s *ServerSettings) Delete(key string) {
	if s == nil || s.m == nil {
		return
	}
	s.m.Delete(key)
}

// Len returns the number of entries
func (s *ServerSettings) Len() int {
	if s == nil || s.m == nil {
		return 0
	}
	return s.m.Len()
}

// Each calls fn for every entry in insertion order
func (s *ServerSettings) Each(fn func(key string, value any)) {
	if s == nil || s.m == nil {
		return
	}
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Keys returns the keys in insertion order
func (s *ServerSettings) Keys() []string {
	keys := make([]string, 0, s.Len())
	s.Each(func(key string, _ any) {
		keys = append(keys, key)
	})
	return keys
}

// Clone returns a shallow copy; values are scalars
func (s *ServerSettings) Clone() *ServerSettings {
	if s == nil {
		return nil
	}
	out := NewServerSettings()
	s.Each(func(key string, value any) {
		out.Set(key, value)
	})
	return out
}

func (s *ServerSettings) MarshalJSON() ([]byte, error) {
	if s == nil || s.m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.m)
}

func (s *ServerSettings) UnmarshalJSON(data []byte) error {
	m := orderedmap.New[string, any]()
	if err := json.Unmarshal(data, m); err != nil {
		return err
	}
	s.m = m
	return nil
}

// MarshalYAML emits a mapping node in insertion order
func (s *ServerSettings) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	var encodeErr error
	s.Each(func(key string, value any) {
		if encodeErr != nil {
			return
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(value); err != nil {
			encodeErr = fmt.Errorf("encode serverConfig.%s: %w", key, err)
			return
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
			valueNode)
	})
	if encodeErr != nil {
		return nil, encodeErr
	}
	return node, nil
}

// UnmarshalYAML reads a mapping node preserving key order
func (s *ServerSettings) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("serverConfig: expected a mapping, got line %d", node.Line)
	}
	m := orderedmap.New[string, any]()
	for i := 0; i+1 < len(node.Content); i += 2 {
		var key string
		if err := node.Content[i].Decode(&key); err != nil {
			return fmt.Errorf("serverConfig key at line %d: %w", node.Content[i].Line, err)
		}
		var value any
		if err := node.Content[i+1].Decode(&value); err != nil {
			return fmt.Errorf("serverConfig.%s: %w", key, err)
		}
		m.Set(key, value)
	}
	s.m = m
	return nil
}
