package site

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Locale is a (code, display name) pair. It is encoded as a two-element
// array, e.g. ["zh-CN", "中文"], which is the generator's tuple form.
type Locale struct {
	Code  string
	Label string
}

// MarshalJSON encodes the locale as [code, label].
func (l Locale) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{l.Code, l.Label})
}

// UnmarshalJSON decodes a [code, label] pair.
func (l *Locale) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("locale must be a [code, label] pair: %w", err)
	}
	return l.fromPair(pair)
}

// MarshalYAML encodes the locale as a flow sequence [code, label].
func (l Locale) MarshalYAML() (any, error) {
	return &yaml.Node{
		Kind:  yaml.SequenceNode,
		Style: yaml.FlowStyle,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: l.Code},
			{Kind: yaml.ScalarNode, Value: l.Label},
		},
	}, nil
}

// UnmarshalYAML decodes a [code, label] pair.
func (l *Locale) UnmarshalYAML(value *yaml.Node) error {
	var pair []string
	if err := value.Decode(&pair); err != nil {
		return fmt.Errorf("locale must be a [code, label] pair: %w", err)
	}
	return l.fromPair(pair)
}

func (l *Locale) fromPair(pair []string) error {
	if len(pair) != 2 {
		return fmt.Errorf("locale must have exactly 2 elements, got %d", len(pair))
	}
	l.Code, l.Label = pair[0], pair[1]
	return nil
}

func (l Locale) String() string {
	return l.Code + " (" + l.Label + ")"
}
