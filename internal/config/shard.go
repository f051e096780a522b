package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Shard selects one 1-based segment out of Total
type Shard struct {
	Current int `yaml:"current"`
	Total   int `yaml:"total"`
}

// ParseShard parses "current/total"
func ParseShard(s string) (*Shard, error) {
	cur, total, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return nil, invalidf("shard %q must be in the form current/total", s)
	}
	c, err := strconv.Atoi(cur)
	if err != nil {
		return nil, invalidf("shard %q: bad current index", s)
	}
	t, err := strconv.Atoi(total)
	if err != nil {
		return nil, invalidf("shard %q: bad total", s)
	}
	shard := &Shard{Current: c, Total: t}
	if err := shard.Validate(); err != nil {
		return nil, err
	}
	return shard, nil
}

// Validate checks the shard bounds
func (s *Shard) Validate() error {
	if s.Total < 1 {
		return invalidf("shard total must be at least 1, got %d", s.Total)
	}
	if s.Current < 1 || s.Current > s.Total {
		return invalidf("shard current must be between 1 and %d, got %d", s.Total, s.Current)
	}
	return nil
}

func (s *Shard) String() string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("%d/%d", s.Current, s.Total)
}

// UnmarshalYAML accepts both "1/3" and {current: 1, total: 3}
func (s *Shard) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		parsed, err := ParseShard(node.Value)
		if err != nil {
			return err
		}
		*s = *parsed
		return nil
	}
	type plain Shard
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Shard(p)
	return s.Validate()
}
