// Package approval decides which tool invocations may run without a
// confirm/allow round-trip with the client.
package approval

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Policy matches tool names against a list of glob patterns. An empty policy
// approves nothing automatically, so every tool call goes through the
// interactive gate.
type Policy struct {
	patterns []string
}

// NewPolicy validates each pattern and returns a Policy. Tool names are
// matched as opaque strings; `/` separators let servers namespace their tools
// (e.g. "fs/read_*").
func NewPolicy(patterns []string) (*Policy, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid auto-approve pattern %q", p)
		}
	}
	return &Policy{patterns: append([]string(nil), patterns...)}, nil
}

// AutoApproved reports whether tool may run without asking the client.
func (p *Policy) AutoApproved(tool string) bool {
	if p == nil {
		return false
	}
	for _, pat := range p.patterns {
		ok, err := doublestar.Match(pat, tool)
		if err == nil && ok {
			return true
		}
	}
	return false
}
