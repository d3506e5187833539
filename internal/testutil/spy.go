package testutil

import (
	"context"
	"sync"

	"github.com/specialistvlad/extforge/internal/declare"
	"github.com/specialistvlad/extforge/internal/rule"
)

// SpyRule is an executable that records every invocation. It declares one
// required argument, "input", and returns Result or Err.
type SpyRule struct {
	declare.Rule `rule:"Spy" kind:"Validation"`

	Input  string `arg:"input,required"`
	Output string `arg:"output,return"`

	Result any
	Err    error

	mu    sync.Mutex
	calls []map[string]any
}

func (s *SpyRule) Execute(_ context.Context, args *rule.Arguments) (any, error) {
	seen := make(map[string]any, args.Len())
	for _, name := range args.Names() {
		seen[name], _ = args.Raw(name)
	}
	s.mu.Lock()
	s.calls = append(s.calls, seen)
	s.mu.Unlock()
	return s.Result, s.Err
}

// Calls returns the argument bags the spy was invoked with.
func (s *SpyRule) Calls() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.calls...)
}
