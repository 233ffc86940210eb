// File path: internal/llm/providers/local.go
package providers

import (
	"context"
	"strings"
	"sync"
)

// LocalProvider is an offline stand-in used when no API key is configured
// and throughout the test suite. Responses can be scripted per prompt
// substring; unmatched prompts get a deterministic echo.
type LocalProvider struct {
	mu      sync.Mutex
	scripts []localScript
	calls   int
}

type localScript struct {
	match string
	text  string
	err   error
}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

// Script registers a canned response for prompts whose user content
// contains match. Scripts are consulted in registration order.
func (l *LocalProvider) Script(match, text string) *LocalProvider {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scripts = append(l.scripts, localScript{match: match, text: text})
	return l
}

// ScriptError registers a canned failure for prompts containing match.
func (l *LocalProvider) ScriptError(match string, err error) *LocalProvider {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scripts = append(l.scripts, localScript{match: match, err: err})
	return l
}

// Calls reports how many completions have been requested.
func (l *LocalProvider) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func (l *LocalProvider) Name() string { return "local" }

func (l *LocalProvider) Complete(ctx context.Context, prompt Prompt) (Completion, error) {
	if err := ctx.Err(); err != nil {
		return Completion{}, err
	}
	if strings.TrimSpace(prompt.User) == "" {
		return Completion{}, ErrEmptyPrompt
	}
	l.mu.Lock()
	l.calls++
	scripts := l.scripts
	l.mu.Unlock()
	for _, script := range scripts {
		if strings.Contains(prompt.User, script.match) {
			if script.err != nil {
				return Completion{}, script.err
			}
			return Completion{Text: script.text}, nil
		}
	}
	return Completion{Text: "[local-stub] " + strings.TrimSpace(prompt.User)}, nil
}
