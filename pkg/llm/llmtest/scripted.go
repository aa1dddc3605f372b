// Package llmtest provides an in-memory LLM backend for tests.
package llmtest

import (
	"context"
	"errors"
	"sync"

	"ai-docrouter-be/pkg/llm"
)

var ErrScriptExhausted = errors.New("llmtest: no scripted reply left")

// Reply is one canned answer. Err takes precedence over Content.
type Reply struct {
	Content string
	Err     error
}

// ScriptedProvider answers Generate and Chat calls from a queue of replies in
// order and records every prompt it was given.
type ScriptedProvider struct {
	mu      sync.Mutex
	replies []Reply
	prompts []string
	options []llm.Options
}

var _ llm.LLMProvider = &ScriptedProvider{}

func NewScriptedProvider(replies ...Reply) *ScriptedProvider {
	return &ScriptedProvider{replies: replies}
}

// Text is shorthand for a successful reply.
func Text(content string) Reply {
	return Reply{Content: content}
}

// Fail is shorthand for a transport-level failure.
func Fail(err error) Reply {
	return Reply{Err: err}
}

func (p *ScriptedProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	var prompt string
	if len(history) > 0 {
		prompt = history[len(history)-1].Content
	}
	return p.Generate(ctx, prompt, opts...)
}

func (p *ScriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	options := llm.Options{}
	for _, o := range opts {
		o(&options)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.prompts = append(p.prompts, prompt)
	p.options = append(p.options, options)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(p.replies) == 0 {
		return "", ErrScriptExhausted
	}
	r := p.replies[0]
	p.replies = p.replies[1:]
	if r.Err != nil {
		return "", r.Err
	}
	return r.Content, nil
}

func (p *ScriptedProvider) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.prompts...)
}

func (p *ScriptedProvider) Options() []llm.Options {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]llm.Options(nil), p.options...)
}
