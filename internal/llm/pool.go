package llm

import (
	"container/list"
	"context"
	"fmt"
	"sync"
)

// BoundChat is a ChatModel fixed to one (model, temperature) pair. Instances
// are stateless per call and safe to share across concurrent requests.
type BoundChat struct {
	backend     ChatModel
	model       string
	temperature float64
}

func (b *BoundChat) Complete(ctx context.Context, maxTokens int, messages []Message) (string, error) {
	return b.backend.Chat(ctx, ChatRequest{
		Model:       b.model,
		Temperature: b.temperature,
		MaxTokens:   maxTokens,
		Messages:    messages,
	})
}

func (b *BoundChat) Model() string { return b.model }

// ClientPool caches BoundChat handles keyed by (model, temperature) with LRU
// eviction. Reuse avoids repeated cold-start cost; it is an optimization, not
// a correctness requirement.
type ClientPool struct {
	mu      sync.Mutex
	max     int
	backend ChatModel
	order   *list.List // front = most recently used
	entries map[poolKey]*list.Element
}

type poolKey struct {
	model       string
	temperature float64
}

type poolEntry struct {
	key   poolKey
	bound *BoundChat
}

func NewClientPool(backend ChatModel, max int) *ClientPool {
	if max <= 0 {
		max = 64
	}
	return &ClientPool{
		max:     max,
		backend: backend,
		order:   list.New(),
		entries: make(map[poolKey]*list.Element),
	}
}

func (p *ClientPool) Get(model string, temperature float64) (*BoundChat, error) {
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	key := poolKey{model: model, temperature: temperature}
	if el, ok := p.entries[key]; ok {
		p.order.MoveToFront(el)
		return el.Value.(*poolEntry).bound, nil
	}

	bound := &BoundChat{backend: p.backend, model: model, temperature: temperature}
	p.entries[key] = p.order.PushFront(&poolEntry{key: key, bound: bound})

	for len(p.entries) > p.max {
		oldest := p.order.Back()
		if oldest == nil {
			break
		}
		p.order.Remove(oldest)
		delete(p.entries, oldest.Value.(*poolEntry).key)
	}
	return bound, nil
}

func (p *ClientPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
