// Package keypool rotates provider API keys in round-robin order.
package keypool

import (
	"strings"
	"sync"
)

// Pool hands out keys in configured order. The cursor moves on every call,
// whatever happens to the request made with the key.
type Pool struct {
	mu     sync.Mutex
	keys   []string
	cursor int
}

// New copies keys, dropping blank entries.
func New(keys []string) *Pool {
	clean := make([]string, 0, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			clean = append(clean, k)
		}
	}
	return &Pool{keys: clean}
}

// Next returns the key under the cursor and advances it. ok is false only
// when the pool holds no keys; callers treat that as search being
// unavailable rather than as a transient fault.
func (p *Pool) Next() (key string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.keys) == 0 {
		return "", false
	}
	key = p.keys[p.cursor]
	p.cursor = (p.cursor + 1) % len(p.keys)
	return key, true
}

func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}

// Empty reports whether the pool was configured without keys.
func (p *Pool) Empty() bool {
	return p.Len() == 0
}
