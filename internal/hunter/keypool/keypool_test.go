package keypool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RoundRobin(t *testing.T) {
	p := New([]string{"k1", "k2", "k3"})

	var got []string
	for i := 0; i < 4; i++ {
		k, ok := p.Next()
		require.True(t, ok)
		got = append(got, k)
	}

	assert.Equal(t, []string{"k1", "k2", "k3", "k1"}, got)
}

func TestPool_Empty(t *testing.T) {
	tests := []struct {
		name string
		keys []string
	}{
		{name: "nil", keys: nil},
		{name: "blank entries only", keys: []string{"", "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.keys)
			k, ok := p.Next()
			assert.False(t, ok)
			assert.Empty(t, k)
			assert.True(t, p.Empty())
			assert.Equal(t, 0, p.Len())
		})
	}
}

func TestPool_TrimsKeys(t *testing.T) {
	p := New([]string{" a ", "", "b"})
	assert.Equal(t, 2, p.Len())

	k, _ := p.Next()
	assert.Equal(t, "a", k)
}

func TestPool_DoesNotAliasInput(t *testing.T) {
	keys := []string{"a", "b"}
	p := New(keys)
	keys[0] = "changed"

	k, _ := p.Next()
	assert.Equal(t, "a", k)
}

func TestPool_ConcurrentNextIsFair(t *testing.T) {
	const (
		size    = 4
		rounds  = 250
		workers = 8
	)
	p := New([]string{"a", "b", "c", "d"})

	var (
		mu     sync.Mutex
		counts = map[string]int{}
		wg     sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < size*rounds/workers; i++ {
				k, ok := p.Next()
				assert.True(t, ok)
				mu.Lock()
				counts[k]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// size*rounds calls over size keys: each key handed out exactly rounds times.
	for _, k := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, rounds, counts[k], k)
	}
	next, _ := p.Next()
	assert.Equal(t, "a", next)
}
