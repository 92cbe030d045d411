package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialIDs_Sequence(t *testing.T) {
	ids := NewSequentialIDs("b")
	assert.Equal(t, int64(0), ids.Current())
	assert.Equal(t, "b-0001", ids.Generate())
	assert.Equal(t, "b-0002", ids.Generate())
	assert.Equal(t, int64(2), ids.Current())
}

func TestSequentialIDs_DefaultPrefix(t *testing.T) {
	assert.Equal(t, "build-0001", NewSequentialIDs("").Generate())
}

func TestSequentialIDs_Reset(t *testing.T) {
	ids := NewSequentialIDs("b")
	ids.Generate()
	ids.Generate()
	ids.Reset()
	assert.Equal(t, "b-0001", ids.Generate())
}

func TestSequentialIDs_Concurrent(t *testing.T) {
	ids := NewSequentialIDs("b")
	const n = 50

	var wg sync.WaitGroup
	seen := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- ids.Generate()
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[string]bool{}
	for id := range seen {
		unique[id] = true
	}
	require.Len(t, unique, n)
	assert.Equal(t, int64(n), ids.Current())
}
