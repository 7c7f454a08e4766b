package scanner

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResultSet(t *testing.T) {
	rs := NewResultSet()

	assert.True(t, rs.Add("https://b.example/app.js"))
	assert.False(t, rs.Add("https://b.example/app.js"))
	assert.Equal(t, 2, rs.AddAll([]string{"https://a.example/x.js", "https://b.example/app.js", "https://c.example/y.js"}))

	assert.True(t, rs.Contains("https://a.example/x.js"))
	assert.False(t, rs.Contains("https://d.example/z.js"))
	assert.Equal(t, 3, rs.Len())
	assert.Equal(t, []string{
		"https://a.example/x.js",
		"https://b.example/app.js",
		"https://c.example/y.js",
	}, rs.Sorted())
}

func TestResultSet_Empty(t *testing.T) {
	rs := NewResultSet()
	assert.Equal(t, 0, rs.Len())
	assert.Empty(t, rs.Sorted())
}

func TestResultSet_ConcurrentAdd(t *testing.T) {
	rs := NewResultSet()

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				rs.Add(fmt.Sprintf("https://cdn.example/%d.js", i))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, rs.Len())
}
