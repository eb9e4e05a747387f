package engine

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecentComments_SecondSubmissionNotUnique(t *testing.T) {
	recent := NewRecentComments(10)
	assert.True(t, recent.IsUnique("a brand new comment"))
	assert.False(t, recent.IsUnique("a brand new comment"))
}

func TestRecentComments_NormalizesBeforeHashing(t *testing.T) {
	recent := NewRecentComments(10)
	assert.True(t, recent.IsUnique("Hello   World"))
	assert.False(t, recent.IsUnique("hello world"))
	assert.False(t, recent.IsUnique("  HELLO\nWORLD  "))
}

func TestRecentComments_WindowEviction(t *testing.T) {
	recent := NewRecentComments(3)
	assert.True(t, recent.IsUnique("one"))
	assert.True(t, recent.IsUnique("two"))
	assert.True(t, recent.IsUnique("three"))
	// "one" is the oldest entry; adding a fourth evicts it.
	assert.True(t, recent.IsUnique("four"))
	assert.True(t, recent.IsUnique("one"))
}

func TestRecentComments_ConcurrentAccess(t *testing.T) {
	recent := NewRecentComments(100)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			recent.IsUnique(fmt.Sprintf("comment %d", n))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		assert.False(t, recent.IsUnique(fmt.Sprintf("comment %d", i)))
	}
}
