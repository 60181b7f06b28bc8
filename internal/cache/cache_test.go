package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type CacheTestSuite struct {
	suite.Suite
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func (suite *CacheTestSuite) TestGetMissingKey() {
	c := New[string](time.Minute)
	suite.True(c.Get("absent").IsNone())
}

func (suite *CacheTestSuite) TestSetAndGet() {
	c := New[int](time.Minute)
	c.Set("a", 42)

	got := c.Get("a")
	suite.True(got.IsSome())
	suite.Equal(42, got.Unwrap())
}

func (suite *CacheTestSuite) TestExpiry() {
	c := New[string](time.Minute)

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	current := base
	c.now = func() time.Time { return current }

	c.Set("quote", "fresh")

	current = base.Add(59 * time.Second)
	suite.True(c.Get("quote").IsSome())

	current = base.Add(61 * time.Second)
	suite.True(c.Get("quote").IsNone())

	// The expired entry is dropped on read.
	suite.Equal(0, c.Len())
}

func (suite *CacheTestSuite) TestSetRefreshesExpiry() {
	c := New[string](time.Minute)

	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	current := base
	c.now = func() time.Time { return current }

	c.Set("quote", "v1")

	current = base.Add(50 * time.Second)
	c.Set("quote", "v2")

	current = base.Add(90 * time.Second)
	got := c.Get("quote")
	suite.True(got.IsSome())
	suite.Equal("v2", got.Unwrap())
}

func (suite *CacheTestSuite) TestRemove() {
	c := New[int](time.Minute)
	c.Set("a", 1)
	c.Remove("a")
	suite.True(c.Get("a").IsNone())
}

func (suite *CacheTestSuite) TestReset() {
	c := New[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Reset()
	suite.Equal(0, c.Len())
	suite.True(c.Get("a").IsNone())
	suite.True(c.Get("b").IsNone())
}

func (suite *CacheTestSuite) TestConcurrentAccess() {
	c := New[int](time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			key := fmt.Sprintf("key-%d", n%10)
			c.Set(key, n)
			c.Get(key)
			c.Remove(key)
			c.Set(key, n)
		}(i)
	}

	wg.Wait()
	suite.Equal(10, c.Len())
}
