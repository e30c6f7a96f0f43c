package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/originlens/backend/internal/domain"
)

func testAttrs(country string) *domain.Attributes {
	attrs := domain.DefaultAttributes()
	attrs.Country = domain.ListAttribute{Value: domain.StringList{country}, Evidence: "label", Confidence: 0.9}
	return attrs
}

func TestLRU_AddAndGet(t *testing.T) {
	c := NewLRU(10)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() on empty cache reported a hit")
	}

	c.Add("key-1", testAttrs("JP"))

	got, ok := c.Get("key-1")
	if !ok {
		t.Fatal("Get() after Add() reported a miss")
	}
	if got.Country.Value[0] != "JP" {
		t.Errorf("cached country = %q, want JP", got.Country.Value[0])
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestLRU_GetReturnsCopy(t *testing.T) {
	c := NewLRU(10)
	c.Add("key-1", testAttrs("JP"))

	first, _ := c.Get("key-1")
	first.Country.Value[0] = "CN"
	first.Size.Value = "XL"

	second, _ := c.Get("key-1")
	if second.Country.Value[0] != "JP" {
		t.Error("mutating a Get() result leaked into the cache")
	}
	if second.Size.Value != domain.NoneValue {
		t.Error("mutating a Get() result leaked into the cache")
	}
}

func TestLRU_AddCopiesInput(t *testing.T) {
	c := NewLRU(10)
	attrs := testAttrs("JP")
	c.Add("key-1", attrs)

	attrs.Country.Value[0] = "CN"

	got, _ := c.Get("key-1")
	if got.Country.Value[0] != "JP" {
		t.Error("mutating the Add() argument leaked into the cache")
	}
}

func TestLRU_Overwrite(t *testing.T) {
	c := NewLRU(10)
	c.Add("key-1", testAttrs("JP"))
	c.Add("key-1", testAttrs("CN"))

	got, _ := c.Get("key-1")
	if got.Country.Value[0] != "CN" {
		t.Errorf("country after overwrite = %q, want CN", got.Country.Value[0])
	}
	if c.Len() != 1 {
		t.Errorf("Len() after overwrite = %d, want 1", c.Len())
	}
}

func TestLRU_EvictsOldest(t *testing.T) {
	c := NewLRU(3)

	c.Add("a", testAttrs("JP"))
	c.Add("b", testAttrs("CN"))
	c.Add("c", testAttrs("VN"))
	c.Add("d", testAttrs("US"))

	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry survived insertion past the bound")
	}
	for _, key := range []string{"b", "c", "d"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("entry %q evicted unexpectedly", key)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestLRU_GetPromotes(t *testing.T) {
	c := NewLRU(3)

	c.Add("a", testAttrs("JP"))
	c.Add("b", testAttrs("CN"))
	c.Add("c", testAttrs("VN"))

	// Touch "a" so "b" becomes the eviction candidate.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("Get(a) missed")
	}

	c.Add("d", testAttrs("US"))

	if _, ok := c.Get("a"); !ok {
		t.Error("promoted entry was evicted")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry survived")
	}
}

func TestLRU_Clear(t *testing.T) {
	c := NewLRU(10)
	c.Add("a", testAttrs("JP"))
	c.Add("b", testAttrs("CN"))

	if removed := c.Clear(); removed != 2 {
		t.Errorf("Clear() = %d, want 2", removed)
	}
	if c.Len() != 0 {
		t.Errorf("Len() after Clear() = %d, want 0", c.Len())
	}
	if removed := c.Clear(); removed != 0 {
		t.Errorf("second Clear() = %d, want 0", removed)
	}

	// Cache stays usable after clearing.
	c.Add("a", testAttrs("JP"))
	if _, ok := c.Get("a"); !ok {
		t.Error("Get() after Clear()+Add() missed")
	}
}

func TestLRU_DefaultBound(t *testing.T) {
	for _, size := range []int{0, -5} {
		c := NewLRU(size)
		if c.maxEntries != DefaultMaxEntries {
			t.Errorf("NewLRU(%d) bound = %d, want %d", size, c.maxEntries, DefaultMaxEntries)
		}
	}
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c := NewLRU(50)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("key-%d-%d", g, i%20)
				c.Add(key, testAttrs("JP"))
				c.Get(key)
				if i%10 == 0 {
					c.Len()
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Len() = %d, bound is 50", c.Len())
	}
}
