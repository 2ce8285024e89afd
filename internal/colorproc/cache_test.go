package colorproc

import (
	"errors"
	"math"
	"sync"
	"testing"
)

type identityProcessor struct{}

func (identityProcessor) Convert(c Color) Color { return c }

func TestCacheMemoizesConstruction(t *testing.T) {
	builds := 0
	cache, err := NewCache(func(Transform) (Processor, error) {
		builds++
		return identityProcessor{}, nil
	})
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	tf := Transform{ConfigID: "ocio", InputSpace: "srgb", OutputSpace: "linear"}
	for i := 0; i < 5; i++ {
		if _, err := cache.Get(tf); err != nil {
			t.Fatalf("get: %v", err)
		}
	}
	if builds != 1 {
		t.Fatalf("expected 1 construction, got %d", builds)
	}
	if cache.Len() != 1 {
		t.Fatalf("cache len = %d, want 1", cache.Len())
	}
}

func TestCacheDistinguishesDescriptors(t *testing.T) {
	cache, err := NewCache(func(Transform) (Processor, error) {
		return identityProcessor{}, nil
	})
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	// Field boundaries matter: these must not alias.
	if _, err := cache.Get(Transform{InputSpace: "ab", OutputSpace: "c"}); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := cache.Get(Transform{InputSpace: "a", OutputSpace: "bc"}); err != nil {
		t.Fatalf("get: %v", err)
	}
	if cache.Len() != 2 {
		t.Fatalf("cache len = %d, want 2", cache.Len())
	}
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	attempts := 0
	cache, err := NewCache(func(Transform) (Processor, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("config not ready")
		}
		return identityProcessor{}, nil
	})
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	tf := Transform{ConfigID: "late"}
	if _, err := cache.Get(tf); err == nil {
		t.Fatal("first get should fail")
	}
	if _, err := cache.Get(tf); err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	cache, err := NewCache(func(Transform) (Processor, error) {
		return identityProcessor{}, nil
	})
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Get(Transform{ConfigID: "shared"}); err != nil {
				t.Errorf("get: %v", err)
			}
		}()
	}
	wg.Wait()
	if cache.Len() != 1 {
		t.Fatalf("cache len = %d, want 1", cache.Len())
	}
}

func TestCacheClear(t *testing.T) {
	cache, err := NewCache(func(Transform) (Processor, error) {
		return identityProcessor{}, nil
	})
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	if _, err := cache.Get(Transform{}); err != nil {
		t.Fatalf("get: %v", err)
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Fatalf("cache len after clear = %d", cache.Len())
	}
}

func TestColorHSVRoundTrip(t *testing.T) {
	orig := Color{R: 0.8, G: 0.3, B: 0.1, A: 1}
	h, s, v := orig.ToHSV()
	back := FromHSV(h, s, v)
	const eps = 1e-9
	if math.Abs(back.R-orig.R) > eps || math.Abs(back.G-orig.G) > eps || math.Abs(back.B-orig.B) > eps {
		t.Fatalf("hsv round trip drifted: %+v -> %+v", orig, back)
	}
}

func TestColorHSLGray(t *testing.T) {
	h, s, l := (Color{R: 0.5, G: 0.5, B: 0.5}).ToHSL()
	if h != 0 || s != 0 || l != 0.5 {
		t.Fatalf("gray hsl = %v %v %v, want 0 0 0.5", h, s, l)
	}
}
