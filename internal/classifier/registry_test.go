package classifier

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/hooptrack/hooptrack/internal/video"
)

type stubClassifier struct {
	ready bool
	inits int32
}

func (s *stubClassifier) Initialize() error {
	atomic.AddInt32(&s.inits, 1)
	s.ready = true
	return nil
}

func (s *stubClassifier) Ready() bool  { return s.ready }
func (s *stubClassifier) Name() string { return "Stub" }

func (s *stubClassifier) Classify(clip *video.Clip) Result {
	return Result{Action: "playing basketball", Confidence: 0.5}
}

func (s *stubClassifier) ActionKeywords() map[string][]string {
	return DefaultActionKeywords()
}

func TestFactoryMemoizesInstances(t *testing.T) {
	registry := NewRegistry()
	constructed := int32(0)
	registry.Register("stub", "Stub", "test classifier", func() Classifier {
		atomic.AddInt32(&constructed, 1)
		return &stubClassifier{}
	})

	factory := NewFactory(registry)

	first, err := factory.Get("stub")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := factory.Get("stub")
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}

	if first != second {
		t.Error("expected the same memoized instance")
	}
	if constructed != 1 {
		t.Errorf("expected one construction, got %d", constructed)
	}
}

func TestFactorySingleFlightInit(t *testing.T) {
	registry := NewRegistry()
	constructed := int32(0)
	registry.Register("stub", "Stub", "test classifier", func() Classifier {
		atomic.AddInt32(&constructed, 1)
		return &stubClassifier{}
	})

	factory := NewFactory(registry)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := factory.Get("stub"); err != nil {
				t.Errorf("Get: %v", err)
			}
		}()
	}
	wg.Wait()

	if constructed != 1 {
		t.Errorf("expected one construction under concurrent first use, got %d", constructed)
	}
}

func TestFactoryUnknownID(t *testing.T) {
	registry := NewRegistry()
	registry.Register("trajectory", "Ball Trajectory", "", func() Classifier {
		return &stubClassifier{}
	})
	registry.Register("caption", "Vision Caption", "", func() Classifier {
		return &stubClassifier{}
	})

	factory := NewFactory(registry)

	_, err := factory.Get("videomae")
	if err == nil {
		t.Fatal("expected an error for an unknown classifier id")
	}
	if !errors.Is(err, ErrUnknown) {
		t.Errorf("expected ErrUnknown, got %v", err)
	}
	// The error must enumerate the valid ids.
	for _, id := range []string{"trajectory", "caption"} {
		if !strings.Contains(err.Error(), id) {
			t.Errorf("expected error to list %q, got %q", id, err.Error())
		}
	}
}

func TestRegistryAvailableSorted(t *testing.T) {
	registry := NewRegistry()
	registry.Register("trajectory", "Ball Trajectory", "", func() Classifier { return &stubClassifier{} })
	registry.Register("caption", "Vision Caption", "", func() Classifier { return &stubClassifier{} })

	ids := registry.Available()
	if len(ids) != 2 || ids[0] != "caption" || ids[1] != "trajectory" {
		t.Errorf("expected sorted ids [caption trajectory], got %v", ids)
	}
}
