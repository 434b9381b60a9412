package classifier

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrUnknown is wrapped by Factory.Get for unregistered classifier ids.
var ErrUnknown = errors.New("unknown classifier")

// Info describes a registered classifier for listing endpoints.
type Info struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type entry struct {
	info        Info
	constructor func() Classifier
}

// Registry associates classifier ids with zero-argument constructors. It is
// populated once at process start and read-only afterwards.
type Registry struct {
	entries map[string]entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

func (r *Registry) Register(id, name, description string, constructor func() Classifier) {
	r.entries[id] = entry{
		info:        Info{ID: id, Name: name, Description: description},
		constructor: constructor,
	}
}

func (r *Registry) IsRegistered(id string) bool {
	_, ok := r.entries[id]
	return ok
}

// Available returns the registered ids in stable order.
func (r *Registry) Available() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registry) List() []Info {
	infos := make([]Info, 0, len(r.entries))
	for _, id := range r.Available() {
		infos = append(infos, r.entries[id].info)
	}
	return infos
}

// Factory constructs and memoizes at most one live instance per classifier
// id. Construction and initialization run once even when concurrent requests
// race for the same id.
type Factory struct {
	registry *Registry
	group    singleflight.Group

	mu        sync.RWMutex
	instances map[string]Classifier
}

func NewFactory(registry *Registry) *Factory {
	return &Factory{
		registry:  registry,
		instances: make(map[string]Classifier),
	}
}

// Get returns the memoized instance for id, constructing and initializing it
// on first use. Unknown ids fail with the list of valid ones.
func (f *Factory) Get(id string) (Classifier, error) {
	f.mu.RLock()
	if c, ok := f.instances[id]; ok {
		f.mu.RUnlock()
		return c, nil
	}
	f.mu.RUnlock()

	e, ok := f.registry.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)",
			ErrUnknown, id, strings.Join(f.registry.Available(), ", "))
	}

	v, err, _ := f.group.Do(id, func() (interface{}, error) {
		f.mu.RLock()
		if c, ok := f.instances[id]; ok {
			f.mu.RUnlock()
			return c, nil
		}
		f.mu.RUnlock()

		c := e.constructor()
		if err := c.Initialize(); err != nil {
			return nil, fmt.Errorf("initialize classifier %q: %w", id, err)
		}

		f.mu.Lock()
		f.instances[id] = c
		f.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Classifier), nil
}
