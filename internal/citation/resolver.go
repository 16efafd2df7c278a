package citation

import (
	"context"
	"sync"

	"github.com/pverm/zotpdb/internal/zotero"
)

// CollectionAPI is the collection surface of the library client used by
// the resolver.
type CollectionAPI interface {
	Collections(ctx context.Context) ([]zotero.Collection, error)
	CreateCollection(ctx context.Context, name string) (string, error)
}

// Resolver maps collection names to keys, creating collections that do
// not exist yet. Resolved names are cached for the resolver's lifetime.
//
// The cache is safe for concurrent use, but the list-then-create path is
// not serialized: two concurrent resolves of the same uncached name can
// each create the collection remotely. Callers that need exactly-once
// creation must serialize.
type Resolver struct {
	api   CollectionAPI
	mu    sync.Mutex
	cache map[string]string
}

// NewResolver creates a Resolver backed by the given collection API.
func NewResolver(api CollectionAPI) *Resolver {
	return &Resolver{api: api, cache: make(map[string]string)}
}

// Resolve returns the key of the named collection. A cached name costs
// no network calls; a miss lists the library's collections (caching all
// of them) and creates the collection only if the name is still absent.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	if key, ok := r.lookup(name); ok {
		return key, nil
	}

	cols, err := r.api.Collections(ctx)
	if err != nil {
		return "", err
	}
	for _, col := range cols {
		r.remember(col.Name, col.Key)
	}
	if key, ok := r.lookup(name); ok {
		return key, nil
	}

	key, err := r.api.CreateCollection(ctx, name)
	if err != nil {
		return "", err
	}
	r.remember(name, key)
	return key, nil
}

func (r *Resolver) lookup(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.cache[name]
	return key, ok
}

func (r *Resolver) remember(name, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[name] = key
}
