package citation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pverm/zotpdb/internal/zotero"
)

// fakeCollectionAPI counts list and create calls against an in-memory
// collection set.
type fakeCollectionAPI struct {
	collections []zotero.Collection
	listCalls   int
	createCalls int
	listErr     error
	createErr   error
}

func (f *fakeCollectionAPI) Collections(ctx context.Context) ([]zotero.Collection, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.collections, nil
}

func (f *fakeCollectionAPI) CreateCollection(ctx context.Context, name string) (string, error) {
	f.createCalls++
	if f.createErr != nil {
		return "", f.createErr
	}
	key := fmt.Sprintf("NEW%d", f.createCalls)
	f.collections = append(f.collections, zotero.Collection{Key: key, Name: name})
	return key, nil
}

func TestResolve_ExistingCollection(t *testing.T) {
	api := &fakeCollectionAPI{collections: []zotero.Collection{
		{Key: "COL1", Name: "Papers"},
		{Key: "COL2", Name: "PDB Structures"},
	}}
	resolver := NewResolver(api)

	key, err := resolver.Resolve(context.Background(), "PDB Structures")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if key != "COL2" {
		t.Errorf("key = %q, want COL2", key)
	}
	if api.createCalls != 0 {
		t.Errorf("createCalls = %d, want 0", api.createCalls)
	}
}

func TestResolve_CachedNameCostsNothing(t *testing.T) {
	api := &fakeCollectionAPI{collections: []zotero.Collection{{Key: "COL1", Name: "Papers"}}}
	resolver := NewResolver(api)

	if _, err := resolver.Resolve(context.Background(), "Papers"); err != nil {
		t.Fatalf("first Resolve() error = %v", err)
	}
	listAfterFirst := api.listCalls

	key, err := resolver.Resolve(context.Background(), "Papers")
	if err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}
	if key != "COL1" {
		t.Errorf("key = %q, want COL1", key)
	}
	if api.listCalls != listAfterFirst || api.createCalls != 0 {
		t.Errorf("second resolve hit the network: list=%d create=%d", api.listCalls, api.createCalls)
	}
}

func TestResolve_CreatesMissingOnce(t *testing.T) {
	api := &fakeCollectionAPI{}
	resolver := NewResolver(api)

	first, err := resolver.Resolve(context.Background(), "X")
	if err != nil {
		t.Fatalf("first Resolve() error = %v", err)
	}
	second, err := resolver.Resolve(context.Background(), "X")
	if err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}

	if first != second {
		t.Errorf("keys differ: %q vs %q", first, second)
	}
	if api.createCalls != 1 {
		t.Errorf("createCalls = %d, want exactly 1", api.createCalls)
	}
}

// TestResolve_ListingWarmsTheCache checks that one listing caches every
// collection, so resolving a second known name costs no further calls.
func TestResolve_ListingWarmsTheCache(t *testing.T) {
	api := &fakeCollectionAPI{collections: []zotero.Collection{
		{Key: "COL1", Name: "A"},
		{Key: "COL2", Name: "B"},
	}}
	resolver := NewResolver(api)

	if _, err := resolver.Resolve(context.Background(), "A"); err != nil {
		t.Fatalf("Resolve(A) error = %v", err)
	}
	if _, err := resolver.Resolve(context.Background(), "B"); err != nil {
		t.Fatalf("Resolve(B) error = %v", err)
	}
	if api.listCalls != 1 {
		t.Errorf("listCalls = %d, want 1", api.listCalls)
	}
}

func TestResolve_PropagatesErrors(t *testing.T) {
	listErr := errors.New("list failed")
	api := &fakeCollectionAPI{listErr: listErr}
	resolver := NewResolver(api)

	if _, err := resolver.Resolve(context.Background(), "X"); !errors.Is(err, listErr) {
		t.Errorf("error = %v, want %v", err, listErr)
	}

	createErr := errors.New("create failed")
	api = &fakeCollectionAPI{createErr: createErr}
	resolver = NewResolver(api)

	if _, err := resolver.Resolve(context.Background(), "X"); !errors.Is(err, createErr) {
		t.Errorf("error = %v, want %v", err, createErr)
	}
}
