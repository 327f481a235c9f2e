package osm

import (
	"context"
	"errors"
	"testing"

	"github.com/ninowalker/open-streetmap-mcp/pkg/geo"
)

// fakeSearcher returns canned results per category and records the
// order of categories it was asked for.
type fakeSearcher struct {
	results map[string][]Element
	errs    map[string]error
	calls   []string
}

func (f *fakeSearcher) SearchFeaturesByCategory(_ context.Context, _ geo.BoundingBox, category string, _ []string) ([]Element, error) {
	f.calls = append(f.calls, category)
	if err := f.errs[category]; err != nil {
		return nil, err
	}
	return f.results[category], nil
}

func TestCategoryExplorerVisitsAllInOrder(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]Element{
			"amenity": {{ID: 1, Type: "node", Tags: map[string]string{"amenity": "cafe"}}},
		},
	}
	explorer := NewCategoryExplorer(searcher, geo.BoundingBox{}, nil)

	if explorer.Len() != len(ExploreCategories) {
		t.Fatalf("Len() = %d, want %d", explorer.Len(), len(ExploreCategories))
	}

	var steps []CategoryStep
	for {
		step, ok := explorer.Next(context.Background())
		if !ok {
			break
		}
		steps = append(steps, step)
	}

	if len(steps) != len(ExploreCategories) {
		t.Fatalf("visited %d categories, want %d", len(steps), len(ExploreCategories))
	}
	for i, step := range steps {
		if step.Category != ExploreCategories[i] {
			t.Errorf("step %d category = %q, want %q", i, step.Category, ExploreCategories[i])
		}
		if step.Index != i {
			t.Errorf("step %d index = %d", i, step.Index)
		}
		if step.Total != len(ExploreCategories) {
			t.Errorf("step %d total = %d, want %d", i, step.Total, len(ExploreCategories))
		}
	}
	if len(steps[0].Features) != 1 {
		t.Errorf("amenity step features = %d, want 1", len(steps[0].Features))
	}
}

func TestCategoryExplorerCarriesErrors(t *testing.T) {
	searchErr := errors.New("overpass unavailable")
	searcher := &fakeSearcher{
		errs: map[string]error{"shop": searchErr},
	}
	explorer := NewCategoryExplorer(searcher, geo.BoundingBox{}, []string{"amenity", "shop", "tourism"})

	var visited, failed int
	for {
		step, ok := explorer.Next(context.Background())
		if !ok {
			break
		}
		visited++
		if step.Err != nil {
			failed++
			if step.Category != "shop" {
				t.Errorf("error carried on category %q, want shop", step.Category)
			}
			if !errors.Is(step.Err, searchErr) {
				t.Errorf("step.Err = %v, want %v", step.Err, searchErr)
			}
		}
	}

	// One category failing must not stop the others.
	if visited != 3 {
		t.Errorf("visited %d categories, want 3", visited)
	}
	if failed != 1 {
		t.Errorf("failed steps = %d, want 1", failed)
	}
}

func TestCategoryExplorerReset(t *testing.T) {
	searcher := &fakeSearcher{}
	explorer := NewCategoryExplorer(searcher, geo.BoundingBox{}, []string{"amenity"})

	if _, ok := explorer.Next(context.Background()); !ok {
		t.Fatal("first Next() = !ok")
	}
	if _, ok := explorer.Next(context.Background()); ok {
		t.Fatal("Next() after exhaustion = ok")
	}

	explorer.Reset()
	if _, ok := explorer.Next(context.Background()); !ok {
		t.Error("Next() after Reset() = !ok")
	}

	if len(searcher.calls) != 2 {
		t.Errorf("searcher called %d times, want 2", len(searcher.calls))
	}
}
