package osm

import (
	"context"

	"github.com/ninowalker/open-streetmap-mcp/pkg/geo"
)

// ExploreCategories is the fixed, ordered list of feature categories
// inspected during area exploration.
var ExploreCategories = []string{
	"amenity", "shop", "tourism", "leisure",
	"natural", "historic", "public_transport",
}

// FeatureSearcher is the single client operation the category explorer
// depends on. *Client satisfies it.
type FeatureSearcher interface {
	SearchFeaturesByCategory(ctx context.Context, box geo.BoundingBox, category string, subcategories []string) ([]Element, error)
}

// CategoryStep is the outcome of exploring one category. A failed search
// is carried in Err rather than aborting the remaining categories.
type CategoryStep struct {
	Index    int    // position in the category list, 0-based
	Total    int    // number of categories in the list
	Category string // category key searched
	Features []Element
	Err      error
}

// CategoryExplorer iterates a fixed category list, issuing one feature
// search per category. It decouples iteration from progress reporting:
// callers pull steps with Next and decide how to notify and aggregate.
// The sequence is finite and restartable via Reset.
type CategoryExplorer struct {
	searcher   FeatureSearcher
	box        geo.BoundingBox
	categories []string
	next       int
}

// NewCategoryExplorer creates an explorer over the given categories
// within the bounding box. A nil or empty category list uses
// ExploreCategories.
func NewCategoryExplorer(searcher FeatureSearcher, box geo.BoundingBox, categories []string) *CategoryExplorer {
	if len(categories) == 0 {
		categories = ExploreCategories
	}
	return &CategoryExplorer{
		searcher:   searcher,
		box:        box,
		categories: categories,
	}
}

// Len returns the number of categories the explorer will visit.
func (e *CategoryExplorer) Len() int {
	return len(e.categories)
}

// Next searches the next category and returns its step. ok is false once
// all categories have been visited. Search failures are recorded in the
// step's Err field; iteration always runs to completion.
func (e *CategoryExplorer) Next(ctx context.Context) (step CategoryStep, ok bool) {
	if e.next >= len(e.categories) {
		return CategoryStep{}, false
	}

	category := e.categories[e.next]
	step = CategoryStep{
		Index:    e.next,
		Total:    len(e.categories),
		Category: category,
	}
	e.next++

	step.Features, step.Err = e.searcher.SearchFeaturesByCategory(ctx, e.box, category, nil)
	return step, true
}

// Reset rewinds the explorer to the first category.
func (e *CategoryExplorer) Reset() {
	e.next = 0
}
