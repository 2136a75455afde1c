package catalog

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/clipqa/annotation-service/internal/domain"
)

// Variant names one of the dataset files the catalog can serve.
type Variant string

const (
	VariantValidation Variant = "validation"
	VariantComplete   Variant = "complete"

	// DefaultVariant is used when a request carries no (or an unknown) selection.
	DefaultVariant = VariantValidation
)

// ParseVariant converts a user-supplied name into a Variant.
// The empty string selects the default.
func ParseVariant(name string) (Variant, error) {
	switch Variant(strings.TrimSpace(name)) {
	case "", VariantValidation:
		return VariantValidation, nil
	case VariantComplete:
		return VariantComplete, nil
	}
	return "", domain.ErrUnknownDataset
}

// VariantOrDefault is ParseVariant for values read from a cookie, where an
// unknown name silently selects the default.
func VariantOrDefault(name string) Variant {
	v, err := ParseVariant(name)
	if err != nil {
		return DefaultVariant
	}
	return v
}

// Source binds a variant to the CSV file that backs it.
type Source struct {
	Variant Variant
	Path    string
}

type dataset struct {
	list  []domain.WorkItem
	index map[string]domain.WorkItem
}

// Catalog is the read-only narration lookup. It is built once at startup,
// loaded once, and shared by every request; variants only change which
// dataset a call consults.
type Catalog struct {
	mediaBaseURL string
	sources      []Source

	once sync.Once
	err  error
	sets map[Variant]*dataset
}

// New returns a catalog that will read sources on the first call to Load.
func New(mediaBaseURL string, sources ...Source) *Catalog {
	return &Catalog{
		mediaBaseURL: strings.TrimRight(mediaBaseURL, "/"),
		sources:      sources,
	}
}

// NewStatic returns an already-loaded catalog holding the given items.
// URLs are derived from mediaBaseURL exactly as for CSV-backed catalogs.
func NewStatic(mediaBaseURL string, items map[Variant][]domain.WorkItem) *Catalog {
	c := New(mediaBaseURL)
	c.once.Do(func() {
		c.sets = make(map[Variant]*dataset, len(items))
		for v, list := range items {
			c.sets[v] = c.build(list)
		}
	})
	return c
}

// Load parses every source. Only the first call does any work; later calls
// return the first call's result.
func (c *Catalog) Load() error {
	c.once.Do(func() {
		c.sets = make(map[Variant]*dataset, len(c.sources))
		for _, src := range c.sources {
			items, err := ReadCSVFile(src.Path)
			if err != nil {
				c.err = fmt.Errorf("load %s dataset: %w", src.Variant, err)
				return
			}
			c.sets[src.Variant] = c.build(items)
		}
	})
	return c.err
}

// MediaURL derives the clip URL for a narration id.
func (c *Catalog) MediaURL(narrationID string) string {
	return c.mediaBaseURL + "/" + narrationID + ".mp4"
}

// List returns every item of the variant in file order.
func (c *Catalog) List(v Variant) []domain.WorkItem {
	ds := c.dataset(v)
	if ds == nil {
		return nil
	}
	out := make([]domain.WorkItem, len(ds.list))
	copy(out, ds.list)
	return out
}

// Get looks up one narration. ok is false when the id is not in the variant.
func (c *Catalog) Get(v Variant, narrationID string) (domain.WorkItem, bool) {
	ds := c.dataset(v)
	if ds == nil {
		return domain.WorkItem{}, false
	}
	item, ok := ds.index[narrationID]
	return item, ok
}

// GetMany resolves several narrations at once. Ids missing from the variant
// are absent from the result.
func (c *Catalog) GetMany(v Variant, narrationIDs []string) map[string]domain.WorkItem {
	out := make(map[string]domain.WorkItem, len(narrationIDs))
	ds := c.dataset(v)
	if ds == nil {
		return out
	}
	for _, id := range narrationIDs {
		if item, ok := ds.index[id]; ok {
			out[id] = item
		}
	}
	return out
}

// Random picks a uniformly random item of the variant.
func (c *Catalog) Random(v Variant) (domain.WorkItem, bool) {
	ds := c.dataset(v)
	if ds == nil || len(ds.list) == 0 {
		return domain.WorkItem{}, false
	}
	return ds.list[rand.Intn(len(ds.list))], true
}

// Len reports how many items the variant holds.
func (c *Catalog) Len(v Variant) int {
	ds := c.dataset(v)
	if ds == nil {
		return 0
	}
	return len(ds.list)
}

func (c *Catalog) dataset(v Variant) *dataset {
	if c.sets == nil {
		return nil
	}
	return c.sets[v]
}

// build fills in URLs and indexes the list. Duplicate ids keep the first row.
func (c *Catalog) build(items []domain.WorkItem) *dataset {
	ds := &dataset{
		list:  make([]domain.WorkItem, 0, len(items)),
		index: make(map[string]domain.WorkItem, len(items)),
	}
	for _, it := range items {
		if _, dup := ds.index[it.NarrationID]; dup {
			continue
		}
		it.URL = c.MediaURL(it.NarrationID)
		ds.list = append(ds.list, it)
		ds.index[it.NarrationID] = it
	}
	return ds
}
