package catalog_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/clipqa/annotation-service/internal/catalog"
	"github.com/clipqa/annotation-service/internal/domain"
)

const validationCSV = `participant_id,narration_id,narration,verb
P01,P01_01_0,open fridge,open
P01,P01_01_1,"take milk, carton",take

P01,,missing id,x
P02,P02_03_7,wash pan,wash
P01,P01_01_0,duplicate row,open
`

const completeCSV = `narration_id,narration
P09_09_9,cut onion
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func loaded(t *testing.T) *catalog.Catalog {
	t.Helper()
	dir := t.TempDir()
	c := catalog.New("https://media.test/clips/",
		catalog.Source{Variant: catalog.VariantValidation, Path: writeFile(t, dir, "validation.csv", validationCSV)},
		catalog.Source{Variant: catalog.VariantComplete, Path: writeFile(t, dir, "complete.csv", completeCSV)},
	)
	if err := c.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}
	return c
}

func TestReadCSV(t *testing.T) {
	items, err := catalog.ReadCSV(strings.NewReader(validationCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// the row without an id is skipped; duplicates are left for the catalog
	if len(items) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(items))
	}
	if items[1].Narration != "take milk, carton" {
		t.Fatalf("quoted field not preserved: %q", items[1].Narration)
	}
}

func TestReadCSV_MissingColumns(t *testing.T) {
	_, err := catalog.ReadCSV(strings.NewReader("id,label\n1,x\n"))
	if err == nil {
		t.Fatal("expected error for missing narration columns")
	}
}

func TestReadCSV_Empty(t *testing.T) {
	if _, err := catalog.ReadCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestCatalog_ListAndGet(t *testing.T) {
	c := loaded(t)

	list := c.List(catalog.VariantValidation)
	if len(list) != 3 {
		t.Fatalf("expected 3 unique items, got %d", len(list))
	}
	if list[0].NarrationID != "P01_01_0" || list[0].Narration != "open fridge" {
		t.Fatalf("first item should win over duplicate, got %+v", list[0])
	}

	item, ok := c.Get(catalog.VariantValidation, "P02_03_7")
	if !ok {
		t.Fatal("expected item to be found")
	}
	if item.URL != "https://media.test/clips/P02_03_7.mp4" {
		t.Fatalf("unexpected url %q", item.URL)
	}

	if _, ok := c.Get(catalog.VariantValidation, "nope"); ok {
		t.Fatal("expected unknown id to be absent")
	}
}

func TestCatalog_VariantSwitching(t *testing.T) {
	c := loaded(t)

	if _, ok := c.Get(catalog.VariantComplete, "P01_01_0"); ok {
		t.Fatal("validation item must not be visible in complete variant")
	}
	if _, ok := c.Get(catalog.VariantComplete, "P09_09_9"); !ok {
		t.Fatal("expected complete item")
	}
	if c.Len(catalog.VariantValidation) != 3 || c.Len(catalog.VariantComplete) != 1 {
		t.Fatal("switching variants must not change the underlying data")
	}
}

func TestCatalog_GetMany(t *testing.T) {
	c := loaded(t)
	got := c.GetMany(catalog.VariantValidation, []string{"P01_01_0", "missing", "P01_01_1"})
	if len(got) != 2 {
		t.Fatalf("expected 2 resolved items, got %d", len(got))
	}
	if _, ok := got["missing"]; ok {
		t.Fatal("missing id must not appear in result")
	}
}

func TestCatalog_LoadIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "v.csv", completeCSV)
	c := catalog.New("http://m", catalog.Source{Variant: catalog.VariantValidation, Path: path})
	if err := c.Load(); err != nil {
		t.Fatal(err)
	}
	// removing the source after the first load must not matter
	_ = os.Remove(path)
	if err := c.Load(); err != nil {
		t.Fatalf("second load should reuse cache, got %v", err)
	}
	if c.Len(catalog.VariantValidation) != 1 {
		t.Fatal("expected cached item")
	}
}

func TestCatalog_LoadError(t *testing.T) {
	c := catalog.New("http://m", catalog.Source{Variant: catalog.VariantValidation, Path: "/does/not/exist.csv"})
	if err := c.Load(); err == nil {
		t.Fatal("expected load error")
	}
}

func TestCatalog_Random(t *testing.T) {
	c := catalog.NewStatic("http://m", map[catalog.Variant][]domain.WorkItem{
		catalog.VariantValidation: {{NarrationID: "only", Narration: "one"}},
	})
	for i := 0; i < 10; i++ {
		item, ok := c.Random(catalog.VariantValidation)
		if !ok || item.NarrationID != "only" {
			t.Fatalf("expected the only item, got %+v ok=%v", item, ok)
		}
	}
	if _, ok := c.Random(catalog.VariantComplete); ok {
		t.Fatal("expected empty variant to yield nothing")
	}
}

func TestParseVariant(t *testing.T) {
	tests := []struct {
		in      string
		want    catalog.Variant
		wantErr error
	}{
		{"", catalog.VariantValidation, nil},
		{"validation", catalog.VariantValidation, nil},
		{"complete", catalog.VariantComplete, nil},
		{"full", "", domain.ErrUnknownDataset},
	}
	for _, tc := range tests {
		got, err := catalog.ParseVariant(tc.in)
		if !errors.Is(err, tc.wantErr) || got != tc.want {
			t.Fatalf("ParseVariant(%q) = %q, %v", tc.in, got, err)
		}
	}

	if catalog.VariantOrDefault("garbage") != catalog.DefaultVariant {
		t.Fatal("expected unknown cookie value to fall back to default")
	}
}
