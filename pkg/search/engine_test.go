// ABOUTME: Tests for the ranked query engine against a real on-disk index
// ABOUTME: Covers field weighting, prefix matching, filtering and pagination

package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nainya/helpindex/pkg/doctree"
	"github.com/nainya/helpindex/pkg/extract"
	"github.com/nainya/helpindex/pkg/index"
)

type fixturePage struct {
	id, title, file, body string
}

// buildSearchFixture builds a small persisted index with two top-level
// categories and returns an open engine over it.
func buildSearchFixture(t *testing.T) *Engine {
	t.Helper()

	dir := t.TempDir()
	helpRoot := filepath.Join(dir, "help")
	indexPath := filepath.Join(dir, "help.bleve")

	tree := doctree.NewTree()
	tree.Add(&doctree.Node{ID: "hardware", Title: "Hardware", IsSection: true}, "")
	tree.Add(&doctree.Node{ID: "motion", Title: "Motion", IsSection: true}, "")

	pages := []struct {
		fixturePage
		parent string
	}{
		{fixturePage{"motor_ctrl", "Motor Control", "hw/motor_ctrl.html",
			"Configuring drive hardware, an overview."}, "hardware"},
		{fixturePage{"motors", "Motors", "hw/motors.html",
			"Supported synchronous machines."}, "hardware"},
		{fixturePage{"moth", "Moth", "hw/moth.html",
			"An unrelated page that must not match word prefixes of other titles."}, "hardware"},
		{fixturePage{"servo", "Servo", "motion/servo.html",
			"Axis basics."}, "motion"},
		{fixturePage{"tuning", "Tuning Guide", "motion/tuning.html",
			"The servo servo servo loop, an overview."}, "motion"},
	}
	for _, p := range pages {
		path := filepath.Join(helpRoot, p.file)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("Failed to create content dir: %v", err)
		}
		html := "<html><body><p>" + p.body + "</p></body></html>"
		if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
			t.Fatalf("Failed to write content file: %v", err)
		}
		tree.Add(&doctree.Node{ID: p.id, Title: p.title, File: p.file}, p.parent)
	}

	ex := extract.NewExtractor(helpRoot, nil, nil)
	builder := index.NewBuilder(indexPath, nil, nil)
	decision := index.Decision{Rebuild: true, Reason: index.ReasonFirstBuild, SourceFingerprint: "fp"}
	if _, err := builder.Build(tree, ex, decision, indexPath+".meta.json"); err != nil {
		t.Fatalf("Fixture build failed: %v", err)
	}

	engine, err := OpenEngine(indexPath, nil, nil)
	if err != nil {
		t.Fatalf("Failed to open engine: %v", err)
	}
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestSearchFindsByTitle(t *testing.T) {
	engine := buildSearchFixture(t)

	page, err := engine.Search("motor control", Options{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if page.Total == 0 {
		t.Fatal("Expected results for title query")
	}
	if page.Results[0].ID != "motor_ctrl" {
		t.Errorf("Expected motor_ctrl first, got %s", page.Results[0].ID)
	}
}

func TestTitleHitOutranksBodyHit(t *testing.T) {
	engine := buildSearchFixture(t)

	// "servo" appears once in one title and three times in another body
	page, err := engine.Search("servo", Options{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(page.Results) < 2 {
		t.Fatalf("Expected both servo hits, got %d", len(page.Results))
	}
	if page.Results[0].ID != "servo" {
		t.Errorf("Expected title hit first, got %s", page.Results[0].ID)
	}
}

func TestPrefixMatchesWordStarts(t *testing.T) {
	engine := buildSearchFixture(t)

	page, err := engine.Search("moto", Options{Prefix: true})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	got := make(map[string]bool)
	for _, r := range page.Results {
		got[r.ID] = true
	}
	if !got["motor_ctrl"] || !got["motors"] {
		t.Errorf("Expected motor_ctrl and motors in prefix results, got %v", got)
	}
	if got["moth"] {
		t.Error("Prefix 'moto' must not match 'Moth'")
	}
}

func TestWithoutPrefixPartialWordMissesTitles(t *testing.T) {
	engine := buildSearchFixture(t)

	page, err := engine.Search("moto", Options{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, r := range page.Results {
		if r.ID == "motor_ctrl" || r.ID == "motors" {
			t.Errorf("Non-prefix query matched partial word in %s", r.ID)
		}
	}
}

func TestCategoryFilter(t *testing.T) {
	engine := buildSearchFixture(t)

	// "overview" occurs in a Hardware body and a Motion body
	page, err := engine.Search("overview", Options{Category: "Hardware"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if page.Total == 0 {
		t.Fatal("Expected filtered results")
	}
	for _, r := range page.Results {
		if r.Category != "Hardware" {
			t.Errorf("Result %s leaked from category %s", r.ID, r.Category)
		}
	}

	unfiltered, err := engine.Search("overview", Options{})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if unfiltered.Total <= page.Total {
		t.Errorf("Filter did not narrow results: %d vs %d", unfiltered.Total, page.Total)
	}
}

func TestEmptyQueryReturnsEmptyPage(t *testing.T) {
	engine := buildSearchFixture(t)

	for _, raw := range []string{"", "   ", `+*?:\`} {
		page, err := engine.Search(raw, Options{})
		if err != nil {
			t.Fatalf("Search(%q) failed: %v", raw, err)
		}
		if page.Total != 0 || len(page.Results) != 0 {
			t.Errorf("Search(%q): expected empty page, got %d results", raw, len(page.Results))
		}
	}
}

func TestPagination(t *testing.T) {
	engine := buildSearchFixture(t)

	first, err := engine.Search("servo", Options{Size: 1})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(first.Results) != 1 {
		t.Fatalf("Expected 1 result on first page, got %d", len(first.Results))
	}

	second, err := engine.Search("servo", Options{Size: 1, Offset: 1})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(second.Results) != 1 {
		t.Fatalf("Expected 1 result on second page, got %d", len(second.Results))
	}
	if first.Results[0].ID == second.Results[0].ID {
		t.Error("Pages overlap")
	}
	if second.Offset != 1 {
		t.Errorf("Expected offset 1 echoed back, got %d", second.Offset)
	}
}

func TestClampOptions(t *testing.T) {
	cases := []struct {
		in   Options
		want Options
	}{
		{Options{}, Options{Size: DefaultPageSize}},
		{Options{Size: -5, Offset: -3}, Options{Size: DefaultPageSize}},
		{Options{Size: MaxPageSize + 1}, Options{Size: MaxPageSize}},
		{Options{Size: 25, Offset: 50}, Options{Size: 25, Offset: 50}},
	}
	for _, c := range cases {
		got := clampOptions(c.in)
		if got.Size != c.want.Size || got.Offset != c.want.Offset {
			t.Errorf("clampOptions(%+v): expected %+v, got %+v", c.in, c.want, got)
		}
	}
}

func TestDocCount(t *testing.T) {
	engine := buildSearchFixture(t)

	n, err := engine.DocCount()
	if err != nil {
		t.Fatalf("DocCount failed: %v", err)
	}
	if n != 7 {
		t.Errorf("Expected 7 documents, got %d", n)
	}
}

func TestSearchAfterClose(t *testing.T) {
	engine := buildSearchFixture(t)

	if err := engine.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	page, err := engine.Search("servo", Options{})
	if err != nil {
		t.Fatalf("Search after close errored: %v", err)
	}
	if page.Total != 0 {
		t.Errorf("Expected empty page after close, got %d", page.Total)
	}
}
