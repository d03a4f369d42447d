// ABOUTME: Tests for HTML text extraction and memoization
// ABOUTME: Verifies script/style stripping and failure recovery

package extract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nainya/helpindex/pkg/doctree"
)

func writeContent(t *testing.T, root, rel, html string) {
	t.Helper()

	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("Failed to create content dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		t.Fatalf("Failed to write content file: %v", err)
	}
}

func TestExtractPlainText(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "page.html",
		`<html><head><title>Page</title></head>
		<body><h1>X20DI9371</h1><p>Digital input module with 12 channels.</p></body></html>`)

	ex := NewExtractor(root, nil, nil)
	text := ex.Text(&doctree.Node{ID: "p1", File: "page.html"})

	if !strings.Contains(text, "Digital input module with 12 channels.") {
		t.Errorf("Expected body text, got: %q", text)
	}
	if strings.Contains(text, "<") {
		t.Errorf("Expected markup to be stripped, got: %q", text)
	}
}

func TestExtractStripsScriptAndStyle(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "page.html",
		`<html><body>
		<style>.hidden { display: none; }</style>
		<script>var secret = "donotindex";</script>
		<p>Visible content.</p>
		</body></html>`)

	ex := NewExtractor(root, nil, nil)
	text := ex.Text(&doctree.Node{ID: "p1", File: "page.html"})

	if !strings.Contains(text, "Visible content.") {
		t.Errorf("Expected visible text, got: %q", text)
	}
	if strings.Contains(text, "donotindex") {
		t.Errorf("Script content leaked into text: %q", text)
	}
	if strings.Contains(text, "display") {
		t.Errorf("Style content leaked into text: %q", text)
	}
}

func TestExtractCollapsesWhitespace(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "page.html",
		"<html><body><p>one\n\n   two</p>\n<p>three</p></body></html>")

	ex := NewExtractor(root, nil, nil)
	text := ex.Text(&doctree.Node{ID: "p1", File: "page.html"})

	if text != "one two three" {
		t.Errorf("Expected collapsed whitespace, got: %q", text)
	}
}

func TestMissingFileYieldsEmpty(t *testing.T) {
	ex := NewExtractor(t.TempDir(), nil, nil)

	text := ex.Text(&doctree.Node{ID: "p1", File: "does/not/exist.html"})
	if text != "" {
		t.Errorf("Expected empty text for missing file, got: %q", text)
	}
}

func TestNodeWithoutFileYieldsEmpty(t *testing.T) {
	ex := NewExtractor(t.TempDir(), nil, nil)

	if text := ex.Text(&doctree.Node{ID: "s1", IsSection: true}); text != "" {
		t.Errorf("Expected empty text for node without file, got: %q", text)
	}
	if text := ex.Text(nil); text != "" {
		t.Errorf("Expected empty text for nil node, got: %q", text)
	}
}

func TestExtractionIsCached(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "page.html", "<html><body>original</body></html>")

	ex := NewExtractor(root, nil, nil)
	node := &doctree.Node{ID: "p1", File: "page.html"}

	first := ex.Text(node)
	if first != "original" {
		t.Fatalf("Expected 'original', got %q", first)
	}

	// The file changes, the cache must not
	writeContent(t, root, "page.html", "<html><body>changed</body></html>")

	second := ex.Text(node)
	if second != "original" {
		t.Errorf("Expected cached text, got %q", second)
	}
}

func TestConcurrentExtraction(t *testing.T) {
	root := t.TempDir()
	writeContent(t, root, "page.html", "<html><body>shared page</body></html>")

	ex := NewExtractor(root, nil, nil)
	node := &doctree.Node{ID: "p1", File: "page.html"}

	done := make(chan string)
	for i := 0; i < 16; i++ {
		go func() {
			done <- ex.Text(node)
		}()
	}
	for i := 0; i < 16; i++ {
		if got := <-done; got != "shared page" {
			t.Errorf("Expected 'shared page', got %q", got)
		}
	}
}

func TestCollapseWhitespace(t *testing.T) {
	cases := map[string]string{
		"  a  b  ":     "a b",
		"a\n\tb\r\nc":  "a b c",
		"":             "",
		"   \n\t  ":    "",
		"single":       "single",
	}
	for in, want := range cases {
		if got := CollapseWhitespace(in); got != want {
			t.Errorf("CollapseWhitespace(%q): expected %q, got %q", in, want, got)
		}
	}
}
