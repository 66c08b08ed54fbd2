package lang

import (
	"errors"
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

const manifestDoc = `
languages:
  - name: json
    repo: https://github.com/tree-sitter/tree-sitter-json
  - name: cpp
    archive: https://example.com/tree-sitter-cpp.tar.gz
    ref: v0.20.0
    sources:
      - src/parser.c
      - src/scanner.cc
`

func TestParseManifest(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "arbo.lang")
	defer teardown()
	//
	m, err := parseManifest([]byte(manifestDoc))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Languages) != 2 {
		t.Fatalf("expected 2 languages in manifest, got %d", len(m.Languages))
	}
	json := m.Language("json")
	if json == nil {
		t.Fatal("expected manifest to list json")
	}
	if json.Repo != "https://github.com/tree-sitter/tree-sitter-json" {
		t.Errorf("unexpected repo for json: %q", json.Repo)
	}
	if len(json.Sources) != 1 || json.Sources[0] != "src/parser.c" {
		t.Errorf("expected default sources to be filled in, got %v", json.Sources)
	}
	cpp := m.Language("cpp")
	if cpp == nil || len(cpp.Sources) != 2 || cpp.Ref != "v0.20.0" {
		t.Errorf("cpp entry not carried over faithfully: %v", cpp)
	}
	if m.Language("fortran") != nil {
		t.Error("lookup of an unlisted language expected to come up empty")
	}
}

func TestManifestRejectsBadNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "arbo.lang")
	defer teardown()
	//
	doc := "languages:\n  - name: ../evil\n"
	if _, err := parseManifest([]byte(doc)); !errors.Is(err, ErrUnknownLanguage) {
		t.Errorf("expected ErrUnknownLanguage for a path-like name, got %v", err)
	}
}

func TestReadManifest(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "arbo.lang")
	defer teardown()
	//
	path := filepath.Join(t.TempDir(), "languages.yaml")
	if err := ioutil.WriteFile(path, []byte(manifestDoc), 0644); err != nil {
		t.Fatal(err)
	}
	m, err := ReadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Language("cpp") == nil {
		t.Error("manifest read from disk expected to list cpp")
	}
	if _, err := ReadManifest(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing manifest file")
	}
}

func TestLanguageNames(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "arbo.lang")
	defer teardown()
	//
	good := []string{"json", "c", "c99", "embedded_template", "tsx-dialect"}
	for _, name := range good {
		if !validName(name) {
			t.Errorf("%q expected to be a valid language name", name)
		}
	}
	bad := []string{"", "C", "a b", "../x", "x/y", "naïve"}
	for _, name := range bad {
		if validName(name) {
			t.Errorf("%q expected to be rejected as a language name", name)
		}
	}
}

func TestDeclareLanguage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "arbo.lang")
	defer teardown()
	//
	lg := DeclareLanguage("json")
	if lg.Repo != "https://github.com/tree-sitter/tree-sitter-json" {
		t.Errorf("unexpected default repo: %q", lg.Repo)
	}
	if len(lg.Sources) != 1 || lg.Sources[0] != "src/parser.c" {
		t.Errorf("unexpected default sources: %v", lg.Sources)
	}
}
