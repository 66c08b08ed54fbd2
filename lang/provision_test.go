package lang

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

// Provisioning tests run without network access and without a C toolchain:
// acquisition and compilation are replaced by fakes which track their calls.

type fakeToolchain struct {
	fetched  int
	compiled int
}

func (f *fakeToolchain) fetch(lg *Language, dir string) error {
	f.fetched++
	path := filepath.Join(dir, "src", "parser.c")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return ioutil.WriteFile(path, []byte("/* grammar */"), 0644)
}

func (f *fakeToolchain) compile(lg *Language, dir string, artifact string) error {
	f.compiled++
	return ioutil.WriteFile(artifact, []byte("pseudo parser library"), 0644)
}

func testProvisioner(cache string, tc *fakeToolchain, opts ...ProvisionOption) *Provisioner {
	opts = append(opts, WithFetcher(tc.fetch), WithCompiler(tc.compile))
	return NewProvisioner(cache, opts...)
}

func TestEnsureBuildsArtifact(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "arbo.lang")
	defer teardown()
	//
	cache := t.TempDir()
	tc := &fakeToolchain{}
	p := testProvisioner(cache, tc)
	lg, err := p.Ensure("json")
	if err != nil {
		t.Fatal(err)
	}
	if tc.fetched != 1 || tc.compiled != 1 {
		t.Errorf("expected one fetch and one build, got %d/%d", tc.fetched, tc.compiled)
	}
	if lg.Artifact != filepath.Join(cache, "build", "json.so") {
		t.Errorf("unexpected artifact path %q", lg.Artifact)
	}
	if _, err := os.Stat(lg.Artifact); err != nil {
		t.Errorf("artifact expected to exist: %v", err)
	}
	if lg.Sum == "" {
		t.Error("ensured language expected to carry a description fingerprint")
	}
	recorded, err := ioutil.ReadFile(lg.Artifact + ".sum")
	if err != nil || string(recorded) != lg.Sum {
		t.Errorf("sum file expected to record %q, got %q (%v)", lg.Sum, recorded, err)
	}
}

func TestEnsureUsesCache(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "arbo.lang")
	defer teardown()
	//
	cache := t.TempDir()
	tc := &fakeToolchain{}
	first, err := testProvisioner(cache, tc).Ensure("json")
	if err != nil {
		t.Fatal(err)
	}
	fresh := &fakeToolchain{} // a new provisioner over the same cache dir
	second, err := testProvisioner(cache, fresh).Ensure("json")
	if err != nil {
		t.Fatal(err)
	}
	if fresh.fetched != 0 || fresh.compiled != 0 {
		t.Errorf("cached artifact expected to skip fetch and build, got %d/%d",
			fresh.fetched, fresh.compiled)
	}
	if second.Artifact != first.Artifact || second.Sum != first.Sum {
		t.Errorf("cache hit expected to reproduce artifact and sum, got %v", second)
	}
}

func TestEnsureRebuildsOnChangedDescription(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "arbo.lang")
	defer teardown()
	//
	cache := t.TempDir()
	tc := &fakeToolchain{}
	describe := func(ref string) *Manifest {
		return &Manifest{Languages: []*Language{{
			Name:    "json",
			Repo:    "https://github.com/tree-sitter/tree-sitter-json",
			Ref:     ref,
			Sources: []string{"src/parser.c"},
		}}}
	}
	first, err := testProvisioner(cache, tc, WithManifest(describe("v1"))).Ensure("json")
	if err != nil {
		t.Fatal(err)
	}
	second, err := testProvisioner(cache, tc, WithManifest(describe("v2"))).Ensure("json")
	if err != nil {
		t.Fatal(err)
	}
	if tc.compiled != 2 {
		t.Errorf("changed description expected to trigger a rebuild, builds = %d", tc.compiled)
	}
	if first.Sum == second.Sum {
		t.Error("fingerprints of differing descriptions expected to differ")
	}
}

func TestEnsureFetchFailure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "arbo.lang")
	defer teardown()
	//
	down := errors.New("network down")
	p := NewProvisioner(t.TempDir(), WithFetcher(func(lg *Language, dir string) error {
		return down
	}))
	_, err := p.Ensure("json")
	if !errors.Is(err, down) {
		t.Fatalf("expected the fetch failure to surface, got %v", err)
	}
	var perr *ProvisionError
	if !errors.As(err, &perr) || perr.Stage != StageFetch {
		t.Errorf("expected a fetch-stage provisioning error, got %v", err)
	}
}

func TestEnsureBuildFailure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "arbo.lang")
	defer teardown()
	//
	cache := t.TempDir()
	tc := &fakeToolchain{}
	p := testProvisioner(cache, tc)
	p.compile = func(lg *Language, dir string, artifact string) error {
		ioutil.WriteFile(artifact, []byte("broken"), 0644)
		return errors.New("compiler exploded")
	}
	_, err := p.Ensure("json")
	var perr *ProvisionError
	if !errors.As(err, &perr) || perr.Stage != StageBuild {
		t.Fatalf("expected a build-stage provisioning error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(cache, "build", "json.so")); err == nil {
		t.Error("partial artifact expected to be removed after a failed build")
	}
	if _, err := os.Stat(filepath.Join(cache, "vendor", "tree-sitter-json")); err == nil {
		t.Error("fetched sources expected to be removed after a failed build")
	}
}

func TestEnsureRejectsBadName(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "arbo.lang")
	defer teardown()
	//
	tc := &fakeToolchain{}
	_, err := testProvisioner(t.TempDir(), tc).Ensure("../evil")
	if !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("expected ErrUnknownLanguage for a path-like name, got %v", err)
	}
	var perr *ProvisionError
	if !errors.As(err, &perr) || perr.Stage != StageResolve {
		t.Errorf("expected a resolve-stage provisioning error, got %v", err)
	}
	if tc.fetched != 0 {
		t.Error("a rejected name expected to never reach the fetch stage")
	}
}

func TestResolveCopiesManifestEntry(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "arbo.lang")
	defer teardown()
	//
	m := &Manifest{Languages: []*Language{{
		Name:    "json",
		Repo:    "https://example.com/json.git",
		Sources: []string{"src/parser.c"},
	}}}
	p := NewProvisioner(t.TempDir(), WithManifest(m))
	lg, err := p.resolve("json")
	if err != nil {
		t.Fatal(err)
	}
	lg.Sources[0] = "mutated"
	lg.Artifact = "/somewhere/json.so"
	entry := m.Language("json")
	if entry.Sources[0] != "src/parser.c" || entry.Artifact != "" {
		t.Error("resolving a language expected to leave the manifest entry untouched")
	}
}

func TestFingerprintIgnoresDerivedFields(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "arbo.lang")
	defer teardown()
	//
	plain := DeclareLanguage("json")
	ensured := DeclareLanguage("json")
	ensured.Artifact = "/cache/build/json.so"
	ensured.Sum = "1234"
	if fingerprint(plain) != fingerprint(ensured) {
		t.Error("artifact path and sum expected to not contribute to the fingerprint")
	}
	pinned := DeclareLanguage("json")
	pinned.Ref = "v2"
	if fingerprint(plain) == fingerprint(pinned) {
		t.Error("pinning a ref expected to change the fingerprint")
	}
}

func TestFetchSourcesWithoutLocation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "arbo.lang")
	defer teardown()
	//
	lg := &Language{Name: "mystery"}
	dir := filepath.Join(t.TempDir(), "none")
	if err := fetchSources(lg, dir); !errors.Is(err, ErrNoSourceLocation) {
		t.Errorf("expected ErrNoSourceLocation, got %v", err)
	}
}

func TestFetchSourcesReusesExistingDir(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "arbo.lang")
	defer teardown()
	//
	lg := &Language{Name: "mystery"} // no source location configured
	if err := fetchSources(lg, t.TempDir()); err != nil {
		t.Errorf("existing source dir expected to be reused, got %v", err)
	}
}

func TestUntar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "arbo.lang")
	defer teardown()
	//
	dir := t.TempDir()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	write := func(hdr tar.Header, content string) {
		hdr.Size = int64(len(content))
		if err := tw.WriteHeader(&hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	write(tar.Header{Name: "tree-sitter-x-1.0/", Mode: 0755, Typeflag: tar.TypeDir}, "")
	write(tar.Header{Name: "tree-sitter-x-1.0/src/", Mode: 0755, Typeflag: tar.TypeDir}, "")
	write(tar.Header{Name: "tree-sitter-x-1.0/src/parser.c", Mode: 0644, Typeflag: tar.TypeReg},
		"/* parser */")
	write(tar.Header{Name: "tree-sitter-x-1.0/grammar.js", Mode: 0644, Typeflag: tar.TypeReg},
		"grammar")
	write(tar.Header{Name: "tree-sitter-x-1.0/../evil.txt", Mode: 0644, Typeflag: tar.TypeReg},
		"boom")
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	archive := filepath.Join(dir, "grammar.tar.gz")
	if err := ioutil.WriteFile(archive, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "out")
	if err := untar(archive, target); err != nil {
		t.Fatal(err)
	}
	parser, err := ioutil.ReadFile(filepath.Join(target, "src", "parser.c"))
	if err != nil || string(parser) != "/* parser */" {
		t.Errorf("expected unpacked parser.c, got %q (%v)", parser, err)
	}
	if _, err := os.Stat(filepath.Join(target, "grammar.js")); err != nil {
		t.Errorf("expected unpacked grammar.js: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "evil.txt")); err == nil {
		t.Error("archive entry escaping the target dir expected to be skipped")
	}
}
