package lang

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cavaliergopher/grab/v3"
	"github.com/cnf/structhash"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/npillmayer/schuko/gconf"
)

// A Provisioner makes languages available for parsing. It acquires grammar
// sources, builds parser artifacts and caches everything below its cache
// directory:
//
//     <cache>/vendor/tree-sitter-<name>/    grammar sources
//     <cache>/build/<name>.so               parser artifact
//     <cache>/build/<name>.so.sum           fingerprint of the description
//
// A cached artifact is reused for as long as the language description it
// was built from is unchanged.
type Provisioner struct {
	CacheDir string
	Manifest *Manifest
	fetch    func(lg *Language, dir string) error
	compile  func(lg *Language, dir string, artifact string) error
}

// ProvisionOption configures a Provisioner.
type ProvisionOption func(p *Provisioner)

// WithManifest has a provisioner resolve language names from a catalog
// before falling back to the upstream naming conventions.
func WithManifest(m *Manifest) ProvisionOption {
	return func(p *Provisioner) {
		p.Manifest = m
	}
}

// WithFetcher replaces the standard source acquisition (repository clone or
// archive download).
func WithFetcher(fetch func(lg *Language, dir string) error) ProvisionOption {
	return func(p *Provisioner) {
		if fetch != nil {
			p.fetch = fetch
		}
	}
}

// WithCompiler replaces the standard artifact build (an invocation of the
// system C toolchain).
func WithCompiler(compile func(lg *Language, dir string, artifact string) error) ProvisionOption {
	return func(p *Provisioner) {
		if compile != nil {
			p.compile = compile
		}
	}
}

// NewProvisioner creates a provisioner with a cache below cacheDir.
func NewProvisioner(cacheDir string, opts ...ProvisionOption) *Provisioner {
	p := &Provisioner{CacheDir: cacheDir}
	p.fetch = fetchSources
	p.compile = compileArtifact
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// DefaultCacheDir returns the per-user cache directory for grammar sources
// and parser artifacts.
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "arbo")
	}
	return filepath.Join(os.TempDir(), "arbo")
}

var defaultProvisioner *Provisioner
var defaultOnce sync.Once // monitors one-time setup of the default provisioner

// Ensure makes a language available, using a default provisioner caching
// below DefaultCacheDir. See Provisioner.Ensure.
func Ensure(name string) (*Language, error) {
	defaultOnce.Do(func() {
		defaultProvisioner = NewProvisioner(DefaultCacheDir())
	})
	return defaultProvisioner.Ensure(name)
}

// Ensure makes a language available: it resolves the name to a grammar
// description, acquires the grammar sources and builds the parser
// artifact, unless a cached artifact for an unchanged description exists.
// On success the returned language carries the artifact path and the
// description fingerprint.
//
// Failures are reported as *ProvisionError. After a failed build, partial
// outputs are removed; setting the configuration flag 'keep-failed-builds'
// keeps the fetched sources around for inspection.
func (p *Provisioner) Ensure(name string) (*Language, error) {
	lg, err := p.resolve(name)
	if err != nil {
		tracer().Errorf("cannot resolve language %q: %v", name, err)
		return nil, provisionError(name, StageResolve, err)
	}
	sum := fingerprint(lg)
	artifact := filepath.Join(p.CacheDir, "build", name+".so")
	if cachedArtifact(artifact, sum) {
		tracer().Debugf("language %q is cached, sum %s", name, sum)
		lg.Artifact, lg.Sum = artifact, sum
		return lg, nil
	}
	dir := filepath.Join(p.CacheDir, "vendor", "tree-sitter-"+name)
	if err := p.fetch(lg, dir); err != nil {
		tracer().Errorf("cannot fetch grammar for %q: %v", name, err)
		return nil, provisionError(name, StageFetch, err)
	}
	if err := os.MkdirAll(filepath.Dir(artifact), 0755); err != nil {
		return nil, provisionError(name, StageBuild, err)
	}
	tracer().Infof("building parser artifact for language %q", name)
	if err := p.compile(lg, dir, artifact); err != nil {
		tracer().Errorf("cannot build parser for %q: %v", name, err)
		os.Remove(artifact)
		os.Remove(artifact + ".sum")
		if !gconf.GetBool("keep-failed-builds") {
			os.RemoveAll(dir)
		}
		return nil, provisionError(name, StageBuild, err)
	}
	if err := ioutil.WriteFile(artifact+".sum", []byte(sum), 0644); err != nil {
		return nil, provisionError(name, StageBuild, err)
	}
	lg.Artifact, lg.Sum = artifact, sum
	return lg, nil
}

// resolve finds the grammar description for a language name, either from
// the manifest or by upstream convention. It returns a copy: provisioning
// must not scribble on catalog entries.
func (p *Provisioner) resolve(name string) (*Language, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
	}
	if lg := p.Manifest.Language(name); lg != nil {
		cp := *lg
		cp.Sources = append([]string(nil), lg.Sources...)
		return &cp, nil
	}
	return DeclareLanguage(name), nil
}

// fingerprint hashes the grammar description of a language. An artifact
// built from a changed description is stale.
func fingerprint(lg *Language) string {
	desc := *lg
	desc.Artifact = ""
	desc.Sum = ""
	return fmt.Sprintf("%x", structhash.Sha1(desc, 1))
}

func cachedArtifact(artifact string, sum string) bool {
	if _, err := os.Stat(artifact); err != nil {
		return false
	}
	recorded, err := ioutil.ReadFile(artifact + ".sum")
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(recorded)) == sum
}

// --- Source acquisition -----------------------------------------------

// fetchSources acquires the grammar sources for a language into dir. An
// existing checkout is reused; clients invalidate it by removing dir.
func fetchSources(lg *Language, dir string) error {
	if _, err := os.Stat(dir); err == nil {
		tracer().Debugf("reusing grammar sources in %s", dir)
		return nil
	}
	switch {
	case lg.Archive != "":
		return downloadArchive(lg.Archive, dir)
	case lg.Repo != "":
		return cloneRepository(lg.Repo, lg.Ref, dir)
	}
	return ErrNoSourceLocation
}

func cloneRepository(url string, ref string, dir string) error {
	tracer().Infof("cloning grammar repository %s", url)
	opts := &git.CloneOptions{
		URL:   url,
		Depth: 1,
	}
	if ref != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(ref)
		opts.SingleBranch = true
	}
	if _, err := git.PlainClone(dir, false, opts); err != nil {
		os.RemoveAll(dir) // do not leave a half-finished checkout behind
		return err
	}
	return nil
}

func downloadArchive(url string, dir string) error {
	tracer().Infof("downloading grammar archive %s", url)
	tmp, err := ioutil.TempDir("", "arbo-grammar-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)
	client := grab.NewClient()
	req, err := grab.NewRequest(tmp, url)
	if err != nil {
		return err
	}
	resp := client.Do(req)
	if err := resp.Err(); err != nil {
		return err
	}
	tracer().Debugf("downloaded %s", resp.Filename)
	return untar(resp.Filename, dir)
}

// untar unpacks a gzipped tar archive into dir, stripping the archive's
// root directory (the layout of repository snapshot archives).
func untar(archive string, dir string) error {
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		name := stripRootDir(hdr.Name)
		if name == "" {
			continue
		}
		target := filepath.Join(dir, filepath.FromSlash(name))
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			continue // entry tries to escape dir
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode)&0777)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
		}
	}
	return nil
}

func stripRootDir(name string) string {
	name = strings.TrimLeft(name, "/")
	if i := strings.IndexRune(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return ""
}

// --- Artifact build ---------------------------------------------------

// compileArtifact builds the shared parser library for a grammar by
// invoking the system C toolchain. Grammars with C++ sources (usually
// scanner.cc) are built with the C++ compiler.
func compileArtifact(lg *Language, dir string, artifact string) error {
	cpp := false
	args := []string{"-shared", "-fPIC", "-O2", "-I", filepath.Join(dir, "src"), "-o", artifact}
	for _, src := range lg.Sources {
		path := filepath.Join(dir, filepath.FromSlash(src))
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("grammar source missing: %s", src)
		}
		if strings.HasSuffix(src, ".cc") || strings.HasSuffix(src, ".cpp") {
			cpp = true
		}
		args = append(args, path)
	}
	compiler := toolchain(cpp)
	tracer().Debugf("build command: %s %s", compiler, strings.Join(args, " "))
	out, err := exec.Command(compiler, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w\n%s", compiler, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func toolchain(cpp bool) string {
	if cpp {
		if cxx := os.Getenv("CXX"); cxx != "" {
			return cxx
		}
		return "c++"
	}
	if cc := os.Getenv("CC"); cc != "" {
		return cc
	}
	return "cc"
}
