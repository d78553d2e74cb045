// Package load resolves the packages named on the augmentumc command line
// into type-checked syntax trees, the input the rewriter and the
// eligibility gate operate on. It is xgo's instrument/load with its
// backend swapped: where xgo shells out to `go list` via support/goinfo
// and parses files itself, this package asks golang.org/x/tools/go/packages
// to do both listing and type-checking, and keeps only the teacher's
// concurrent-reader-pool trick for fetching each file's original bytes -
// still needed here because the rewriter splices text against them through
// support/edit/goedit, which packages.Load has no notion of.
package load

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"os"
	"runtime"
	"sync"
	"time"

	"golang.org/x/tools/go/packages"

	"github.com/xhd2015/augmentum/instrument/config"
)

// LoadOptions mirrors the subset of xgo's instrument/load.LoadOptions that
// still applies once listing and type-checking are delegated to
// go/packages.
type LoadOptions struct {
	Dir         string
	Env         []string
	IncludeTest bool

	// MaxFileSize rejects (with a per-file error, not a fatal one) any
	// source file larger than this many bytes, carried over from xgo's
	// https://github.com/xhd2015/xgo/issues/303 file-size guard.
	MaxFileSize int64

	Fset *token.FileSet
}

// Package is one loaded, type-checked package plus the original source
// bytes of each of its files, keyed to the same *token.FileSet the rewriter
// and the eligibility gate see positions in.
type Package struct {
	PkgPath string
	Types   *types.Package
	Info    *types.Info
	Errors  []error

	Files []*File
}

// File pairs a parsed syntax tree with the raw bytes it was parsed from;
// the bytes are what support/edit/goedit.Edit splices against, since
// go/packages discards them once it has produced the ast.File.
type File struct {
	AbsPath string
	Name    string
	Content []byte
	Error   error
	Syntax  *ast.File
}

// Packages is the result of a single LoadPackages call: every loaded
// package sharing one token.FileSet, the way xgo's instrument/edit.Packages
// expects to be handed a consistent Fset across its whole working set.
type Packages struct {
	Fset     *token.FileSet
	Packages []*Package
}

// LoadPackages resolves patterns (import paths, "./..." style patterns, or
// directories) the same way `go list`/`go build` would, type-checks them,
// and reads back each file's original bytes for editing.
func LoadPackages(patterns []string, opts LoadOptions) (*Packages, error) {
	fset := opts.Fset
	if fset == nil {
		fset = token.NewFileSet()
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedImports | packages.NeedDeps |
			packages.NeedTypes | packages.NeedTypesInfo | packages.NeedSyntax,
		Dir:   opts.Dir,
		Env:   opts.Env,
		Tests: opts.IncludeTest,
		Fset:  fset,
	}

	begin := time.Now()
	rawPkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	loadPkgs := make([]*Package, 0, len(rawPkgs))
	var allFiles []*File
	for _, rp := range rawPkgs {
		pkg := &Package{
			PkgPath: rp.PkgPath,
			Types:   rp.Types,
			Info:    rp.TypesInfo,
		}
		for _, e := range rp.Errors {
			pkg.Errors = append(pkg.Errors, fmt.Errorf("%s", e.Msg))
		}
		for i, syn := range rp.Syntax {
			absPath := fset.Position(syn.Pos()).Filename
			f := &File{
				AbsPath: absPath,
				Name:    absPath,
				Syntax:  syn,
			}
			if i < len(rp.CompiledGoFiles) {
				f.Name = rp.CompiledGoFiles[i]
			}
			pkg.Files = append(pkg.Files, f)
			allFiles = append(allFiles, f)
		}
		loadPkgs = append(loadPkgs, pkg)
	}

	readOriginalContent(allFiles, opts.MaxFileSize)

	if config.Enabled() {
		config.Debug("load.LoadPackages", "packages", len(loadPkgs), "files", len(allFiles), "elapsed", time.Since(begin))
	}

	return &Packages{Fset: fset, Packages: loadPkgs}, nil
}

// readOriginalContent fills in File.Content for every file, using the same
// bounded worker-pool shape as xgo's instrument/load (credit to
// https://github.com/golang/tools/blob/4ec26d68b3c042c274fa5dcc633cb014846e2dd9/go/packages/packages.go#L1332,
// via https://github.com/xhd2015/xgo/issues/336): go/packages has already
// done the expensive parsing and type-checking, so all that is left here is
// disk IO, which still benefits from being fanned out past one goroutine
// per file.
func readOriginalContent(files []*File, maxFileSize int64) {
	if len(files) == 0 {
		return
	}

	const ioLimit = 20
	limit := ioLimit
	if limit > len(files) {
		limit = len(files)
	}

	work := make(chan *File, len(files))
	for _, f := range files {
		work <- f
	}
	close(work)

	var wg sync.WaitGroup
	for i := 0; i < limit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range work {
				content, err := readFile(f.AbsPath, maxFileSize)
				if err != nil {
					f.Error = err
					continue
				}
				f.Content = content
			}
		}()
	}
	wg.Wait()
}

func readFile(absPath string, maxFileSize int64) ([]byte, error) {
	if maxFileSize > 0 {
		st, err := os.Stat(absPath)
		if err != nil {
			return nil, err
		}
		if st.Size() > maxFileSize {
			return nil, fmt.Errorf("file size %d larger than %d", st.Size(), maxFileSize)
		}
	}
	return os.ReadFile(absPath)
}

// Filter returns the subset of Packages for which f reports true, sharing
// the original Fset.
func (c *Packages) Filter(f func(pkg *Package) bool) *Packages {
	var filtered []*Package
	for _, pkg := range c.Packages {
		if f(pkg) {
			filtered = append(filtered, pkg)
		}
	}
	return &Packages{Fset: c.Fset, Packages: filtered}
}

// CPULimit mirrors xgo's CPU_LIMIT = runtime.GOMAXPROCS(0). Nothing in this
// module calls it: the rewriter processes files sequentially.
func CPULimit() int {
	return runtime.GOMAXPROCS(0)
}
