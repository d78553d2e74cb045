package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/samber/lo"

	astutil "github.com/xhd2015/augmentum/instrument/ast"
	"github.com/xhd2015/augmentum/instrument/config"
	"github.com/xhd2015/augmentum/instrument/eligibility"
	"github.com/xhd2015/augmentum/instrument/load"
	"github.com/xhd2015/augmentum/instrument/rewrite"
	"github.com/xhd2015/augmentum/instrument/script"
	"github.com/xhd2015/augmentum/support/strutil"
)

// run wires H->G->E: load the requested packages, compose the eligibility
// predicate out of the target-functions allowlist and the optional script
// bridge, rewrite every eligible function, then either write the result
// back (the default) or divert it into --emit-transformed-ir's shadow
// tree, finishing with an optional stats dump.
func run(patterns []string, flags runFlags) error {
	closer, err := config.SetupDebugLog(flags.LogDebug)
	if err != nil {
		return fmt.Errorf("log-debug: %w", err)
	}
	if closer != nil {
		defer closer()
	}

	pred, err := buildPredicate(flags)
	if err != nil {
		return err
	}

	pkgs, err := load.LoadPackages(patterns, load.LoadOptions{Dir: flags.Dir})
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	for _, pkg := range pkgs.Packages {
		for _, err := range pkg.Errors {
			fmt.Fprintf(os.Stderr, "%s: %v\n", pkg.PkgPath, err)
		}
	}

	config.Debug("loaded packages", "count", len(pkgs.Packages))

	res, err := rewrite.Rewrite(pkgs, pred)
	if err != nil {
		return fmt.Errorf("rewrite: %w", err)
	}

	if !flags.DryRun {
		dir := flags.EmitTransformedIRDir
		for absPath, src := range res.Sources {
			target := absPath
			if dir != "" {
				target = filepath.Join(dir, absPath)
			}
			if err := writeSource(target, src); err != nil {
				return err
			}
		}
	} else if flags.EmitTransformedIRDir != "" {
		for absPath, src := range res.Sources {
			target := filepath.Join(flags.EmitTransformedIRDir, absPath)
			if err := writeSource(target, src); err != nil {
				return err
			}
		}
	}

	if flags.InstrumentationStatsDir != "" {
		if err := writeStats(flags.InstrumentationStatsDir, res); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "instrumented %d function(s) across %d file(s)\n", len(res.Funcs), len(res.Sources))
	return nil
}

func buildPredicate(flags runFlags) (eligibility.Predicate, error) {
	var predicates []eligibility.Predicate
	if flags.TargetFunctions != "" {
		tf, err := config.LoadTargetFunctions(flags.TargetFunctions)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, tf)
	}
	if flags.PredicateScript != "" {
		sp, err := script.Load(flags.PredicateScript)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, sp)
	}
	return eligibility.Compose(predicates...), nil
}

func writeSource(path, src string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(src), 0o644)
}

// writeStats dumps a JSON summary of every instrumented function, grouped
// by package, plus a go-spew rendering of the raw result for
// troubleshooting (written whether or not --log-debug is set) - spew.Sdump
// is deliberately verbose,
// the way a developer would reach for it when a JSON summary alone doesn't
// show enough.
func writeStats(dir string, res *rewrite.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	byPkg := lo.GroupBy(res.Funcs, func(f rewrite.FuncResult) string { return f.PkgPath })
	pkgPaths := lo.Keys(byPkg)

	var body []string
	for _, pkgPath := range pkgPaths {
		names := lo.Map(byPkg[pkgPath], func(f rewrite.FuncResult, _ int) string { return f.IdentityName })
		body = append(body, fmt.Sprintf("%q: [%s]", pkgPath, astutil.JoinQuoteNames(names, ", ")))
	}
	summary := "{\n" + strutil.IndentLines(joinComma(body), "  ") + "\n}\n"
	if err := os.WriteFile(filepath.Join(dir, "summary.json"), []byte(summary), 0o644); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "raw.spew"), []byte(spew.Sdump(res.Funcs)), 0o644)
}

func joinComma(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += ",\n"
		}
		out += l
	}
	return out
}
