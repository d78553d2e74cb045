// Package config holds the augmentumc compiler-pass flags and the
// target-functions allowlist they load: a reshaping of xgo's
// instrument/config stdlib-whitelist tables (defaultStdPkgConfig,
// CheckInstrument) from "reject everything except a hardcoded stdlib
// subset" into "accept everything except when an explicit allowlist file
// says otherwise".
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/xhd2015/augmentum/instrument/eligibility"
	"github.com/xhd2015/augmentum/support/pattern"
)

// Flags are the augmentumc driver's pass-level settings. cmd/augmentumc
// binds the same options into its own runFlags struct rather than this
// type.
type Flags struct {
	TargetFunctions         string
	PredicateScript         string
	DryRun                  bool
	EmitTransformedIRDir    string
	InstrumentationStatsDir string
	LogDebug                string
}

// anyIdentity is the CSV sentinel for "every function in this package".
const anyIdentity = "*"

// TargetFunctions is an eligibility.Predicate backed by the CSV file named
// by --target-functions. A package path may be a literal import path or a
// support/pattern glob (e.g. "github.com/acme/**"); an identity name of
// "*" accepts every function in a matched package.
type TargetFunctions struct {
	literalPkgs map[string]map[string]bool // pkgPath -> identityName -> true
	globPkgs    []globEntry
}

type globEntry struct {
	pattern *pattern.Pattern
	idents  map[string]bool
}

var _ eligibility.Predicate = (*TargetFunctions)(nil)

// LoadTargetFunctions parses the semicolon-delimited target-functions CSV:
// first column package path (literal or glob), second column identity
// name ("Name", "(*Recv).Name", or "*" for every function); the first
// line is treated as a header and ignored; trailing carriage returns are
// stripped to tolerate CRLF-authored files.
func LoadTargetFunctions(path string) (*TargetFunctions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("target-functions: %w", err)
	}
	defer f.Close()

	tf := &TargetFunctions{literalPkgs: map[string]map[string]bool{}}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if lineNo == 1 {
			continue // header
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := strings.SplitN(line, ";", 2)
		if len(cols) != 2 {
			return nil, fmt.Errorf("target-functions:%d: expected 2 columns, got %q", lineNo, line)
		}
		pkgPath := strings.TrimSpace(cols[0])
		identityName := strings.TrimSpace(cols[1])
		tf.add(pkgPath, identityName)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("target-functions: %w", err)
	}
	return tf, nil
}

func (tf *TargetFunctions) add(pkgPath, identityName string) {
	if strings.ContainsAny(pkgPath, "*") {
		tf.globPkgs = append(tf.globPkgs, globEntry{
			pattern: pattern.CompilePattern(pkgPath),
			idents:  map[string]bool{identityName: true},
		})
		return
	}
	idents, ok := tf.literalPkgs[pkgPath]
	if !ok {
		idents = map[string]bool{}
		tf.literalPkgs[pkgPath] = idents
	}
	idents[identityName] = true
}

func (tf *TargetFunctions) ShouldInstrumentPackage(pkgPath string) bool {
	if _, ok := tf.literalPkgs[pkgPath]; ok {
		return true
	}
	for _, g := range tf.globPkgs {
		if g.pattern.Match(pkgPath) {
			return true
		}
	}
	return false
}

func (tf *TargetFunctions) ShouldInstrumentFunction(pkgPath, identityName string) bool {
	if idents, ok := tf.literalPkgs[pkgPath]; ok {
		if idents[anyIdentity] || idents[identityName] {
			return true
		}
	}
	for _, g := range tf.globPkgs {
		if g.pattern.Match(pkgPath) && (g.idents[anyIdentity] || g.idents[identityName]) {
			return true
		}
	}
	return false
}
