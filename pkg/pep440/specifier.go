// Package pep440 implements parsing and evaluation of Python-style version
// specifiers, e.g. ">=1.0,<2.0" or "~=1.4.2".
//
// Specifiers are comma-separated lists of clauses, each an operator followed
// by a version. Supported operators are ==, ===, !=, <=, >=, <, > and ~=
// (compatible release), plus the ".*" wildcard suffix on == and !=.
//
// Evaluation is deliberately lenient: parsing never fails (an unrecognized
// clause is kept verbatim and treated as always satisfied), and versions that
// cannot be ordered are compared textually for equality operators and treated
// as satisfied otherwise. An installed environment can contain version
// strings no comparison scheme fully covers; a specifier that cannot be
// evaluated must not be reported as a conflict.
package pep440

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// operators in match order: longer operators first so "==" does not
// shadow "===" and "<" does not shadow "<=".
var operators = []string{"===", "==", "!=", "<=", ">=", "~=", "<", ">"}

// clause is a single operator/version pair within a specifier.
// An empty op marks an unrecognized clause kept only for display.
type clause struct {
	op      string
	version string
}

// Specifier is a parsed version constraint. The zero value matches any
// version and renders as the empty string.
type Specifier struct {
	clauses []clause
}

// Parse parses a comma-separated specifier string. Parsing is lenient and
// never fails: clauses without a recognized operator are preserved verbatim
// and treated as always satisfied.
func Parse(s string) Specifier {
	var spec Specifier
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		spec.clauses = append(spec.clauses, parseClause(part))
	}
	return spec
}

func parseClause(s string) clause {
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return clause{op: op, version: strings.TrimSpace(s[len(op):])}
		}
	}
	return clause{version: s}
}

// IsEmpty reports whether the specifier has no clauses, i.e. any version
// satisfies it.
func (s Specifier) IsEmpty() bool {
	return len(s.clauses) == 0
}

// String renders the specifier with clauses sorted descending by operator
// then version, so ">=1.0,<2.0" always renders with the lower bound first.
// Returns the empty string for an empty specifier.
func (s Specifier) String() string {
	if len(s.clauses) == 0 {
		return ""
	}
	sorted := make([]clause, len(s.clauses))
	copy(sorted, s.clauses)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && clauseLess(sorted[j-1], sorted[j]); j-- {
			sorted[j-1], sorted[j] = sorted[j], sorted[j-1]
		}
	}
	parts := make([]string, len(sorted))
	for i, c := range sorted {
		parts[i] = c.op + c.version
	}
	return strings.Join(parts, ",")
}

// clauseLess orders clauses ascending by (op, version); String sorts with it
// inverted to get the descending order.
func clauseLess(a, b clause) bool {
	if a.op != b.op {
		return a.op < b.op
	}
	return a.version < b.version
}

// Satisfied reports whether the given installed version satisfies every
// clause of the specifier. An empty specifier is satisfied by any version.
func (s Specifier) Satisfied(version string) bool {
	for _, c := range s.clauses {
		if !clauseSatisfied(c, version) {
			return false
		}
	}
	return true
}

func clauseSatisfied(c clause, installed string) bool {
	switch c.op {
	case "":
		return true
	case "===":
		return installed == c.version
	case "~=":
		return compatibleRelease(c.version, installed)
	}

	if strings.HasSuffix(c.version, ".*") && (c.op == "==" || c.op == "!=") {
		match := wildcardMatch(c.version, installed)
		if c.op == "==" {
			return match
		}
		return !match
	}

	iv, err1 := semver.NewVersion(installed)
	cv, err2 := semver.NewVersion(c.version)
	if err1 != nil || err2 != nil {
		// Versions outside the ordered scheme: fall back to textual
		// equality for == and !=, lenient otherwise.
		switch c.op {
		case "==":
			return installed == c.version
		case "!=":
			return installed != c.version
		}
		return true
	}

	cmp := iv.Compare(cv)
	switch c.op {
	case "==":
		return cmp == 0
	case "!=":
		return cmp != 0
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	}
	return true
}

// wildcardMatch reports whether installed falls under a "X.Y.*" pattern by
// release-segment prefix comparison.
func wildcardMatch(pattern, installed string) bool {
	prefix := strings.TrimSuffix(pattern, "*") // keeps the trailing dot
	return strings.HasPrefix(installed+".", prefix)
}

// compatibleRelease implements the ~= operator: ~=X.Y(.Z) means >=X.Y(.Z)
// and <X.(Y+1) (or <(X+1).0 when only two components are given).
func compatibleRelease(base, installed string) bool {
	iv, err1 := semver.NewVersion(installed)
	bv, err2 := semver.NewVersion(base)
	if err1 != nil || err2 != nil {
		return true
	}
	if iv.Compare(bv) < 0 {
		return false
	}
	var upper semver.Version
	if strings.Count(base, ".") >= 2 {
		upper = bv.IncMinor()
	} else {
		upper = bv.IncMajor()
	}
	return iv.Compare(&upper) < 0
}
