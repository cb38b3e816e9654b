package inventory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/matzehuels/pkgtree/pkg/errors"
)

// reqNameRE matches the package name at the start of a Requires-Dist value,
// optionally followed by an extras list in brackets.
var reqNameRE = regexp.MustCompile(`^([A-Za-z0-9][-A-Za-z0-9._]*)(\[[^\]]*\])?`)

// DistInfo scans site-packages directories for *.dist-info metadata, the
// on-disk layout pip uses for installed distributions. Each directory is
// expected to contain a METADATA file with Name, Version and Requires-Dist
// headers.
type DistInfo struct {
	// Paths are the site-packages directories to scan. When empty,
	// DefaultSitePackages locations are used.
	Paths []string

	// LocalOnly restricts scanning to the active virtualenv.
	LocalOnly bool

	// UserOnly restricts scanning to the per-user site directory.
	UserOnly bool
}

// Packages scans all configured directories and returns one Record per
// distribution found, sorted by scan path for reproducible output.
func (s *DistInfo) Packages(ctx context.Context) ([]Record, error) {
	paths := s.Paths
	if len(paths) == 0 {
		paths = DefaultSitePackages(s.LocalOnly, s.UserOnly)
	}
	if len(paths) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInventory,
			"no site-packages directories found; pass --site-packages explicitly")
	}

	var records []Record
	seen := make(map[string]bool)
	for _, dir := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		infos, err := filepath.Glob(filepath.Join(dir, "*.dist-info"))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInventory, err, "scan %s", dir)
		}
		sort.Strings(infos)
		for _, info := range infos {
			rec, err := readMetadata(filepath.Join(info, "METADATA"))
			if err != nil {
				// A distribution without readable metadata is skipped,
				// not fatal: partial environments are common.
				continue
			}
			if rec.Name == "" || seen[rec.Key] {
				continue
			}
			seen[rec.Key] = true
			records = append(records, rec)
		}
	}
	return records, nil
}

// readMetadata parses the RFC 822 style header block of a METADATA file.
// Only the Name, Version and Requires-Dist headers are consumed; parsing
// stops at the first blank line (the long-description body).
func readMetadata(path string) (Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return Record{}, err
	}
	defer f.Close()

	var rec Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch name {
		case "Name":
			rec.Name = value
			rec.Key = NormalizeKey(value)
		case "Version":
			rec.Version = value
		case "Requires-Dist":
			if req, ok := parseRequiresDist(value); ok {
				rec.Requires = append(rec.Requires, req)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// parseRequiresDist parses a Requires-Dist value such as
//
//	requests (>=2.0,<3.0)
//	urllib3>=1.26 ; python_version >= "3.6"
//	tomli>=1.1.0; extra == "toml"
//
// Requirements guarded by an extras marker are not part of the base install
// and are skipped.
func parseRequiresDist(value string) (Requirement, bool) {
	spec, marker, _ := strings.Cut(value, ";")
	if strings.Contains(marker, "extra") {
		return Requirement{}, false
	}
	spec = strings.TrimSpace(spec)

	m := reqNameRE.FindStringSubmatch(spec)
	if m == nil {
		return Requirement{}, false
	}
	constraint := strings.TrimSpace(spec[len(m[0]):])
	constraint = strings.TrimPrefix(constraint, "(")
	constraint = strings.TrimSuffix(constraint, ")")

	return Requirement{Name: m[1], Constraint: strings.TrimSpace(constraint)}, true
}

// DefaultSitePackages returns the site-packages directories to scan when no
// explicit paths are given. LocalOnly keeps only the active virtualenv;
// UserOnly keeps only the per-user site directory. With neither set, the
// virtualenv, user and system locations are all scanned.
func DefaultSitePackages(localOnly, userOnly bool) []string {
	var dirs []string

	venv := os.Getenv("VIRTUAL_ENV")
	if venv != "" {
		dirs = append(dirs, globSitePackages(filepath.Join(venv, "lib"))...)
	}
	if localOnly {
		return dirs
	}

	var user []string
	if home, err := os.UserHomeDir(); err == nil {
		user = globSitePackages(filepath.Join(home, ".local", "lib"))
	}
	if userOnly {
		return user
	}
	dirs = append(dirs, user...)

	for _, prefix := range []string{"/usr/lib", "/usr/local/lib"} {
		dirs = append(dirs, globSitePackages(prefix)...)
	}
	return dirs
}

// globSitePackages expands <prefix>/python*/site-packages.
func globSitePackages(prefix string) []string {
	matches, err := filepath.Glob(filepath.Join(prefix, "python*", "site-packages"))
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}
