// Package tops resolves logical top-file names across environments and
// toggles them through control-directory symlinks.
package tops

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nrgaway/topd/pkg/fileinfo"
	"github.com/nrgaway/topd/pkg/matcher"
)

// Record is a top file's attribute record extended with its dotted logical
// name and, for control-directory symlinks, the resolved link target.
type Record struct {
	fileinfo.PathRecord
	// TopName is the dotted logical name, e.g. "salt.minion".
	TopName string
	// RealPath is the symlink target, empty when the file is not a symlink.
	RealPath string
}

// newRecord computes the derived fields once, at discovery time.
func (t *Resolver) newRecord(record fileinfo.PathRecord) Record {
	top := Record{
		PathRecord: record,
		TopName:    t.TopName(record.RelPath),
	}
	if info, err := os.Lstat(record.AbsPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if real, err := filepath.EvalSymlinks(record.AbsPath); err == nil {
			top.RealPath = real
		}
	}
	return top
}

// TopName converts a relative path to its dotted logical top name: the
// control-directory alias and environment qualifier are stripped, an
// /init.top suffix collapses to the parent directory, the extension goes,
// and separators become dots.
//
//	salt/minion.top       -> salt.minion
//	salt/init.top         -> salt
//	_topd/base|salt.top   -> salt
//	_topd/base/salt.top   -> salt
func (t *Resolver) TopName(relPath string) string {
	name := strings.ToLower(filepath.ToSlash(relPath))

	if prefix := t.controlDir + "/"; strings.HasPrefix(name, prefix) {
		name = strings.TrimPrefix(name, prefix)
		if i := strings.IndexByte(name, '|'); i >= 0 {
			name = name[i+1:]
		} else if i := strings.IndexByte(name, '/'); i >= 0 {
			name = name[i+1:]
		}
	}

	name = strings.SplitN(name, "/init.top", 2)[0]
	name = strings.TrimSuffix(name, ".top")
	return strings.ReplaceAll(name, "/", ".")
}

// PathOf reverses TopName: the candidate relative paths a dotted logical
// name can live at, in resolution order. The flat layout is tried before the
// init-file layout.
func (t *Resolver) PathOf(name string) []string {
	base := strings.ReplaceAll(strings.ToLower(name), ".", "/")
	return []string{base + ".top", base + "/init.top"}
}

// controlRelPath is the control-directory entry for a logical name, in the
// pipe-separated form Enable writes: _topd/<env>|<name>.top.
func (t *Resolver) controlRelPath(saltenv, name string) string {
	return filepath.Join(t.controlDir, saltenv+"|"+name+".top")
}

// controlPatterns builds raw regex fragments matching both control-directory
// forms (_topd/<env>|<name>.top and _topd/<env>/<name>.top) for the given
// logical names across the searched environments, or every name when none
// are given. Raw patterns keep glob-mode compiles from escaping them.
func (t *Resolver) controlPatterns(names []string, saltenvs []string) []matcher.Pattern {
	if len(names) == 0 {
		names = []string{""}
	}

	dir := matcher.Translate(t.controlDir + "/")
	sep := matcher.Translate("/")

	var patterns []matcher.Pattern
	for _, name := range names {
		saltenv, basename := splitQualified(name)

		base := ".*"
		if basename != "" {
			base = matcher.Translate(basename)
		}

		envs := saltenvs
		if saltenv != "" {
			envs = []string{saltenv}
		}
		for _, env := range envs {
			patterns = append(patterns,
				matcher.Raw(dir+"("+env+`)\|`+base+`\.top`),
				matcher.Raw(dir+"("+env+")"+sep+base+`\.top`),
			)
		}
	}
	return patterns
}

// splitQualified splits an env-qualified request like "base|salt.minion"
// into its environment and basename; the environment is empty for plain
// names. A trailing .top extension is dropped either way.
func splitQualified(name string) (saltenv, basename string) {
	basename = strings.TrimSuffix(name, ".top")
	if i := strings.IndexByte(basename, '|'); i >= 0 {
		return basename[:i], basename[i+1:]
	}
	return "", basename
}

// envFix corrects a record's declared environment when its control-directory
// path encodes a different one. Walks attribute each record to the
// environment whose root it was found under, but a control entry like
// _topd/dev|x.top names its own environment authoritatively.
type envFix struct {
	re *regexp.Regexp
}

func newEnvFix(controlDir string) *envFix {
	expr := `\A` + matcher.Translate(controlDir+"/") + `([^/|]+)[|/].*\.top\z`
	return &envFix{re: regexp.MustCompile(expr)}
}

func (f *envFix) Transform(record fileinfo.PathRecord) fileinfo.PathRecord {
	m := f.re.FindStringSubmatch(filepath.ToSlash(record.RelPath))
	if m == nil || m[1] == record.Saltenv {
		return record
	}
	record.Saltenv = m[1]
	return record
}
