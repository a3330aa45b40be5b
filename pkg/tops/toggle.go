package tops

import (
	"path/filepath"

	"github.com/nrgaway/topd/pkg/errors"
	"github.com/nrgaway/topd/pkg/logging"
)

// Result reports the outcome of a batch toggle, one bucket entry per
// requested name.
type Result struct {
	// Enabled and Disabled list the names whose control entry was created
	// or removed by this call.
	Enabled  []string
	Disabled []string
	// Unchanged lists names already in the requested state.
	Unchanged []string
	// Errors lists names that could not be resolved to a toggle candidate.
	Errors []string
}

// Enable creates control-directory symlinks for the given logical names.
// Names already enabled land in Unchanged and names with no matching top
// file land in Errors; a filesystem failure aborts the batch, returning the
// partial result alongside the error.
func (t *Resolver) Enable(names []string, saltenvs ...string) (*Result, error) {
	if len(names) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "no top names given")
	}
	log := logging.GetLogger("tops")

	status, err := t.Status(names, saltenvs...)
	if err != nil {
		return nil, err
	}
	enabled := nameSet(status.Enabled)

	result := &Result{}
	mutated := false
	defer func() {
		if mutated {
			t.Invalidate()
		}
	}()

	for _, name := range names {
		saltenv, basename := splitQualified(name)
		if hasName(enabled, saltenv, basename) {
			result.Unchanged = append(result.Unchanged, name)
			continue
		}

		record, ok := pickCandidate(status.Disabled, saltenv, basename)
		if !ok {
			log.Warn().Str("name", name).Msg("no top file found to enable")
			result.Errors = append(result.Errors, name)
			continue
		}

		linkPath := filepath.Join(record.Root(), t.controlRelPath(record.Saltenv, record.TopName))
		if err := t.fs.MkdirAll(filepath.Dir(linkPath), 0o755); err != nil {
			return result, errors.Wrapf(err, errors.ErrDirCreate,
				"failed to create control directory for %s", name).
				WithDetail("path", filepath.Dir(linkPath))
		}

		// Check-then-create: an existing entry is never overwritten, even
		// when discovery missed it.
		if _, err := t.fs.Lstat(linkPath); err == nil {
			result.Unchanged = append(result.Unchanged, name)
			continue
		}
		if err := t.fs.Symlink(record.AbsPath, linkPath); err != nil {
			return result, errors.Wrapf(err, errors.ErrSymlinkCreate,
				"failed to enable top %s", name).
				WithDetail("link", linkPath).
				WithDetail("target", record.AbsPath)
		}

		log.Info().Str("name", name).Str("link", linkPath).
			Str("target", record.AbsPath).Msg("enabled top")
		mutated = true
		result.Enabled = append(result.Enabled, name)
	}
	return result, nil
}

// Disable removes the control-directory symlinks for the given logical
// names. Names already disabled land in Unchanged; control entries that are
// real files rather than symlinks are left alone and reported in Errors.
func (t *Resolver) Disable(names []string, saltenvs ...string) (*Result, error) {
	if len(names) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "no top names given")
	}
	log := logging.GetLogger("tops")

	status, err := t.Status(names, saltenvs...)
	if err != nil {
		return nil, err
	}
	disabled := nameSet(status.Disabled)

	result := &Result{}
	mutated := false
	defer func() {
		if mutated {
			t.Invalidate()
		}
	}()

	for _, name := range names {
		saltenv, basename := splitQualified(name)

		record, enabled := pickCandidate(status.Enabled, saltenv, basename)
		if !enabled {
			if hasName(disabled, saltenv, basename) {
				result.Unchanged = append(result.Unchanged, name)
			} else {
				log.Warn().Str("name", name).Msg("no top file found to disable")
				result.Errors = append(result.Errors, name)
			}
			continue
		}

		if record.RealPath == "" {
			// A real file in the control directory was placed there by hand;
			// removing it would destroy data, not undo an Enable.
			log.Warn().Str("name", name).Str("path", record.AbsPath).
				Msg("control entry is not a symlink")
			result.Errors = append(result.Errors, name)
			continue
		}
		if err := t.fs.Remove(record.AbsPath); err != nil {
			return result, errors.Wrapf(err, errors.ErrSymlinkRemove,
				"failed to disable top %s", name).
				WithDetail("link", record.AbsPath)
		}

		log.Info().Str("name", name).Str("link", record.AbsPath).Msg("disabled top")
		mutated = true
		result.Disabled = append(result.Disabled, name)
	}
	return result, nil
}

// nameSet indexes records by logical name and by env-qualified name.
func nameSet(records []Record) map[string]Record {
	set := make(map[string]Record, len(records)*2)
	for _, record := range records {
		if _, dup := set[record.TopName]; !dup {
			set[record.TopName] = record
		}
		set[record.Saltenv+"|"+record.TopName] = record
	}
	return set
}

func hasName(set map[string]Record, saltenv, basename string) bool {
	key := basename
	if saltenv != "" {
		key = saltenv + "|" + basename
	}
	_, ok := set[key]
	return ok
}

// pickCandidate returns the first record matching the name, honoring an
// explicit environment qualifier. Records arrive base first, so an
// unqualified name resolves to the base environment's copy when several
// environments carry it.
func pickCandidate(records []Record, saltenv, basename string) (Record, bool) {
	for _, record := range records {
		if record.TopName != basename {
			continue
		}
		if saltenv != "" && record.Saltenv != saltenv {
			continue
		}
		return record, true
	}
	return Record{}, false
}
