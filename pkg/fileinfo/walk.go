package fileinfo

import (
	"os"
	"path/filepath"

	"github.com/nrgaway/topd/pkg/errors"
	"github.com/nrgaway/topd/pkg/logging"
)

// WalkContext carries per-walk attributes applied to every record built
// during the walk.
type WalkContext struct {
	// CacheDir distinguishes cache roots from file roots.
	CacheDir string
	// IsPillar marks records discovered under pillar roots.
	IsPillar bool
}

// walkDirs yields every file under the given directories. A root that is not
// a directory is replaced by its parent directory. Symlinked directories are
// followed when followLinks is set; a visited set keeps a self-referential
// link from looping the walk forever.
func walkDirs(dirs []string, followLinks bool, visit func(root, absPath string) error) error {
	logger := logging.GetLogger("fileinfo.walk")

	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			logger.Trace().Err(err).Str("dir", dir).Msg("Skipping unreadable root")
			continue
		}
		if !info.IsDir() {
			dir = filepath.Dir(dir)
		}

		visited := make(map[string]struct{})
		if err := walkDir(dir, dir, followLinks, visited, visit); err != nil {
			return err
		}
	}
	return nil
}

func walkDir(root, dir string, followLinks bool, visited map[string]struct{}, visit func(root, absPath string) error) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		resolved = dir
	}
	if _, seen := visited[resolved]; seen {
		return nil
	}
	visited[resolved] = struct{}{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrap(err, errors.ErrFileAccess, "cannot read directory").
			WithDetail("dir", dir)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		isDir := entry.IsDir()
		if !isDir && entry.Type()&os.ModeSymlink != 0 {
			// Stat resolves the link target
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				if !followLinks {
					continue
				}
				isDir = true
			}
		}

		if isDir {
			if err := walkDir(root, path, followLinks, visited, visit); err != nil {
				return err
			}
			continue
		}
		if err := visit(root, path); err != nil {
			return err
		}
	}
	return nil
}
