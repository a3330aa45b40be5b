// Package render defines the two collaborator contracts the resolution core
// consumes, rendering a path into a structured top document and listing the
// logical state names of an environment, plus file-backed implementations
// for local roots.
//
// The contracts are narrow on purpose: the real template pipeline, pillar
// subsystem, and network file client live behind them.
package render

import (
	"path/filepath"
	"strings"

	"github.com/nrgaway/topd/pkg/topfile"
)

// Renderer turns a file into a structured top document. An empty (nil)
// document with a nil error means the path had no content to contribute;
// callers log and skip it. Implementations must be pure with respect to the
// resolution core and may return a render error, which the core propagates.
type Renderer interface {
	Render(path, saltenv string) (*topfile.Document, error)
}

// StateLister lists the logical state names available in an environment,
// used for include-glob expansion.
type StateLister interface {
	ListStates(saltenv string) ([]string, error)
}

// StateName converts a relative path to its dotted logical state name:
// "salt/minion.sls" becomes "salt.minion" and "salt/init.sls" becomes "salt".
func StateName(relPath string) string {
	name := strings.ToLower(filepath.ToSlash(relPath))
	name = strings.SplitN(name, "/init.sls", 2)[0]
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.ReplaceAll(name, "/", ".")
}
