// Package filesystem abstracts the filesystem operations topd performs so
// that enable/disable symlink handling and file reads can run against a real
// or an in-memory filesystem.
package filesystem

import (
	"io/fs"
)

// FS is the filesystem interface required for topd operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	Lstat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Other operations
	Remove(name string) error
}
