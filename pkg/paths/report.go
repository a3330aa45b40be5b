package paths

import (
	"os"

	"github.com/nrgaway/topd/pkg/fileinfo"
)

// Info is every representation known for one discovered file, with existence
// checks for the representations that live on disk.
type Info struct {
	Saltenv         string `yaml:"saltenv"`
	FileRoot        string `yaml:"file_root,omitempty"`
	CacheRoot       string `yaml:"cache_root,omitempty"`
	RelPath         string `yaml:"relpath"`
	AbsPath         string `yaml:"abspath"`
	CachePath       string `yaml:"cache_path,omitempty"`
	CachePathExists bool   `yaml:"cache_path_exists,omitempty"`
	LocalPath       string `yaml:"local_path,omitempty"`
	LocalPathExists bool   `yaml:"local_path_exists,omitempty"`
	TopURL          string `yaml:"topd_path"`
	StateName       string `yaml:"state,omitempty"`
	IsPillar        bool   `yaml:"is_pillar,omitempty"`
}

// Info collects every representation for one record.
func (r *Resolver) Info(record fileinfo.PathRecord) Info {
	info := Info{
		Saltenv:   record.Saltenv,
		FileRoot:  record.FileRoot,
		CacheRoot: record.CacheRoot,
		RelPath:   record.RelPath,
		AbsPath:   record.AbsPath,
		TopURL:    MakeTopURL(record.RelPath),
		IsPillar:  record.IsPillar,
	}

	if cachePath, err := r.CachePath(record.AbsPath, record.Saltenv); err == nil && cachePath != "" {
		info.CachePath = cachePath
		_, statErr := os.Stat(cachePath)
		info.CachePathExists = statErr == nil
	}
	if localPath, err := r.LocalPath(record.RelPath, record.Saltenv); err == nil && localPath != "" {
		info.LocalPath = localPath
		_, statErr := os.Stat(localPath)
		info.LocalPathExists = statErr == nil
	}
	if state, err := r.StateName(record.RelPath, record.Saltenv); err == nil {
		info.StateName = state
	}
	return info
}

// Report maps each record's absolute path to its full Info.
func (r *Resolver) Report(records []fileinfo.PathRecord) map[string]Info {
	report := make(map[string]Info, len(records))
	for _, record := range records {
		report[record.AbsPath] = r.Info(record)
	}
	return report
}
