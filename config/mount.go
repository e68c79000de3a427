package config

const (
	DefaultFsName = "vfsh"
	DefaultName   = "vfsh"
)

// MountConfig mirrors a host directory into the VFS root under Name.
// Exclude holds doublestar patterns, matched against the host path relative
// to Path, for entries that should stay hidden.
type MountConfig struct {
	Name    string   `yaml:"name" json:"name"`
	Path    string   `yaml:"path" json:"path"`
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
}

// ExportOptions holds high-level settings for the read-only FUSE export.
// No go-fuse types are exposed here.
type ExportOptions struct {
	MountPoint string // where to export; no export when empty
	Debug      bool   // fuse debug logs
	FsName     string // mount's FsName
	Name       string // mount's Name
}
