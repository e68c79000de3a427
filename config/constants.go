package config

import "time"

const (
	// ExportAttrTTL is how long the kernel may cache exported entries and
	// attributes. Mirrored directories change behind the export's back, so
	// keep it short.
	ExportAttrTTL = time.Second

	// MaxExportFileSize caps the content snapshot taken when an exported
	// file is opened
	MaxExportFileSize = 64 * 1024 * 1024 // 64MB
)
