package vfsh

import "time"

// NodeRequest has common fields embedded in concrete request types
type NodeRequest struct {
	Path     string
	Type     NodeCreateRequestType
	UUID     string    // Optional UUID to enable linking at request time
	Atime    time.Time // Last Accessed at
	Mtime    time.Time // Last Modified at
	Ctime    time.Time // Created at (Default current time)
	Perms    uint32    // i.e. 0755
	OwnerUID uint32
	OwnerGID uint32
}

// NodeCreateRequestType valid types are FileNodeType "file", DirNodeType "dir"
type NodeCreateRequestType string

const (
	FileNodeType NodeCreateRequestType = "file"
	DirNodeType  NodeCreateRequestType = "dir"
)

// FileCreateRequest creates a static file when Content is set, otherwise
// an external file backed by the first usable source.
type FileCreateRequest struct {
	NodeRequest
	Content *string
	Sources []FileSource
}

type DirCreateRequest struct {
	NodeRequest
}
