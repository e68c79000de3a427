package requests

import (
	"encoding/json"
	"time"

	"github.com/brettbedarf/vfsh"
)

// NodesFileDTO is the top level of a node definition file
type NodesFileDTO struct {
	Nodes []json.RawMessage `json:"nodes"`
}

// NodeRequestDTO is the JSON representation of [vfsh.NodeRequest]
type NodeRequestDTO struct {
	Path     string                     `json:"path"`
	Type     vfsh.NodeCreateRequestType `json:"type,omitempty"` // Inferred from content/sources when empty
	UUID     *string                    `json:"uuid,omitempty"` // Optional UUID to enable linking at request time
	Atime    *time.Time                 `json:"atime,omitempty"`
	Mtime    *time.Time                 `json:"mtime,omitempty"`
	Ctime    *time.Time                 `json:"ctime,omitempty"`
	Perms    *uint32                    `json:"perms,omitempty"` // i.e. 0755
	OwnerUID *uint32                    `json:"owner_uid,omitempty"`
	OwnerGID *uint32                    `json:"owner_gid,omitempty"`
}

// FileRequestDTO is the JSON representation of [vfsh.FileCreateRequest]
type FileRequestDTO struct {
	NodeRequestDTO
	Content *string           `json:"content,omitempty"`
	Sources []SourceConfigDTO `json:"sources,omitempty"`
}

type DirRequestDTO struct {
	NodeRequestDTO
}

// SourceConfigDTO is the JSON representation of static [vfsh.FileSource] fields
//
// Additional fields depend on the "type" value:
//
// Ex. For type="http" (see [adapters.HTTPSource]):
//
//	URL     string            `json:"url"`
//	Method  *string           `json:"method,omitempty"`
//	Headers map\[string\]string `json:"headers,omitempty"`
//
// See adapters package for built-ins complete field specifications.
type SourceConfigDTO struct {
	Type     string `json:"type"`
	Priority *int   `json:"priority,omitempty"` // Lower number = higher priority, defaults to array index
}
