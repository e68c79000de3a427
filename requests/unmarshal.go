// Package requests decodes node definition files into filesystem requests
package requests

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/brettbedarf/vfsh"
	"github.com/brettbedarf/vfsh/adapters"
	"github.com/brettbedarf/vfsh/filesystem"
	"github.com/brettbedarf/vfsh/internal/util"
)

// Definition is one decoded node; exactly one field is set
type Definition struct {
	Dir  *vfsh.DirCreateRequest
	File *vfsh.FileCreateRequest
}

func (d Definition) Path() string {
	if d.Dir != nil {
		return d.Dir.Path
	}
	return d.File.Path
}

// Decoder turns node definitions into requests. Sources are built through
// Registry; OwnerUID and OwnerGID are used when a node names no owner.
type Decoder struct {
	Registry *adapters.Registry
	OwnerUID uint32
	OwnerGID uint32
}

// DecodeFile reads a node definition file. The format follows the file
// extension: .yaml/.yml or .json.
func (d *Decoder) DecodeFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal nodes file: %w", err)
		}
	case ".json":
	default:
		return nil, fmt.Errorf("unknown nodes file extension: %s", path)
	}
	return d.Decode(data)
}

// yamlToJSON re-encodes a YAML document as JSON so sources reach the
// adapter providers in the one format they parse
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// Decode decodes a JSON document of the form {"nodes": [...]}
func (d *Decoder) Decode(data []byte) ([]Definition, error) {
	var file NodesFileDTO
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal nodes file: %w", err)
	}

	defs := make([]Definition, 0, len(file.Nodes))
	for i, raw := range file.Nodes {
		def, err := d.decodeNode(raw)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (d *Decoder) decodeNode(raw []byte) (Definition, error) {
	typ, err := GetNodeType(raw)
	if err != nil {
		return Definition{}, err
	}
	switch typ {
	case vfsh.FileNodeType:
		req, err := d.UnmarshalFileRequest(raw)
		return Definition{File: req}, err
	case vfsh.DirNodeType:
		req, err := d.UnmarshalDirRequest(raw)
		return Definition{Dir: req}, err
	default:
		return Definition{}, fmt.Errorf("unknown node type %q", typ)
	}
}

// GetNodeType extracts the node type from JSON without full unmarshaling.
// Nodes without a type are files when they carry content or sources.
func GetNodeType(data []byte) (vfsh.NodeCreateRequestType, error) {
	var meta struct {
		Type    vfsh.NodeCreateRequestType `json:"type"`
		Content *string                    `json:"content"`
		Sources []json.RawMessage          `json:"sources"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", err
	}
	if meta.Type != "" {
		return meta.Type, nil
	}
	if meta.Content != nil || len(meta.Sources) > 0 {
		return vfsh.FileNodeType, nil
	}
	return vfsh.DirNodeType, nil
}

// UnmarshalFileRequest handles file-specific unmarshaling with sources
func (d *Decoder) UnmarshalFileRequest(data []byte) (*vfsh.FileCreateRequest, error) {
	var dto FileRequestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, err
	}
	if err := validatePath(dto.Path); err != nil {
		return nil, err
	}

	req := &vfsh.FileCreateRequest{
		NodeRequest: d.convertNodeDTO(dto.NodeRequestDTO, vfsh.FileNodeType, 0o644),
		Content:     dto.Content,
	}
	if dto.Content != nil {
		return req, nil
	}

	sources, err := d.unmarshalSources(dto.Path, dto.Sources, data)
	if err != nil {
		return nil, err
	}
	req.Sources = sources
	return req, nil
}

// UnmarshalDirRequest handles explicit directory unmarshaling (no sources)
func (d *Decoder) UnmarshalDirRequest(data []byte) (*vfsh.DirCreateRequest, error) {
	var dto DirRequestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, err
	}
	if err := validatePath(dto.Path); err != nil {
		return nil, err
	}
	return &vfsh.DirCreateRequest{
		NodeRequest: d.convertNodeDTO(dto.NodeRequestDTO, vfsh.DirNodeType, 0o755),
	}, nil
}

func validatePath(path string) error {
	if !strings.HasPrefix(path, "/") || strings.Trim(path, "/") == "" {
		return fmt.Errorf("invalid node path %q: must be absolute below the root", path)
	}
	if filesystem.HasGlob(path) {
		return fmt.Errorf("invalid node path %q: wildcards are not allowed", path)
	}
	return nil
}

// unmarshalSources builds an adapter per source. Sources whose adapter
// cannot be built are skipped; at least one must remain.
func (d *Decoder) unmarshalSources(path string, sourceDTOs []SourceConfigDTO, rawData []byte) ([]vfsh.FileSource, error) {
	logger := util.GetLogger("Requests.unmarshalSources")

	// Extract raw sources array for the adapter registry
	var rawMessage struct {
		Sources []json.RawMessage `json:"sources"`
	}
	if err := json.Unmarshal(rawData, &rawMessage); err != nil {
		return nil, err
	}

	var sources []vfsh.FileSource
	var errs []error
	for i, rawSource := range rawMessage.Sources {
		adapter, err := d.Registry.NewAdapter(rawSource)
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Int("source", i).Msg("Skipping unusable source")
			errs = append(errs, err)
			continue
		}

		// Apply priority default
		priority := i
		if sourceDTOs[i].Priority != nil {
			priority = *sourceDTOs[i].Priority
		}

		sources = append(sources, vfsh.FileSource{
			FileAdapter: adapter,
			Priority:    priority,
		})
	}

	if len(sources) == 0 {
		errs = append(errs, fmt.Errorf("no usable content or sources for %s", path))
		return nil, errors.Join(errs...)
	}
	return sources, nil
}

// Conversion logic with defaults in the unmarshaling layer
func (d *Decoder) convertNodeDTO(dto NodeRequestDTO, typ vfsh.NodeCreateRequestType, perms uint32) vfsh.NodeRequest {
	now := time.Now()

	return vfsh.NodeRequest{
		Path:     dto.Path,
		Type:     typ,
		UUID:     valueOrDefault(dto.UUID, uuid.New().String()),
		Atime:    valueOrDefault(dto.Atime, now),
		Mtime:    valueOrDefault(dto.Mtime, now),
		Ctime:    valueOrDefault(dto.Ctime, now),
		Perms:    valueOrDefault(dto.Perms, perms),
		OwnerUID: valueOrDefault(dto.OwnerUID, d.OwnerUID),
		OwnerGID: valueOrDefault(dto.OwnerGID, d.OwnerGID),
	}
}

func valueOrDefault[T any](ptr *T, defaultVal T) T {
	if ptr != nil {
		return *ptr
	}
	return defaultVal
}

// Apply adds the definitions to fs in order. Failing nodes are logged and
// skipped; their errors are joined in the result.
func Apply(fs *filesystem.FileSystem, defs []Definition) error {
	logger := util.GetLogger("Requests.Apply")

	var errs []error
	for _, def := range defs {
		var err error
		if def.Dir != nil {
			_, err = fs.AddDirNode(def.Dir)
		} else {
			_, err = fs.AddFileNode(def.File)
		}
		if err != nil {
			logger.Warn().Err(err).Str("path", def.Path()).Msg("Failed to add node")
			errs = append(errs, fmt.Errorf("%s: %w", def.Path(), err))
		}
	}
	return errors.Join(errs...)
}
