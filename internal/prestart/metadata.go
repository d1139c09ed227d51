package prestart

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"spoolcheck/internal/checks"
	"spoolcheck/internal/config"
	"spoolcheck/internal/gcode"
	"spoolcheck/internal/services"
	"spoolcheck/internal/services/moonraker"
)

// MetadataSource returns the slicer requirements of a gcode file. Filenames
// are relative to the printer's gcodes root, as Moonraker reports them.
type MetadataSource interface {
	Job(ctx context.Context, filename string) (checks.JobMetadata, error)
}

// FileMetadataClient is the Moonraker call MoonrakerSource needs.
type FileMetadataClient interface {
	FileMetadata(ctx context.Context, filename string) (moonraker.FileMetadata, error)
}

// MoonrakerSource reads the metadata Moonraker extracted when the file was
// uploaded.
type MoonrakerSource struct {
	client FileMetadataClient
}

// NewMoonrakerSource wraps client.
func NewMoonrakerSource(client FileMetadataClient) *MoonrakerSource {
	return &MoonrakerSource{client: client}
}

func (s *MoonrakerSource) Job(ctx context.Context, filename string) (checks.JobMetadata, error) {
	meta, err := s.client.FileMetadata(ctx, filename)
	if err != nil {
		return checks.JobMetadata{}, err
	}
	return JobFromMoonraker(filename, meta), nil
}

// JobFromMoonraker converts Moonraker metadata to tool 0 requirements.
func JobFromMoonraker(filename string, meta moonraker.FileMetadata) checks.JobMetadata {
	return checks.JobMetadata{
		Filename:             filename,
		Slicer:               strings.TrimSpace(meta.Slicer),
		RequiredMaterial:     meta.FilamentType.First(),
		RequiredWeight:       meta.RequiredWeight(),
		RequiredFilamentName: meta.FilamentName.First(),
	}
}

// GcodeSource parses files below a local gcodes directory.
type GcodeSource struct {
	root string
}

// NewGcodeSource reads files below root.
func NewGcodeSource(root string) *GcodeSource {
	return &GcodeSource{root: root}
}

func (s *GcodeSource) Job(_ context.Context, filename string) (checks.JobMetadata, error) {
	path, err := s.resolve(filename)
	if err != nil {
		return checks.JobMetadata{}, err
	}
	meta, err := gcode.ParseFile(path)
	if err != nil {
		marker := services.ErrExternalService
		if errors.Is(err, fs.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return checks.JobMetadata{}, services.Wrap(marker, "gcode", "parse", filename, err)
	}
	return meta.Job(filename), nil
}

// resolve joins filename to the root and rejects paths that escape it.
func (s *GcodeSource) resolve(filename string) (string, error) {
	if s.root == "" {
		return "", services.Wrap(services.ErrConfiguration, "gcode", "resolve", "paths.gcode_dir is not set", nil)
	}
	cleaned := filepath.Clean("/" + filepath.ToSlash(filename))
	path := filepath.Join(s.root, cleaned)
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", services.Wrap(services.ErrValidation, "gcode", "resolve", fmt.Sprintf("invalid gcode path %q", filename), err)
	}
	return path, nil
}

// NewMetadataSource picks the source named by moonraker.metadata_source.
func NewMetadataSource(cfg *config.Config, client FileMetadataClient) MetadataSource {
	if cfg.Moonraker.MetadataSource == config.MetadataSourceGcode {
		return NewGcodeSource(cfg.Paths.GcodeDir)
	}
	return NewMoonrakerSource(client)
}
