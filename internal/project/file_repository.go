package project

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"cyoa-maker/shared/interfaces"
	"cyoa-maker/shared/models"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
)

// Extension is the file extension of compressed project files.
const Extension = ".cy"

// DefaultDir is where bare project names are resolved.
const DefaultDir = "storys"

const schemaName = "project.schema.json"

//go:embed project.schema.json
var schemaSource []byte

// FileRepository stores projects as zstd-compressed JSON documents in a directory.
type FileRepository struct {
	dir    string
	schema *jsonschema.Schema
	logger *zap.Logger
}

var _ interfaces.ProjectRepository = (*FileRepository)(nil)

// NewFileRepository creates a repository rooted at dir. An empty dir means DefaultDir.
func NewFileRepository(dir string, logger *zap.Logger) (*FileRepository, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile project schema: %w", err)
	}
	return &FileRepository{
		dir:    dir,
		schema: schema,
		logger: logger.Named("FileRepository"),
	}, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaName, bytes.NewReader(schemaSource)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaName)
}

// Dir returns the directory bare names are resolved against.
func (r *FileRepository) Dir() string {
	return r.dir
}

// Resolve maps a project name to a file path. Names without a directory component
// live in the repository directory; the extension is added when missing.
func (r *FileRepository) Resolve(name string) string {
	if !strings.HasSuffix(name, Extension) {
		name += Extension
	}
	if filepath.IsAbs(name) || strings.ContainsRune(name, filepath.Separator) || strings.ContainsRune(name, '/') {
		return filepath.Clean(name)
	}
	return filepath.Join(r.dir, name)
}

// Load reads, validates and decodes a project file.
func (r *FileRepository) Load(ctx context.Context, name string) (*models.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := r.Resolve(name)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open project %s: %w", path, err)
	}
	defer f.Close()

	p, err := r.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load project %s: %w", path, err)
	}
	r.logger.Info("Project loaded",
		zap.String("path", path),
		zap.Int("nodes", len(p.StoryMap)),
	)
	return p, nil
}

// Decode reads one compressed project document from src.
func (r *FileRepository) Decode(src io.Reader) (*models.Project, error) {
	dec, err := zstd.NewReader(src)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return r.DecodeJSON(raw)
}

// DecodeJSON validates and decodes an uncompressed project document.
func (r *FileRepository) DecodeJSON(raw []byte) (*models.Project, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidProject, err)
	}
	if err := r.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidProject, err)
	}

	var p models.Project
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidProject, err)
	}
	p.Normalize()
	return &p, nil
}

// Save encodes the project and replaces the target file.
func (r *FileRepository) Save(ctx context.Context, name string, p *models.Project) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p == nil {
		return "", fmt.Errorf("%w: nil project", models.ErrInvalidInput)
	}
	path := r.Resolve(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create project directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".project-*"+Extension)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, p); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encode project: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("replace %s: %w", path, err)
	}

	r.logger.Info("Project saved",
		zap.String("path", path),
		zap.Int("nodes", len(p.StoryMap)),
	)
	return path, nil
}

// Encode writes p to dst as indented JSON compressed with zstd level 3.
func Encode(dst io.Writer, p *models.Project) error {
	raw, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(dst, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(3)))
	if err != nil {
		return err
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// List returns the project files in the repository directory, sorted by name.
// A missing directory yields an empty list.
func (r *FileRepository) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read project directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}
