package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/plcqa/plcqa/internal/domain"
	"github.com/plcqa/plcqa/internal/domain/lexer"
	"github.com/plcqa/plcqa/internal/domain/section"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var skipDirs = map[string]bool{
	".git":   true,
	".plcqa": true,
}

// fileTypes maps lower-cased extensions to the tracked file types.
var fileTypes = map[string]domain.FileType{
	".tcpou":   domain.FileTypePOU,
	".tcgvl":   domain.FileTypeGVL,
	".tcdut":   domain.FileTypeDUT,
	".plcproj": domain.FileTypeProject,
}

// FileScanner implements domain.UnitCollector by walking the filesystem.
type FileScanner struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *FileScanner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &FileScanner{logger: logger}
}

// Collect walks projectPath and builds its catalog. Units that cannot be read
// or decoded are recorded as failures; only an inaccessible root is an error.
func (s *FileScanner) Collect(ctx context.Context, projectPath string, excludePaths ...string) (*domain.Catalog, error) {
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrRootInaccessible, projectPath, err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrRootInaccessible, projectPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrRootInaccessible, projectPath)
	}

	// Merge extra excludes with built-in skip dirs.
	extraSkip := make(map[string]bool, len(excludePaths))
	for _, p := range excludePaths {
		extraSkip[strings.TrimSuffix(p, "/")] = true
	}

	catalog := &domain.Catalog{Root: absPath}

	err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			if path == absPath {
				return fmt.Errorf("%w: %s: %v", domain.ErrRootInaccessible, projectPath, err)
			}
			s.fail(catalog, absPath, path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != absPath && (skipDirs[d.Name()] || extraSkip[d.Name()]) {
				return filepath.SkipDir
			}
			return nil
		}

		typ, ok := fileTypes[strings.ToLower(filepath.Ext(d.Name()))]
		if !ok || !d.Type().IsRegular() {
			return nil
		}

		relPath := relative(absPath, path)
		u, err := readUnit(path, relPath, typ)
		if err != nil {
			s.fail(catalog, absPath, path, err)
			return nil
		}
		catalog.Units = append(catalog.Units, u)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(catalog.Units, func(i, j int) bool { return catalog.Units[i].Path < catalog.Units[j].Path })
	sort.Slice(catalog.Failures, func(i, j int) bool { return catalog.Failures[i].Path < catalog.Failures[j].Path })

	s.logger.Debug("catalog collected", "root", absPath, "units", len(catalog.Units), "failures", len(catalog.Failures))
	return catalog, nil
}

func (s *FileScanner) fail(catalog *domain.Catalog, root, path string, err error) {
	rel := relative(root, path)
	s.logger.Warn("skipping unit", "path", rel, "error", err)
	catalog.Failures = append(catalog.Failures, domain.UnitFailure{Path: rel, Cause: err.Error()})
}

func relative(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// readUnit loads one tracked file. The hash and size cover the bytes on disk;
// the sections are taken from the decoded text.
func readUnit(path, relPath string, typ domain.FileType) (domain.Unit, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Unit{}, fmt.Errorf("reading: %w", err)
	}

	sum := sha256.Sum256(raw)
	u := domain.Unit{
		Path: relPath,
		Type: typ,
		Size: int64(len(raw)),
		Hash: hex.EncodeToString(sum[:]),
	}

	if typ == domain.FileTypeProject {
		u.Kind = domain.UnitKindProject
		return u, nil
	}

	text, err := decode(raw)
	if err != nil {
		return domain.Unit{}, fmt.Errorf("decoding: %w", err)
	}
	u.Declaration = section.Extract(text, section.TagDeclaration)
	u.Implementation = section.Extract(text, section.TagImplementation)
	u.Name = section.RootName(text, string(typ))
	u.Kind = classify(typ, u.Declaration)
	return u, nil
}

// decode converts file bytes to text. A UTF-16 byte order mark switches the
// decoder; anything else is read as UTF-8 with invalid sequences replaced.
func decode(raw []byte) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// classify derives the unit kind from the container type and, for POUs, the
// declaration keywords. PROGRAM wins over FUNCTION_BLOCK, which wins over
// FUNCTION.
func classify(typ domain.FileType, declaration string) domain.UnitKind {
	switch typ {
	case domain.FileTypeGVL:
		return domain.UnitKindGlobalVariableList
	case domain.FileTypeDUT:
		return domain.UnitKindDataType
	case domain.FileTypeProject:
		return domain.UnitKindProject
	}

	seen := make(map[string]bool, 3)
	for _, line := range lexer.Tokenize(declaration) {
		for _, t := range lexer.Code(line) {
			if t.Kind == lexer.Keyword {
				seen[t.Upper()] = true
			}
		}
	}
	for _, k := range []domain.UnitKind{domain.UnitKindProgram, domain.UnitKindFunctionBlock, domain.UnitKindFunction} {
		if seen[string(k)] {
			return k
		}
	}
	return domain.UnitKindUnclassified
}
