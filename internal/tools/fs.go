package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/shaiso/Critiquely/internal/domain"
)

// Файловые инструменты, которые модель использует для чтения и
// правки рабочей копии репозитория. Все пути интерпретируются
// относительно root (директория клона) и не могут выйти за её пределы.

// resolvePath преобразует относительный путь в абсолютный внутри root.
// Явные попытки выхода (надежда на "../") отклоняются до securejoin,
// чтобы вернуть внятную ошибку, а не молча прижатый к root путь.
func resolvePath(root, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidArgs)
	}
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, path)
	}

	resolved, err := securejoin.SecureJoin(root, clean)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideRoot, path)
	}
	return resolved, nil
}

// ReadFileTool читает файл из рабочей копии.
type ReadFileTool struct {
	root string
}

// NewReadFileTool создаёт инструмент чтения файлов внутри root.
func NewReadFileTool(root string) *ReadFileTool {
	return &ReadFileTool{root: root}
}

// Name возвращает имя инструмента.
func (t *ReadFileTool) Name() string { return "read_file" }

// Def возвращает описание инструмента для модели.
func (t *ReadFileTool) Def() domain.ToolDef {
	return domain.ToolDef{
		Name:        t.Name(),
		Description: "Read the contents of a file in the repository working copy. The path is relative to the repository root.",
		Properties: map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "File path relative to the repository root",
			},
		},
		Required: []string{"path"},
	}
}

// Execute читает файл и возвращает его содержимое.
func (t *ReadFileTool) Execute(_ context.Context, args json.RawMessage) (string, error) {
	var req struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(args, &req); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}

	path, err := resolvePath(t.root, req.Path)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", req.Path, err)
	}

	return string(data), nil
}

// WriteFileTool записывает файл в рабочую копию.
type WriteFileTool struct {
	root string
}

// NewWriteFileTool создаёт инструмент записи файлов внутри root.
func NewWriteFileTool(root string) *WriteFileTool {
	return &WriteFileTool{root: root}
}

// Name возвращает имя инструмента.
func (t *WriteFileTool) Name() string { return "write_file" }

// Def возвращает описание инструмента для модели.
func (t *WriteFileTool) Def() domain.ToolDef {
	return domain.ToolDef{
		Name:        t.Name(),
		Description: "Write content to a file in the repository working copy, replacing its previous contents. The path is relative to the repository root.",
		Properties: map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "File path relative to the repository root",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "Full new contents of the file",
			},
		},
		Required: []string{"path", "content"},
	}
}

// Execute записывает файл и возвращает подтверждение.
func (t *WriteFileTool) Execute(_ context.Context, args json.RawMessage) (string, error) {
	var req struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(args, &req); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}

	path, err := resolvePath(t.root, req.Path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("write %s: %w", req.Path, err)
	}
	if err := os.WriteFile(path, []byte(req.Content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", req.Path, err)
	}

	return fmt.Sprintf("wrote %d bytes to %s", len(req.Content), req.Path), nil
}

// ListDirectoryTool перечисляет содержимое директории рабочей копии.
type ListDirectoryTool struct {
	root string
}

// NewListDirectoryTool создаёт инструмент листинга внутри root.
func NewListDirectoryTool(root string) *ListDirectoryTool {
	return &ListDirectoryTool{root: root}
}

// Name возвращает имя инструмента.
func (t *ListDirectoryTool) Name() string { return "list_directory" }

// Def возвращает описание инструмента для модели.
func (t *ListDirectoryTool) Def() domain.ToolDef {
	return domain.ToolDef{
		Name:        t.Name(),
		Description: "List the entries of a directory in the repository working copy. The path is relative to the repository root; omit it to list the root.",
		Properties: map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Directory path relative to the repository root (default: the root itself)",
			},
		},
	}
}

// Execute возвращает список записей директории, по одной на строку.
// Директории помечаются завершающим "/".
func (t *ListDirectoryTool) Execute(_ context.Context, args json.RawMessage) (string, error) {
	var req struct {
		Path string `json:"path"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &req); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidArgs, err)
		}
	}
	if req.Path == "" {
		req.Path = "."
	}

	path, err := resolvePath(t.root, req.Path)
	if err != nil {
		return "", err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "", fmt.Errorf("list %s: %w", req.Path, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	return strings.Join(names, "\n"), nil
}
