package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shaiso/Critiquely/internal/domain"
	"github.com/shaiso/Critiquely/internal/telemetry"
)

// Registry — реестр инструментов.
//
// Позволяет регистрировать и вызывать инструменты по имени.
// Потокобезопасен.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// FSRegistry создаёт реестр с файловыми инструментами,
// ограниченными директорией root.
func FSRegistry(root string) *Registry {
	r := NewRegistry()

	r.Register(NewReadFileTool(root))
	r.Register(NewWriteFileTool(root))
	r.Register(NewListDirectoryTool(root))

	return r
}

// Register регистрирует инструмент в реестре.
// Если инструмент с таким именем уже существует, он будет перезаписан.
func (r *Registry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// Get возвращает инструмент по имени.
// Возвращает ErrToolNotFound, если инструмент не найден.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	return tool, nil
}

// Has проверяет, зарегистрирован ли инструмент.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.tools[name]
	return exists
}

// Defs возвращает описания всех инструментов для передачи модели,
// отсортированные по имени.
func (r *Registry) Defs() []domain.ToolDef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]domain.ToolDef, 0, len(r.tools))
	for _, tool := range r.tools {
		defs = append(defs, tool.Def())
	}
	sort.Slice(defs, func(i, j int) bool {
		return defs[i].Name < defs[j].Name
	})
	return defs
}

// Count возвращает количество зарегистрированных инструментов.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Execute выполняет запрошенный моделью вызов инструмента.
func (r *Registry) Execute(ctx context.Context, call domain.ToolCall) (string, error) {
	tool, err := r.Get(call.Name)
	if err != nil {
		return "", err
	}

	telemetry.ToolCallsTotal.WithLabelValues(call.Name).Inc()

	result, err := tool.Execute(ctx, call.Arguments)
	if err != nil {
		return "", fmt.Errorf("tool %s: %w", call.Name, err)
	}

	return result, nil
}
