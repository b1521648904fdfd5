package engine

import (
	"context"
	"sync"
)

// Checkpoint — снимок выполнения графа: состояние после завершения
// очередного узла и имя узла, с которого нужно продолжить.
type Checkpoint[S any] struct {
	// Next — узел, который должен выполниться следующим
	// (EndNode, если граф завершён).
	Next string

	// State — состояние после последнего завершённого узла.
	State S
}

// Checkpointer сохраняет снимки выполнения по идентификатору run.
// Позволяет возобновить прерванный run с последнего завершённого
// узла вместо повторного выполнения с начала.
type Checkpointer[S any] interface {
	// Save сохраняет checkpoint для run. Перезаписывает предыдущий.
	Save(ctx context.Context, runID string, cp Checkpoint[S]) error

	// Load возвращает последний checkpoint для run.
	// Второе значение — false, если checkpoint не найден.
	Load(ctx context.Context, runID string) (Checkpoint[S], bool, error)
}

// MemorySaver — checkpointer в памяти процесса.
// Потокобезопасен; снимки теряются при рестарте.
type MemorySaver[S any] struct {
	mu          sync.RWMutex
	checkpoints map[string]Checkpoint[S]
}

// NewMemorySaver создаёт пустой MemorySaver.
func NewMemorySaver[S any]() *MemorySaver[S] {
	return &MemorySaver[S]{
		checkpoints: make(map[string]Checkpoint[S]),
	}
}

// Save сохраняет checkpoint для run.
func (m *MemorySaver[S]) Save(_ context.Context, runID string, cp Checkpoint[S]) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkpoints[runID] = cp
	return nil
}

// Load возвращает последний checkpoint для run.
func (m *MemorySaver[S]) Load(_ context.Context, runID string) (Checkpoint[S], bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp, ok := m.checkpoints[runID]
	return cp, ok, nil
}
