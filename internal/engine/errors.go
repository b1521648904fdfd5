package engine

import "errors"

// Ошибки сборки графа.
var (
	// ErrNoEntry — не задана точка входа.
	ErrNoEntry = errors.New("graph has no entry node")

	// ErrEmptyNodeName — узел с пустым именем.
	ErrEmptyNodeName = errors.New("node has empty name")

	// ErrDuplicateNode — несколько узлов с одинаковым именем.
	ErrDuplicateNode = errors.New("duplicate node name")

	// ErrUnknownNode — ребро или маршрутизатор ссылается на
	// несуществующий узел.
	ErrUnknownNode = errors.New("reference to unknown node")

	// ErrNoOutgoing — узел не имеет ни ребра, ни маршрутизатора.
	ErrNoOutgoing = errors.New("node has no outgoing edge or router")

	// ErrConflictingOutgoing — узел имеет и ребро, и маршрутизатор.
	ErrConflictingOutgoing = errors.New("node has both an edge and a router")
)

// Ошибки выполнения графа.
var (
	// ErrMaxSteps — превышен лимит шагов одного run.
	ErrMaxSteps = errors.New("max graph steps exceeded")

	// ErrUnknownRoute — маршрутизатор вернул несуществующий узел.
	ErrUnknownRoute = errors.New("router returned unknown node")
)

// StepError — ошибка выполнения конкретного узла.
// Ошибки узлов не ретраятся внутри движка: они поднимаются
// вызывающему, который решает судьбу всего run.
type StepError struct {
	Node string // имя узла
	Err  error  // исходная ошибка
}

// Error реализует интерфейс error.
func (e *StepError) Error() string {
	return "node " + e.Node + ": " + e.Err.Error()
}

// Unwrap возвращает исходную ошибку.
func (e *StepError) Unwrap() error {
	return e.Err
}
