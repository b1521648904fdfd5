package engine

import (
	"context"
	"fmt"
)

// DefaultMaxSteps — лимит шагов одного run по умолчанию.
// Страхует от зацикливания, если маршрутизаторы образовали
// бесконечный цикл.
const DefaultMaxSteps = 256

// NodeFunc — функция узла: принимает текущее состояние и возвращает
// дельту (частичное обновление). Узлы не мутируют состояние напрямую —
// все изменения проходят через merge-функцию графа.
type NodeFunc[S, D any] func(ctx context.Context, state S) (D, error)

// RouterFunc — условный маршрутизатор: по текущему состоянию решает,
// какой узел выполнять следующим (или завершить граф).
type RouterFunc[S any] func(state S) Route

// MergeFunc — применяет дельту к состоянию и возвращает новое
// состояние. Политика слияния отдельных полей (перезапись, конкатенация)
// определяется этой функцией, а не движком.
type MergeFunc[S, D any] func(state S, delta D) S

// Graph — направленный граф именованных узлов с безусловными рёбрами
// и условными маршрутизаторами. S — тип состояния, D — тип дельты.
//
// Граф собирается через AddNode/AddEdge/AddRouter/SetEntry и
// валидируется в Compile. После Compile граф неизменяем.
type Graph[S, D any] struct {
	merge   MergeFunc[S, D]
	nodes   map[string]NodeFunc[S, D]
	edges   map[string]string
	routers map[string]RouterFunc[S]
	entry   string
	err     error // первая ошибка сборки, возвращается из Compile
}

// New создаёт пустой граф с заданной merge-функцией.
func New[S, D any](merge MergeFunc[S, D]) *Graph[S, D] {
	return &Graph[S, D]{
		merge:   merge,
		nodes:   make(map[string]NodeFunc[S, D]),
		edges:   make(map[string]string),
		routers: make(map[string]RouterFunc[S]),
	}
}

// AddNode добавляет узел. Имя должно быть уникальным и непустым.
func (g *Graph[S, D]) AddNode(name string, fn NodeFunc[S, D]) *Graph[S, D] {
	if name == "" || name == EndNode {
		g.fail(fmt.Errorf("%w", ErrEmptyNodeName))
		return g
	}
	if _, exists := g.nodes[name]; exists {
		g.fail(fmt.Errorf("%w: %s", ErrDuplicateNode, name))
		return g
	}
	g.nodes[name] = fn
	return g
}

// AddEdge добавляет безусловное ребро from → to.
// to может быть EndNode — тогда граф завершается после from.
func (g *Graph[S, D]) AddEdge(from, to string) *Graph[S, D] {
	if _, exists := g.edges[from]; exists {
		g.fail(fmt.Errorf("%w: %s", ErrConflictingOutgoing, from))
		return g
	}
	g.edges[from] = to
	return g
}

// AddRouter добавляет условный маршрутизатор после узла from.
func (g *Graph[S, D]) AddRouter(from string, fn RouterFunc[S]) *Graph[S, D] {
	if _, exists := g.routers[from]; exists {
		g.fail(fmt.Errorf("%w: %s", ErrConflictingOutgoing, from))
		return g
	}
	g.routers[from] = fn
	return g
}

// SetEntry задаёт точку входа графа.
func (g *Graph[S, D]) SetEntry(name string) *Graph[S, D] {
	g.entry = name
	return g
}

// fail запоминает первую ошибку сборки.
func (g *Graph[S, D]) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}

// Compile валидирует граф и возвращает Runner.
//
// Проверки:
//   - точка входа задана и существует
//   - каждое ребро ссылается на существующий узел (или EndNode)
//   - каждый узел имеет ровно один исход: ребро или маршрутизатор
func (g *Graph[S, D]) Compile(cfg RunConfig[S]) (*Runner[S, D], error) {
	if g.err != nil {
		return nil, g.err
	}
	if g.entry == "" {
		return nil, ErrNoEntry
	}
	if _, exists := g.nodes[g.entry]; !exists {
		return nil, fmt.Errorf("%w: entry %s", ErrUnknownNode, g.entry)
	}

	for from, to := range g.edges {
		if _, exists := g.nodes[from]; !exists {
			return nil, fmt.Errorf("%w: edge from %s", ErrUnknownNode, from)
		}
		if to != EndNode {
			if _, exists := g.nodes[to]; !exists {
				return nil, fmt.Errorf("%w: edge %s -> %s", ErrUnknownNode, from, to)
			}
		}
	}
	for from := range g.routers {
		if _, exists := g.nodes[from]; !exists {
			return nil, fmt.Errorf("%w: router from %s", ErrUnknownNode, from)
		}
		if _, hasEdge := g.edges[from]; hasEdge {
			return nil, fmt.Errorf("%w: %s", ErrConflictingOutgoing, from)
		}
	}
	for name := range g.nodes {
		_, hasEdge := g.edges[name]
		_, hasRouter := g.routers[name]
		if !hasEdge && !hasRouter {
			return nil, fmt.Errorf("%w: %s", ErrNoOutgoing, name)
		}
	}

	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	return &Runner[S, D]{
		graph:    g,
		saver:    cfg.Saver,
		maxSteps: maxSteps,
	}, nil
}

// RunConfig — параметры выполнения графа.
type RunConfig[S any] struct {
	// Saver — хранилище checkpoint'ов. Nil отключает checkpointing.
	Saver Checkpointer[S]

	// MaxSteps — лимит шагов одного run. 0 = DefaultMaxSteps.
	MaxSteps int
}

// Runner — скомпилированный граф, готовый к выполнению.
// Потокобезопасен: один Runner может выполнять много независимых run.
type Runner[S, D any] struct {
	graph    *Graph[S, D]
	saver    Checkpointer[S]
	maxSteps int
}

// Run выполняет граф от точки входа до терминального узла.
//
// После каждого узла дельта сливается в состояние и сохраняется
// checkpoint (next, state) под runID. Если для runID уже есть
// checkpoint, выполнение продолжается с узла, на котором run был
// прерван, с восстановленным состоянием.
//
// Возвращает финальное состояние. Ошибка узла оборачивается в
// StepError и прекращает run; состояние на момент ошибки возвращается
// вместе с ней.
func (r *Runner[S, D]) Run(ctx context.Context, runID string, initial S) (S, error) {
	state := initial
	current := r.graph.entry

	// Возобновление прерванного run с последнего checkpoint
	if r.saver != nil {
		cp, found, err := r.saver.Load(ctx, runID)
		if err != nil {
			return state, fmt.Errorf("load checkpoint: %w", err)
		}
		if found {
			if cp.Next == EndNode {
				return cp.State, nil
			}
			state = cp.State
			current = cp.Next
		}
	}

	for step := 0; ; step++ {
		if err := ctx.Err(); err != nil {
			return state, err
		}
		if step >= r.maxSteps {
			return state, fmt.Errorf("%w: %d", ErrMaxSteps, r.maxSteps)
		}

		fn, exists := r.graph.nodes[current]
		if !exists {
			return state, fmt.Errorf("%w: %s", ErrUnknownNode, current)
		}

		delta, err := fn(ctx, state)
		if err != nil {
			return state, &StepError{Node: current, Err: err}
		}
		state = r.graph.merge(state, delta)

		next, err := r.next(current, state)
		if err != nil {
			return state, err
		}

		if r.saver != nil {
			cp := Checkpoint[S]{Next: next, State: state}
			if err := r.saver.Save(ctx, runID, cp); err != nil {
				return state, fmt.Errorf("save checkpoint: %w", err)
			}
		}

		if next == EndNode {
			return state, nil
		}
		current = next
	}
}

// next вычисляет следующий узел после node.
func (r *Runner[S, D]) next(node string, state S) (string, error) {
	if router, exists := r.graph.routers[node]; exists {
		route := router(state)
		if route.IsEnd() {
			return EndNode, nil
		}
		if _, exists := r.graph.nodes[route.Next()]; !exists {
			return "", fmt.Errorf("%w: %s -> %s", ErrUnknownRoute, node, route.Next())
		}
		return route.Next(), nil
	}
	return r.graph.edges[node], nil
}
