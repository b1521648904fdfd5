package workflow

import (
	"context"
	"log/slog"

	"github.com/shaiso/Critiquely/internal/domain"
)

// DefaultMaxToolRounds — лимит tool-вызовов на одну рекомендацию.
// Цикл "модель просит инструмент → результат → модель" управляется
// внешним ответом модели и без лимита может не завершиться.
const DefaultMaxToolRounds = 10

// Git — операции над рабочей копией репозитория.
type Git interface {
	// Clone клонирует ветку branch и возвращает путь рабочей копии.
	Clone(ctx context.Context, url, branch string) (string, error)

	// CreateBranch создаёт ветку name и переключается на неё.
	CreateBranch(ctx context.Context, path, name string) error

	// Commit стейджит и коммитит все изменения.
	// Возвращает false без ошибки, если коммитить нечего.
	Commit(ctx context.Context, path, message string) (bool, error)

	// Push отправляет ветку branch в origin под тем же именем.
	Push(ctx context.Context, path, branch string) error
}

// Host — операции хостинга исходного кода.
type Host interface {
	// CreatePullRequest создаёт PR head → base и возвращает его номер и URL.
	CreatePullRequest(ctx context.Context, repoURL, base, head, title, body string) (int, string, error)

	// CreateIssueComment публикует комментарий на PR по его URL.
	CreateIssueComment(ctx context.Context, prURL, body string) error
}

// Model — диалоговая модель.
type Model interface {
	// Complete возвращает следующий ход модели: текст либо запрос
	// на вызов инструмента из tools.
	Complete(ctx context.Context, turns []domain.Turn, tools []domain.ToolDef) (domain.Turn, error)
}

// ToolRunner — набор инструментов, доступных модели.
type ToolRunner interface {
	// Defs возвращает описания инструментов для модели.
	Defs() []domain.ToolDef

	// Execute выполняет запрошенный вызов.
	Execute(ctx context.Context, call domain.ToolCall) (string, error)
}

// ToolFactory создаёт набор инструментов, привязанный к рабочей
// копии в root. Инструменты не должны выходить за её пределы.
type ToolFactory func(root string) ToolRunner

// Config — зависимости узлов графа.
type Config struct {
	Git   Git
	Host  Host
	Model Model
	Tools ToolFactory

	// MaxToolRounds — лимит tool-вызовов на рекомендацию.
	// 0 = DefaultMaxToolRounds.
	MaxToolRounds int

	Logger *slog.Logger
}

// Nodes — реализации узлов review-графа.
type Nodes struct {
	git           Git
	host          Host
	model         Model
	tools         ToolFactory
	maxToolRounds int
	logger        *slog.Logger
}

// NewNodes создаёт узлы с заданными зависимостями.
func NewNodes(cfg Config) *Nodes {
	maxRounds := cfg.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = DefaultMaxToolRounds
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Nodes{
		git:           cfg.Git,
		host:          cfg.Host,
		model:         cfg.Model,
		tools:         cfg.Tools,
		maxToolRounds: maxRounds,
		logger:        logger,
	}
}
