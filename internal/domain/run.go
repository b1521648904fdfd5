package domain

import (
	"time"

	"github.com/google/uuid"
)

// Run — запись об одном выполнении review-задачи.
//
// Run создаётся dispatcher'ом при получении валидной задачи из очереди,
// переводится в RUNNING перед запуском графа и финализируется
// (SUCCEEDED/FAILED) по результату выполнения.
type Run struct {
	// ID — уникальный идентификатор run.
	ID uuid.UUID `json:"id"`

	// RepoURL — репозиторий, для которого выполняется review.
	RepoURL string `json:"repo_url"`

	// OriginalPRURL — PR, инициировавший review.
	OriginalPRURL string `json:"original_pr_url"`

	// Branch — базовая ветка review.
	Branch string `json:"branch"`

	// Status — текущий статус выполнения.
	Status RunStatus `json:"status"`

	// NewPRURL — URL созданного PR с улучшениями (если был создан).
	NewPRURL string `json:"new_pr_url,omitempty"`

	// StartedAt — время начала выполнения (когда статус стал RUNNING).
	// Nil, если run ещё не начался.
	StartedAt *time.Time `json:"started_at,omitempty"`

	// FinishedAt — время завершения (успешного или с ошибкой).
	// Nil, если run ещё выполняется.
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Error — текст ошибки, если run завершился с FAILED.
	Error string `json:"error,omitempty"`

	// CreatedAt — время создания run.
	CreatedAt time.Time `json:"created_at"`
}

// NewRun создаёт Run в статусе PENDING для задачи.
func NewRun(task *ReviewTask) *Run {
	return &Run{
		ID:            uuid.New(),
		RepoURL:       task.RepoURL,
		OriginalPRURL: task.OriginalPRURL,
		Branch:        task.Branch,
		Status:        RunStatusPending,
		CreatedAt:     time.Now(),
	}
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если run ещё не завершён.
func (r *Run) Duration() time.Duration {
	if r.StartedAt == nil || r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(*r.StartedAt)
}

// IsFinished возвращает true, если run завершён (в любом статусе).
func (r *Run) IsFinished() bool {
	return r.Status.IsTerminal()
}

// MarkRunning переводит run в статус RUNNING.
func (r *Run) MarkRunning() {
	now := time.Now()
	r.Status = RunStatusRunning
	r.StartedAt = &now
}

// MarkSucceeded переводит run в статус SUCCEEDED.
func (r *Run) MarkSucceeded(newPRURL string) {
	now := time.Now()
	r.Status = RunStatusSucceeded
	r.FinishedAt = &now
	r.NewPRURL = newPRURL
}

// MarkFailed переводит run в статус FAILED с ошибкой.
func (r *Run) MarkFailed(err string) {
	now := time.Now()
	r.Status = RunStatusFailed
	r.FinishedAt = &now
	r.Error = err
}
