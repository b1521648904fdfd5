package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Ошибки валидации входящих задач.
var (
	// ErrInvalidTask — сообщение не является валидной задачей.
	// Такие сообщения не имеет смысла повторять — retry не поможет.
	ErrInvalidTask = errors.New("invalid review task")
)

// ReviewTask — задача на code review, полученная из очереди.
//
// Формат сообщения фиксирован: receiver публикует ровно такой JSON.
// Все четыре поля обязательны — сообщение без любого из них считается
// необратимо невалидным (permanent failure, без requeue).
type ReviewTask struct {
	// RepoURL — HTTPS URL репозитория для клонирования.
	RepoURL string `json:"repo_url"`

	// OriginalPRURL — URL pull request'а, который инициировал review.
	OriginalPRURL string `json:"original_pr_url"`

	// Branch — базовая ветка, от которой создаётся ветка с улучшениями.
	Branch string `json:"branch"`

	// ModifiedFiles — файлы, изменённые в оригинальном PR.
	ModifiedFiles []ModifiedFile `json:"modified_files"`
}

// ModifiedFile — файл, изменённый в оригинальном PR.
type ModifiedFile struct {
	// Filename — путь к файлу относительно корня репозитория.
	Filename string `json:"filename"`

	// LinesChanged — номера изменённых строк.
	LinesChanged []int `json:"lines_changed"`
}

// ParseReviewTask парсит и валидирует тело сообщения из очереди.
//
// Возвращает ErrInvalidTask (обёрнутый) и для битого JSON,
// и для отсутствующих обязательных полей.
func ParseReviewTask(body []byte) (*ReviewTask, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %v", ErrInvalidTask, err)
	}

	// Проверяем присутствие полей до декодирования: отличаем
	// "поле отсутствует" от "поле с нулевым значением".
	var missing []string
	for _, field := range []string{"repo_url", "original_pr_url", "branch", "modified_files"} {
		if _, ok := raw[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required fields: %s",
			ErrInvalidTask, strings.Join(missing, ", "))
	}

	var task ReviewTask
	if err := json.Unmarshal(body, &task); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return &task, nil
}

// Validate проверяет, что все обязательные поля заполнены.
func (t *ReviewTask) Validate() error {
	var missing []string
	if t.RepoURL == "" {
		missing = append(missing, "repo_url")
	}
	if t.OriginalPRURL == "" {
		missing = append(missing, "original_pr_url")
	}
	if t.Branch == "" {
		missing = append(missing, "branch")
	}
	if t.ModifiedFiles == nil {
		missing = append(missing, "modified_files")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s",
			ErrInvalidTask, strings.Join(missing, ", "))
	}
	return nil
}
