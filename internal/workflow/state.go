package workflow

import (
	"slices"

	"github.com/shaiso/Critiquely/internal/domain"
)

// State — состояние одного review run, протекающее через граф.
//
// Создаётся dispatcher'ом при получении задачи, живёт ровно один run
// и сериализуется в checkpoint после каждого узла.
type State struct {
	// Conversation — история диалога с моделью. Только append.
	Conversation []domain.Turn `json:"conversation"`

	// RepoURL — URL репозитория.
	RepoURL string `json:"repo_url"`

	// BaseBranch — базовая ветка review.
	BaseBranch string `json:"base_branch"`

	// ClonePath — путь к рабочей копии. Пустой до клонирования.
	ClonePath string `json:"clone_path,omitempty"`

	// NewBranch — ветка с улучшениями. Пустая до создания.
	NewBranch string `json:"new_branch,omitempty"`

	// PendingFiles — файлы, ожидающие инспекции.
	// Инспекция снимает головной элемент; длина строго убывает.
	PendingFiles []domain.ModifiedFile `json:"pending_files"`

	// Recommendations — рекомендации, ожидающие применения.
	// Инспекция добавляет, применение снимает головной элемент.
	Recommendations []domain.Recommendation `json:"recommendations"`

	// Current — рекомендация, применяемая в данный момент.
	// Из неё берётся сообщение коммита.
	Current *domain.Recommendation `json:"current,omitempty"`

	// ToolRounds — число обращений к инструментам для Current.
	// Ограничивает длину tool-цикла одной рекомендации.
	ToolRounds int `json:"tool_rounds,omitempty"`

	// UpdatedFiles — файлы, затронутые применением рекомендаций.
	// Только пополняется (объединение без дубликатов).
	UpdatedFiles []string `json:"updated_files"`

	// OriginalPRURL — PR, инициировавший review.
	OriginalPRURL string `json:"original_pr_url"`

	// PRNumber и PRURL — созданный PR с улучшениями.
	PRNumber int    `json:"pr_number,omitempty"`
	PRURL    string `json:"pr_url,omitempty"`
}

// LastTurn возвращает последний ход диалога или zero-значение.
func (s State) LastTurn() domain.Turn {
	if len(s.Conversation) == 0 {
		return domain.Turn{}
	}
	return s.Conversation[len(s.Conversation)-1]
}

// Delta — частичное обновление состояния, возвращаемое узлом.
//
// Политика слияния по полям:
//   - Conversation, UpdatedFiles — аддитивные: конкатенация/объединение,
//     никогда не перезаписываются
//   - PendingFiles, Recommendations — перезапись целиком узлом-владельцем
//     (тем, что выполняет pop)
//   - скаляры — перезапись при наличии (указатель не nil)
//   - Current — трёхзначный: CurrentSet=false не трогает поле,
//     CurrentSet=true записывает Current (в том числе nil — сброс)
type Delta struct {
	Conversation []domain.Turn
	UpdatedFiles []string

	ClonePath *string
	NewBranch *string
	PRNumber  *int
	PRURL     *string

	PendingFiles    *[]domain.ModifiedFile
	Recommendations *[]domain.Recommendation

	Current    *domain.Recommendation
	CurrentSet bool

	ToolRounds *int
}

// Merge применяет дельту к состоянию по политике полей.
// Аддитивные поля монотонно не убывают в длине.
func Merge(s State, d Delta) State {
	s.Conversation = append(s.Conversation, d.Conversation...)

	for _, file := range d.UpdatedFiles {
		if !slices.Contains(s.UpdatedFiles, file) {
			s.UpdatedFiles = append(s.UpdatedFiles, file)
		}
	}

	if d.ClonePath != nil {
		s.ClonePath = *d.ClonePath
	}
	if d.NewBranch != nil {
		s.NewBranch = *d.NewBranch
	}
	if d.PRNumber != nil {
		s.PRNumber = *d.PRNumber
	}
	if d.PRURL != nil {
		s.PRURL = *d.PRURL
	}

	if d.PendingFiles != nil {
		s.PendingFiles = *d.PendingFiles
	}
	if d.Recommendations != nil {
		s.Recommendations = *d.Recommendations
	}

	if d.CurrentSet {
		s.Current = d.Current
	}
	if d.ToolRounds != nil {
		s.ToolRounds = *d.ToolRounds
	}

	return s
}

// InitialState строит стартовое состояние run из задачи.
func InitialState(task *domain.ReviewTask) State {
	return State{
		RepoURL:       task.RepoURL,
		BaseBranch:    task.Branch,
		OriginalPRURL: task.OriginalPRURL,
		PendingFiles:  slices.Clone(task.ModifiedFiles),
	}
}

// Вспомогательные конструкторы указателей для дельт.

func strp(v string) *string { return &v }

func intp(v int) *int { return &v }
