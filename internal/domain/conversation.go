package domain

import "encoding/json"

// Role — роль участника диалога с моделью.
type Role string

const (
	// RoleUser — сообщение от системы/пользователя к модели.
	RoleUser Role = "user"

	// RoleAssistant — ответ модели.
	RoleAssistant Role = "assistant"

	// RoleTool — результат выполнения инструмента,
	// привязанный к конкретному tool call.
	RoleTool Role = "tool"
)

// Turn — один ход диалога.
//
// Диалог (conversation) — append-only история: ходы никогда не
// удаляются и не переписываются, только добавляются в конец.
type Turn struct {
	// Role — кто говорит.
	Role Role `json:"role"`

	// Content — текстовое содержимое хода.
	Content string `json:"content,omitempty"`

	// ToolCalls — запросы на вызов инструментов (только для assistant).
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID — ID tool call'а, к которому относится результат
	// (только для role=tool).
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// HasToolCalls возвращает true, если ход содержит запрос на вызов инструмента.
func (t Turn) HasToolCalls() bool {
	return len(t.ToolCalls) > 0
}

// UserTurn создаёт ход от пользователя.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// ToolResultTurn создаёт ход с результатом выполнения инструмента.
func ToolResultTurn(callID, content string) Turn {
	return Turn{Role: RoleTool, Content: content, ToolCallID: callID}
}

// ToolCall — структурированный запрос модели на вызов инструмента.
type ToolCall struct {
	// ID — идентификатор вызова (возвращается вместе с результатом).
	ID string `json:"id"`

	// Name — имя инструмента.
	Name string `json:"name"`

	// Arguments — аргументы вызова (JSON-объект).
	Arguments json.RawMessage `json:"arguments"`
}

// ToolDef — описание инструмента, доступного модели.
type ToolDef struct {
	// Name — имя инструмента.
	Name string `json:"name"`

	// Description — что делает инструмент (для модели).
	Description string `json:"description"`

	// Properties — JSON Schema свойств входных аргументов.
	Properties map[string]any `json:"properties"`

	// Required — обязательные аргументы.
	Required []string `json:"required,omitempty"`
}
