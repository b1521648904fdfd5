package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/shaiso/Critiquely/internal/domain"
	"github.com/shaiso/Critiquely/internal/telemetry"
)

// ErrNoToolCalls — узел инструментов выполнен, но последний ход
// диалога не содержит запросов на вызов.
var ErrNoToolCalls = errors.New("no tool calls in last turn")

// ToolCall выполняет все вызовы инструментов из последнего хода
// модели и добавляет их результаты в диалог.
//
// Ошибка инструмента не прерывает run: модель получает текст ошибки
// как результат и сама решает, что делать дальше.
func (n *Nodes) ToolCall(ctx context.Context, s State) (Delta, error) {
	last := s.LastTurn()
	if !last.HasToolCalls() {
		return Delta{}, ErrNoToolCalls
	}

	logger := telemetry.WithNode(telemetry.WithRepo(n.logger, s.RepoURL), "tool_call")
	runner := n.tools(s.ClonePath)

	turns := make([]domain.Turn, 0, len(last.ToolCalls))
	for _, call := range last.ToolCalls {
		logger.Info("executing tool", "tool", call.Name)

		result, err := runner.Execute(ctx, call)
		if err != nil {
			logger.Error("tool failed", "tool", call.Name, "error", err)
			result = fmt.Sprintf("Error: %v", err)
		}

		turns = append(turns, domain.ToolResultTurn(call.ID, result))
	}

	return Delta{Conversation: turns}, nil
}
