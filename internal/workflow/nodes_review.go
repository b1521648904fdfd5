package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/shaiso/Critiquely/internal/domain"
	"github.com/shaiso/Critiquely/internal/telemetry"
)

// InspectFiles инспектирует головной файл очереди PendingFiles:
// отправляет его содержимое модели и собирает рекомендации из ответа.
//
// Файл снимается с очереди в любом исходе, кроме ошибки самой модели,
// поэтому каждая файловая запись инспектируется ровно один раз.
func (n *Nodes) InspectFiles(ctx context.Context, s State) (Delta, error) {
	if len(s.PendingFiles) == 0 {
		n.logger.Info("no modified files to inspect, skipping")
		return Delta{}, nil
	}

	entry := s.PendingFiles[0]
	rest := slices.Clone(s.PendingFiles[1:])

	logger := telemetry.WithNode(telemetry.WithRepo(n.logger, s.RepoURL), "inspect_files")

	path := filepath.Join(s.ClonePath, entry.Filename)
	content, err := os.ReadFile(path)
	if err != nil {
		msg := fmt.Sprintf("Could not read file %s: %v", entry.Filename, err)
		logger.Error("file read failed", "file", entry.Filename, "error", err)
		return Delta{
			PendingFiles: &rest,
			Conversation: []domain.Turn{domain.UserTurn(msg)},
		}, nil
	}

	logger.Info("inspecting file", "file", entry.Filename, "lines", entry.LinesChanged)

	prompt := domain.UserTurn(inspectPrompt(entry, string(content)))
	response, err := n.model.Complete(ctx, []domain.Turn{prompt}, nil)
	if err != nil {
		return Delta{}, fmt.Errorf("inspect %s: %w", entry.Filename, err)
	}

	var parsed []domain.Recommendation
	cleaned := stripMarkdownJSON(response.Content)
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		logger.Error("failed to parse recommendations", "error", err)
	}

	logger.Info("file inspected", "file", entry.Filename, "recommendations", len(parsed))

	recs := append(slices.Clone(s.Recommendations), parsed...)

	return Delta{
		PendingFiles:    &rest,
		Recommendations: &recs,
		Conversation:    []domain.Turn{prompt, response},
	}, nil
}

// ApplyRecommendations применяет рекомендации через tool-цикл модели.
//
// Узел работает в двух режимах:
//
//   - продолжение tool-цикла: если текущая рекомендация в работе и
//     последний ход — результат инструмента, модель получает весь
//     диалог и решает, нужен ли следующий вызов. Число раундов на
//     одну рекомендацию ограничено maxToolRounds.
//   - новая рекомендация: снимается головной элемент Recommendations,
//     модели предъявляются файл и требуемые изменения.
//
// Рекомендация считается завершённой, когда модель отвечает без
// запроса инструмента; тогда маршрутизатор отправляет состояние в
// commit_code, который и сбрасывает текущую рекомендацию.
func (n *Nodes) ApplyRecommendations(ctx context.Context, s State) (Delta, error) {
	logger := telemetry.WithNode(telemetry.WithRepo(n.logger, s.RepoURL), "apply_recommendations")

	if s.Current != nil {
		return n.continueApplying(ctx, s, logger)
	}

	if len(s.Recommendations) == 0 {
		logger.Info("no recommendations to apply, skipping")
		return Delta{}, nil
	}

	rec := s.Recommendations[0]
	rest := slices.Clone(s.Recommendations[1:])

	if rec.Recommendation.String() == "" {
		logger.Warn("recommendation has no instructions, skipping", "file", rec.File)
		return Delta{
			Recommendations: &rest,
			Current:         nil,
			CurrentSet:      true,
			Conversation: []domain.Turn{
				domain.UserTurn(fmt.Sprintf("No recommendations for %s", rec.File)),
			},
		}, nil
	}

	path := filepath.Join(s.ClonePath, rec.File)
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Error("file read failed", "file", rec.File, "error", err)
		return Delta{
			Recommendations: &rest,
			Current:         nil,
			CurrentSet:      true,
			Conversation: []domain.Turn{
				domain.UserTurn(fmt.Sprintf("File not found: %s", rec.File)),
			},
		}, nil
	}

	logger.Info("applying recommendation", "file", rec.File, "remaining", len(rest))

	prompt := domain.UserTurn(applyPrompt(&rec, string(content)))
	turns := append(slices.Clone(s.Conversation), prompt)

	response, err := n.model.Complete(ctx, turns, n.tools(s.ClonePath).Defs())
	if err != nil {
		return Delta{}, fmt.Errorf("apply recommendation for %s: %w", rec.File, err)
	}

	d := Delta{
		Recommendations: &rest,
		Conversation:    []domain.Turn{prompt, response},
		CurrentSet:      true,
	}

	if response.HasToolCalls() {
		d.Current = &rec
		d.ToolRounds = intp(1)
		d.UpdatedFiles = []string{rec.File}
	} else {
		logger.Info("model applied no changes", "file", rec.File)
		d.ToolRounds = intp(0)
	}

	return d, nil
}

// continueApplying продолжает tool-цикл текущей рекомендации после
// выполнения инструмента. Текущая рекомендация остаётся в состоянии:
// как только модель перестаёт запрашивать инструменты (или исчерпан
// лимит раундов), маршрутизатор уводит run в commit_code.
func (n *Nodes) continueApplying(ctx context.Context, s State, logger *slog.Logger) (Delta, error) {
	if s.ToolRounds >= n.maxToolRounds {
		logger.Warn("tool call limit reached, moving on",
			"file", s.Current.File, "rounds", s.ToolRounds)
		return Delta{
			Conversation: []domain.Turn{
				domain.UserTurn(fmt.Sprintf(
					"Tool call limit reached for %s, moving to the next recommendation", s.Current.File)),
			},
		}, nil
	}

	response, err := n.model.Complete(ctx, s.Conversation, n.tools(s.ClonePath).Defs())
	if err != nil {
		return Delta{}, fmt.Errorf("apply recommendation for %s: %w", s.Current.File, err)
	}

	if response.HasToolCalls() {
		return Delta{
			Conversation: []domain.Turn{response},
			ToolRounds:   intp(s.ToolRounds + 1),
		}, nil
	}

	logger.Info("recommendation applied", "file", s.Current.File, "rounds", s.ToolRounds)

	return Delta{Conversation: []domain.Turn{response}}, nil
}
