package workflow

import (
	"github.com/shaiso/Critiquely/internal/engine"
)

// MoreFiles решает, продолжать ли инспекцию: пока очередь PendingFiles
// непуста, граф возвращается к inspect_files.
func (n *Nodes) MoreFiles(s State) engine.Route {
	if len(s.PendingFiles) > 0 {
		n.logger.Info("files left to inspect",
			"remaining", len(s.PendingFiles), "next", s.PendingFiles[0].Filename)
		return engine.To(NodeInspectFiles)
	}

	n.logger.Info("all modified files inspected")
	return engine.To(NodeApplyRecommendations)
}

// ToolRequested маршрутизирует после применения рекомендации:
//
//   - модель запросила инструмент — выполнить его
//   - текущая рекомендация отработала — закоммитить её изменения
//   - остались рекомендации — применять дальше
//   - ни один файл не изменён — завершить run без PR
//   - иначе — публиковать изменения
func (n *Nodes) ToolRequested(s State) engine.Route {
	if s.LastTurn().HasToolCalls() {
		return engine.To(NodeToolCall)
	}

	if s.Current != nil {
		return engine.To(NodeCommitCode)
	}

	if len(s.Recommendations) > 0 {
		return engine.To(NodeApplyRecommendations)
	}

	if len(s.UpdatedFiles) == 0 {
		n.logger.Info("no files updated, finishing without a PR")
		return engine.End()
	}

	return engine.To(NodePushCode)
}
