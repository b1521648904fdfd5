package workflow

import (
	"github.com/shaiso/Critiquely/internal/engine"
)

// Имена узлов review-графа.
const (
	NodeCloneRepo            = "clone_repo"
	NodeCreateBranch         = "create_branch"
	NodeInspectFiles         = "inspect_files"
	NodeApplyRecommendations = "apply_recommendations"
	NodeToolCall             = "tool_call"
	NodeCommitCode           = "commit_code"
	NodePushCode             = "push_code"
	NodePRRepo               = "pr_repo"
	NodeCommentOnOriginalPR  = "comment_on_original_pr"
)

// Build собирает review-граф:
//
//	clone_repo → create_branch → inspect_files ⟲ (пока есть файлы)
//	  → apply_recommendations ⇄ tool_call; commit_code по завершении
//	  → push_code → pr_repo → comment_on_original_pr → END
//
// После apply_recommendations маршрутизатор либо выполняет запрошенный
// инструмент (и возвращает его результат обратно в
// apply_recommendations), либо коммитит завершённую рекомендацию, либо
// берёт следующую, либо (когда всё применено) публикует ветку и
// открывает PR. Если ни один файл не был изменён, run завершается без
// PR.
func Build(n *Nodes, cfg engine.RunConfig[State]) (*engine.Runner[State, Delta], error) {
	g := engine.New(Merge).
		AddNode(NodeCloneRepo, n.CloneRepo).
		AddNode(NodeCreateBranch, n.CreateBranch).
		AddNode(NodeInspectFiles, n.InspectFiles).
		AddNode(NodeApplyRecommendations, n.ApplyRecommendations).
		AddNode(NodeToolCall, n.ToolCall).
		AddNode(NodeCommitCode, n.CommitCode).
		AddNode(NodePushCode, n.PushCode).
		AddNode(NodePRRepo, n.PRRepo).
		AddNode(NodeCommentOnOriginalPR, n.CommentOnOriginalPR).
		SetEntry(NodeCloneRepo).
		AddEdge(NodeCloneRepo, NodeCreateBranch).
		AddEdge(NodeCreateBranch, NodeInspectFiles).
		AddRouter(NodeInspectFiles, n.MoreFiles).
		AddRouter(NodeApplyRecommendations, n.ToolRequested).
		AddEdge(NodeToolCall, NodeApplyRecommendations).
		AddEdge(NodeCommitCode, NodeApplyRecommendations).
		AddEdge(NodePushCode, NodePRRepo).
		AddEdge(NodePRRepo, NodeCommentOnOriginalPR).
		AddEdge(NodeCommentOnOriginalPR, engine.EndNode)

	return g.Compile(cfg)
}
