package workflow

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"github.com/shaiso/Critiquely/internal/domain"
	"github.com/shaiso/Critiquely/internal/telemetry"
)

// CloneRepo клонирует базовую ветку репозитория во временную
// рабочую копию.
func (n *Nodes) CloneRepo(ctx context.Context, s State) (Delta, error) {
	logger := telemetry.WithRepo(n.logger, s.RepoURL)
	logger.Info("cloning repository", "branch", s.BaseBranch)

	path, err := n.git.Clone(ctx, s.RepoURL, s.BaseBranch)
	if err != nil {
		return Delta{}, fmt.Errorf("clone %s: %w", s.RepoURL, err)
	}

	logger.Info("repository cloned", "path", path)

	return Delta{
		ClonePath: strp(path),
		Conversation: []domain.Turn{
			domain.UserTurn(fmt.Sprintf("Cloned %s@%s to %s", s.RepoURL, s.BaseBranch, path)),
		},
	}, nil
}

// CreateBranch создаёт рабочую ветку для будущего PR.
func (n *Nodes) CreateBranch(ctx context.Context, s State) (Delta, error) {
	u := uuid.New()
	suffix := hex.EncodeToString(u[:])[:8]
	name := fmt.Sprintf("critiquely/%s-improvements-%s", s.BaseBranch, suffix)

	if err := n.git.CreateBranch(ctx, s.ClonePath, name); err != nil {
		return Delta{}, fmt.Errorf("create branch %s: %w", name, err)
	}

	telemetry.WithRepo(n.logger, s.RepoURL).Info("branch created", "branch", name)

	return Delta{
		NewBranch: strp(name),
		Conversation: []domain.Turn{
			domain.UserTurn(fmt.Sprintf("New branch created: %s", name)),
		},
	}, nil
}

// CommitCode коммитит изменения завершённой рекомендации и закрывает
// её tool-цикл: текущая рекомендация сбрасывается, счётчик раундов
// обнуляется. Отсутствие изменений не считается ошибкой.
func (n *Nodes) CommitCode(ctx context.Context, s State) (Delta, error) {
	message := "Apply automated code review improvements"
	if s.Current != nil {
		message = s.Current.CommitMessage()
	}

	committed, err := n.git.Commit(ctx, s.ClonePath, message)
	if err != nil {
		return Delta{}, fmt.Errorf("commit: %w", err)
	}

	d := Delta{
		Current:    nil,
		CurrentSet: true,
		ToolRounds: intp(0),
	}

	logger := telemetry.WithRepo(n.logger, s.RepoURL)
	if !committed {
		logger.Info("nothing to commit")
		d.Conversation = []domain.Turn{domain.UserTurn("No changes to commit")}
		return d, nil
	}

	logger.Info("changes committed", "message", message)

	d.Conversation = []domain.Turn{
		domain.UserTurn(fmt.Sprintf("Committed changes to '%s'", s.NewBranch)),
	}
	return d, nil
}

// PushCode отправляет рабочую ветку в origin.
func (n *Nodes) PushCode(ctx context.Context, s State) (Delta, error) {
	if err := n.git.Push(ctx, s.ClonePath, s.NewBranch); err != nil {
		return Delta{}, fmt.Errorf("push %s: %w", s.NewBranch, err)
	}

	telemetry.WithRepo(n.logger, s.RepoURL).Info("branch pushed", "branch", s.NewBranch)

	return Delta{
		Conversation: []domain.Turn{
			domain.UserTurn(fmt.Sprintf("Pushed branch '%s' to origin", s.NewBranch)),
		},
	}, nil
}

// PRRepo открывает pull request из рабочей ветки в базовую.
func (n *Nodes) PRRepo(ctx context.Context, s State) (Delta, error) {
	number, url, err := n.host.CreatePullRequest(ctx, s.RepoURL, s.BaseBranch, s.NewBranch, prTitle, prBody)
	if err != nil {
		return Delta{}, fmt.Errorf("open PR %s -> %s: %w", s.NewBranch, s.BaseBranch, err)
	}

	telemetry.WithRepo(n.logger, s.RepoURL).Info("pull request opened", "number", number, "url", url)

	return Delta{
		PRNumber: intp(number),
		PRURL:    strp(url),
		Conversation: []domain.Turn{
			domain.UserTurn(fmt.Sprintf("Opened PR #%d: %s", number, url)),
		},
	}, nil
}

// CommentOnOriginalPR публикует на исходном PR ссылку на PR с правками.
func (n *Nodes) CommentOnOriginalPR(ctx context.Context, s State) (Delta, error) {
	if err := n.host.CreateIssueComment(ctx, s.OriginalPRURL, commentBody(s.PRURL)); err != nil {
		return Delta{}, fmt.Errorf("comment on %s: %w", s.OriginalPRURL, err)
	}

	telemetry.WithRepo(n.logger, s.RepoURL).Info("commented on original PR", "url", s.OriginalPRURL)

	return Delta{
		Conversation: []domain.Turn{
			domain.UserTurn(fmt.Sprintf("Commented on original PR %s", s.OriginalPRURL)),
		},
	}, nil
}
