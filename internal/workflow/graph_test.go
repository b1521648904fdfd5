package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shaiso/Critiquely/internal/domain"
	"github.com/shaiso/Critiquely/internal/engine"
)

// fakeGit записывает вызовы git-операций.
type fakeGit struct {
	clonePath string
	cloneErr  error

	cloned   []string
	branches []string
	commits  []string
	pushes   []string
}

func (g *fakeGit) Clone(_ context.Context, url, branch string) (string, error) {
	if g.cloneErr != nil {
		return "", g.cloneErr
	}
	g.cloned = append(g.cloned, url+"@"+branch)
	return g.clonePath, nil
}

func (g *fakeGit) CreateBranch(_ context.Context, _, name string) error {
	g.branches = append(g.branches, name)
	return nil
}

func (g *fakeGit) Commit(_ context.Context, _, message string) (bool, error) {
	g.commits = append(g.commits, message)
	return true, nil
}

func (g *fakeGit) Push(_ context.Context, _, branch string) error {
	g.pushes = append(g.pushes, branch)
	return nil
}

// fakeHost записывает обращения к хостингу.
type fakeHost struct {
	prs      []string // "base<-head"
	comments []string
}

func (h *fakeHost) CreatePullRequest(_ context.Context, _, base, head, _, _ string) (int, string, error) {
	h.prs = append(h.prs, base+"<-"+head)
	return 42, "https://github.com/acme/widgets/pull/42", nil
}

func (h *fakeHost) CreateIssueComment(_ context.Context, prURL, body string) error {
	h.comments = append(h.comments, prURL+"|"+body)
	return nil
}

// fakeModel выдаёт заранее заданные ответы по порядку.
type fakeModel struct {
	t         *testing.T
	responses []domain.Turn
	calls     int
	withTools int           // сколько вызовов пришло с инструментами
	lastRoles []domain.Role // роль последней реплики каждого вызова
}

func (m *fakeModel) Complete(_ context.Context, turns []domain.Turn, tools []domain.ToolDef) (domain.Turn, error) {
	if m.calls >= len(m.responses) {
		m.t.Fatalf("unexpected model call #%d", m.calls+1)
	}
	if len(tools) > 0 {
		m.withTools++
	}
	if len(turns) > 0 {
		m.lastRoles = append(m.lastRoles, turns[len(turns)-1].Role)
	}
	resp := m.responses[m.calls]
	m.calls++
	return resp, nil
}

// fakeTools записывает выполненные вызовы инструментов.
type fakeTools struct {
	executed []string
}

func (f *fakeTools) Defs() []domain.ToolDef {
	return []domain.ToolDef{{
		Name:        "write_file",
		Description: "Write a file",
		Properties:  map[string]any{"path": map[string]any{"type": "string"}},
		Required:    []string{"path"},
	}}
}

func (f *fakeTools) Execute(_ context.Context, call domain.ToolCall) (string, error) {
	f.executed = append(f.executed, call.Name)
	return "ok", nil
}

func assistantText(content string) domain.Turn {
	return domain.Turn{Role: domain.RoleAssistant, Content: content}
}

func assistantToolCall(id, name string) domain.Turn {
	return domain.Turn{
		Role: domain.RoleAssistant,
		ToolCalls: []domain.ToolCall{
			{ID: id, Name: name, Arguments: json.RawMessage(`{"path":"a.py"}`)},
		},
	}
}

func recommendationJSON(file, summary, rec string) string {
	return fmt.Sprintf(`[{"file":%q,"summary":%q,"recommendation":%q}]`, file, summary, rec)
}

// newTestNodes собирает узлы на фейках поверх каталога с файлами files.
func newTestNodes(t *testing.T, model *fakeModel, files map[string]string, maxRounds int) (*Nodes, *fakeGit, *fakeHost, *fakeTools) {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	git := &fakeGit{clonePath: dir}
	host := &fakeHost{}
	tools := &fakeTools{}

	nodes := NewNodes(Config{
		Git:           git,
		Host:          host,
		Model:         model,
		Tools:         func(string) ToolRunner { return tools },
		MaxToolRounds: maxRounds,
		Logger:        slog.New(slog.DiscardHandler),
	})
	return nodes, git, host, tools
}

func runGraph(t *testing.T, n *Nodes, task *domain.ReviewTask) State {
	t.Helper()

	runner, err := Build(n, engine.RunConfig[State]{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	final, err := runner.Run(context.Background(), "run-1", InitialState(task))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	return final
}

func reviewTask(files ...string) *domain.ReviewTask {
	task := &domain.ReviewTask{
		RepoURL:       "https://github.com/acme/widgets",
		Branch:        "main",
		OriginalPRURL: "https://github.com/acme/widgets/pull/7",
	}
	for _, f := range files {
		task.ModifiedFiles = append(task.ModifiedFiles, domain.ModifiedFile{
			Filename:     f,
			LinesChanged: []int{1},
		})
	}
	return task
}

func TestReviewFlow_EndToEnd(t *testing.T) {
	model := &fakeModel{t: t, responses: []domain.Turn{
		// инспекция a.py: одна рекомендация, обёрнутая в code fence
		assistantText("```json\n" + recommendationJSON("a.py", "fix: handle error", "Check the error") + "\n```"),
		// инспекция b.py: без рекомендаций
		assistantText("[]"),
		// применение рекомендации: один вызов инструмента, затем готово
		assistantToolCall("call-1", "write_file"),
		assistantText("Done."),
	}}

	n, git, host, tools := newTestNodes(t, model, map[string]string{
		"a.py": "print('a')\n",
		"b.py": "print('b')\n",
	}, 0)

	final := runGraph(t, n, reviewTask("a.py", "b.py"))

	if model.calls != 4 {
		t.Errorf("model calls = %d, want 4", model.calls)
	}
	if len(git.cloned) != 1 || git.cloned[0] != "https://github.com/acme/widgets@main" {
		t.Errorf("cloned = %v", git.cloned)
	}
	if len(git.branches) != 1 || !strings.HasPrefix(git.branches[0], "critiquely/main-improvements-") {
		t.Errorf("branches = %v", git.branches)
	}
	if len(git.commits) != 1 || git.commits[0] != "fix: handle error" {
		t.Errorf("commits = %v, want [fix: handle error]", git.commits)
	}
	if len(git.pushes) != 1 || git.pushes[0] != git.branches[0] {
		t.Errorf("pushes = %v", git.pushes)
	}
	if len(tools.executed) != 1 || tools.executed[0] != "write_file" {
		t.Errorf("tools executed = %v", tools.executed)
	}
	if len(host.prs) != 1 || host.prs[0] != "main<-"+git.branches[0] {
		t.Errorf("prs = %v", host.prs)
	}
	if len(host.comments) != 1 || !strings.HasPrefix(host.comments[0], "https://github.com/acme/widgets/pull/7|") {
		t.Errorf("comments = %v", host.comments)
	}

	if final.PRNumber != 42 || final.PRURL != "https://github.com/acme/widgets/pull/42" {
		t.Errorf("final PR = #%d %s", final.PRNumber, final.PRURL)
	}
	if len(final.PendingFiles) != 0 || len(final.Recommendations) != 0 || final.Current != nil {
		t.Errorf("queues not drained: %+v", final)
	}
	if len(final.UpdatedFiles) != 1 || final.UpdatedFiles[0] != "a.py" {
		t.Errorf("UpdatedFiles = %v", final.UpdatedFiles)
	}
}

func TestReviewFlow_InspectsEachFileOnce(t *testing.T) {
	// по одной инспекции на файл; рекомендаций нет — run завершается без PR
	model := &fakeModel{t: t, responses: []domain.Turn{
		assistantText("[]"),
		assistantText("[]"),
		assistantText("[]"),
	}}

	n, git, host, _ := newTestNodes(t, model, map[string]string{
		"a.py": "a", "b.py": "b", "c.py": "c",
	}, 0)

	final := runGraph(t, n, reviewTask("a.py", "b.py", "c.py"))

	if model.calls != 3 {
		t.Errorf("model calls = %d, want 3 (one per modified file)", model.calls)
	}
	if model.withTools != 0 {
		t.Errorf("inspection must not expose tools, got %d tool calls", model.withTools)
	}
	if len(git.pushes) != 0 || len(host.prs) != 0 {
		t.Errorf("no changes must mean no push and no PR: pushes=%v prs=%v", git.pushes, host.prs)
	}
	if len(final.UpdatedFiles) != 0 {
		t.Errorf("UpdatedFiles = %v, want empty", final.UpdatedFiles)
	}
}

func TestReviewFlow_CommitPerRecommendation(t *testing.T) {
	// две рекомендации из одного файла — два tool-цикла, два коммита
	recs := `[{"file":"a.py","summary":"fix: first","recommendation":"First"},` +
		`{"file":"a.py","summary":"fix: second","recommendation":"Second"}]`

	model := &fakeModel{t: t, responses: []domain.Turn{
		assistantText(recs),
		assistantToolCall("call-1", "write_file"),
		assistantText("Done."),
		assistantToolCall("call-2", "write_file"),
		assistantText("Done."),
	}}

	n, git, _, tools := newTestNodes(t, model, map[string]string{"a.py": "a"}, 0)

	final := runGraph(t, n, reviewTask("a.py"))

	if want := []string{"fix: first", "fix: second"}; len(git.commits) != 2 ||
		git.commits[0] != want[0] || git.commits[1] != want[1] {
		t.Errorf("commits = %v, want %v", git.commits, want)
	}
	if len(tools.executed) != 2 {
		t.Errorf("tools executed = %v, want 2 calls", tools.executed)
	}
	if len(final.UpdatedFiles) != 1 {
		t.Errorf("UpdatedFiles = %v, want one deduplicated entry", final.UpdatedFiles)
	}
}

func TestReviewFlow_ToolResultReachesModel(t *testing.T) {
	// после выполнения инструмента его результат возвращается модели:
	// третий вызов продолжает tool-цикл, а не начинает новый, и run
	// доходит до PR вместо зацикливания на apply_recommendations
	model := &fakeModel{t: t, responses: []domain.Turn{
		assistantText(recommendationJSON("a.py", "fix: handle error", "Check the error")),
		assistantToolCall("call-1", "write_file"),
		assistantText("Done."),
	}}

	n, git, host, _ := newTestNodes(t, model, map[string]string{"a.py": "a"}, 0)

	final := runGraph(t, n, reviewTask("a.py"))

	if model.calls != 3 {
		t.Fatalf("model calls = %d, want 3", model.calls)
	}
	if got := model.lastRoles[2]; got != domain.RoleTool {
		t.Errorf("continuation call ends with %q turn, want %q", got, domain.RoleTool)
	}
	if len(git.commits) != 1 || len(host.prs) != 1 {
		t.Errorf("commits = %v, prs = %v, want one of each", git.commits, host.prs)
	}
	if final.Current != nil {
		t.Errorf("Current = %v, want nil after completion", final.Current)
	}
}

func TestReviewFlow_NoToolCallSingleRoundTrip(t *testing.T) {
	// модель отвечает текстом без вызова инструмента — одна поездка
	// на рекомендацию, без коммитов и без PR
	model := &fakeModel{t: t, responses: []domain.Turn{
		assistantText(recommendationJSON("a.py", "fix: style", "Rename the variable")),
		assistantText("Nothing to change."),
	}}

	n, git, host, tools := newTestNodes(t, model, map[string]string{"a.py": "a"}, 0)

	runGraph(t, n, reviewTask("a.py"))

	if model.calls != 2 {
		t.Errorf("model calls = %d, want 2", model.calls)
	}
	if len(tools.executed) != 0 || len(git.commits) != 0 {
		t.Errorf("no tool call must mean no execution and no commit: %v %v",
			tools.executed, git.commits)
	}
	if len(host.prs) != 0 {
		t.Errorf("prs = %v, want none", host.prs)
	}
}

func TestReviewFlow_ToolRoundLimit(t *testing.T) {
	// модель бесконечно просит инструменты — цикл обрывается лимитом
	model := &fakeModel{t: t, responses: []domain.Turn{
		assistantText(recommendationJSON("a.py", "fix: loop", "Keep editing")),
		assistantToolCall("call-1", "write_file"),
		assistantToolCall("call-2", "write_file"),
	}}

	n, _, _, tools := newTestNodes(t, model, map[string]string{"a.py": "a"}, 2)

	final := runGraph(t, n, reviewTask("a.py"))

	if model.calls != 3 {
		t.Errorf("model calls = %d, want 3 (inspect + 2 tool rounds)", model.calls)
	}
	if len(tools.executed) != 2 {
		t.Errorf("tools executed = %v, want 2", tools.executed)
	}
	if final.Current != nil {
		t.Errorf("Current = %v, want nil after hitting the limit", final.Current)
	}

	var noticed bool
	for _, turn := range final.Conversation {
		if strings.Contains(turn.Content, "Tool call limit reached") {
			noticed = true
		}
	}
	if !noticed {
		t.Error("conversation has no tool limit notice")
	}
}

func TestInspectFiles_UnreadableFileIsSkipped(t *testing.T) {
	// файл из задачи отсутствует в рабочей копии: запись снимается с
	// очереди, модель не вызывается, run продолжается
	model := &fakeModel{t: t, responses: []domain.Turn{
		assistantText("[]"),
	}}

	n, _, _, _ := newTestNodes(t, model, map[string]string{"b.py": "b"}, 0)

	final := runGraph(t, n, reviewTask("missing.py", "b.py"))

	if model.calls != 1 {
		t.Errorf("model calls = %d, want 1 (unreadable file skipped)", model.calls)
	}
	if len(final.PendingFiles) != 0 {
		t.Errorf("PendingFiles = %v, want drained", final.PendingFiles)
	}

	var noted bool
	for _, turn := range final.Conversation {
		if strings.Contains(turn.Content, "Could not read file missing.py") {
			noted = true
		}
	}
	if !noted {
		t.Error("conversation has no note about the unreadable file")
	}
}

func TestReviewFlow_CloneFailureStopsRun(t *testing.T) {
	model := &fakeModel{t: t}
	n, git, _, _ := newTestNodes(t, model, nil, 0)
	git.cloneErr = fmt.Errorf("authentication required")

	runner, err := Build(n, engine.RunConfig[State]{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	_, err = runner.Run(context.Background(), "run-1", InitialState(reviewTask("a.py")))

	var stepErr *engine.StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("Run() error = %v, want StepError", err)
	}
	if stepErr.Node != NodeCloneRepo {
		t.Errorf("failing node = %q, want %q", stepErr.Node, NodeCloneRepo)
	}
	if model.calls != 0 {
		t.Errorf("model called %d times after clone failure", model.calls)
	}
}

func TestToolRequestedRouting(t *testing.T) {
	n := NewNodes(Config{Logger: slog.New(slog.DiscardHandler)})
	rec := domain.Recommendation{File: "a.py"}

	tests := []struct {
		name  string
		state State
		want  string
		end   bool
	}{
		{
			name: "tool call requested",
			state: State{
				Conversation: []domain.Turn{assistantToolCall("c1", "write_file")},
			},
			want: NodeToolCall,
		},
		{
			name: "recommendations remain",
			state: State{
				Conversation:    []domain.Turn{assistantText("done")},
				Recommendations: []domain.Recommendation{rec},
			},
			want: NodeApplyRecommendations,
		},
		{
			name: "current recommendation finished",
			state: State{
				Conversation: []domain.Turn{assistantText("done")},
				Current:      &rec,
			},
			want: NodeCommitCode,
		},
		{
			name: "nothing updated",
			state: State{
				Conversation: []domain.Turn{assistantText("done")},
			},
			end: true,
		},
		{
			name: "updates ready to publish",
			state: State{
				Conversation: []domain.Turn{assistantText("done")},
				UpdatedFiles: []string{"a.py"},
			},
			want: NodePushCode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			route := n.ToolRequested(tt.state)
			if route.IsEnd() != tt.end {
				t.Fatalf("IsEnd() = %v, want %v", route.IsEnd(), tt.end)
			}
			if !tt.end && route.Next() != tt.want {
				t.Errorf("Next() = %q, want %q", route.Next(), tt.want)
			}
		})
	}
}
