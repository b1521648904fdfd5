package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/Critiquely/internal/domain"
	"github.com/shaiso/Critiquely/internal/mq"
)

// ErrNoFiles — задача без единого изменённого файла.
var ErrNoFiles = errors.New("at least one --file is required")

// NewReviewCmd создаёт группу команд для работы с review-задачами.
func NewReviewCmd(rabbitURL *string, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Manage review tasks",
	}

	cmd.AddCommand(newReviewSubmitCmd(rabbitURL, outputFn))

	return cmd
}

func newReviewSubmitCmd(rabbitURL *string, outputFn func() *Output) *cobra.Command {
	var repoURL string
	var prURL string
	var branch string
	var files []string
	var taskFile string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a review task to the queue",
		Long: `Submit a review task to the queue.

The task is either read from a JSON file (--task) or assembled from
flags. Each --file takes the form PATH:LINE,LINE,... with the line
numbers modified in the original PR.`,
		Example: `  critiquely review submit --task task.json
  critiquely review submit \
    --repo-url https://github.com/acme/widgets \
    --pr-url https://github.com/acme/widgets/pull/7 \
    --branch main \
    --file src/main.py:10,11,42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			var task *domain.ReviewTask
			if taskFile != "" {
				body, err := os.ReadFile(taskFile)
				if err != nil {
					return fmt.Errorf("read task file: %w", err)
				}
				task, err = domain.ParseReviewTask(body)
				if err != nil {
					return err
				}
			} else {
				modified, err := parseFileFlags(files)
				if err != nil {
					return err
				}
				task = &domain.ReviewTask{
					RepoURL:       repoURL,
					OriginalPRURL: prURL,
					Branch:        branch,
					ModifiedFiles: modified,
				}
				if err := task.Validate(); err != nil {
					return err
				}
			}

			logger := slog.New(slog.DiscardHandler)
			conn, err := mq.NewConnection(*rabbitURL, logger)
			if err != nil {
				return fmt.Errorf("connect to RabbitMQ: %w", err)
			}
			defer conn.Close()

			if err := mq.SetupTopology(cmd.Context(), conn); err != nil {
				return fmt.Errorf("setup topology: %w", err)
			}

			publisher := mq.NewPublisher(conn, logger)
			if err := publisher.PublishReviewRequest(cmd.Context(), task); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Review task submitted for %s (%d files)",
				task.RepoURL, len(task.ModifiedFiles)))
			return nil
		},
	}

	cmd.Flags().StringVar(&taskFile, "task", "", "Path to a review task JSON file")
	cmd.Flags().StringVar(&repoURL, "repo-url", "", "Repository HTTPS URL")
	cmd.Flags().StringVar(&prURL, "pr-url", "", "URL of the PR that triggered the review")
	cmd.Flags().StringVar(&branch, "branch", "", "Base branch of the review")
	cmd.Flags().StringArrayVar(&files, "file", nil, "Modified file as PATH:LINE,LINE,... (repeatable)")

	return cmd
}

// parseFileFlags разбирает значения --file вида "path:1,2,3".
func parseFileFlags(files []string) ([]domain.ModifiedFile, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	modified := make([]domain.ModifiedFile, 0, len(files))
	for _, f := range files {
		path, linesPart, found := strings.Cut(f, ":")
		if !found || path == "" {
			return nil, fmt.Errorf("invalid --file %q, want PATH:LINE,LINE,...", f)
		}

		var lines []int
		for _, raw := range strings.Split(linesPart, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return nil, fmt.Errorf("invalid line number %q in --file %q", raw, f)
			}
			lines = append(lines, n)
		}

		modified = append(modified, domain.ModifiedFile{
			Filename:     path,
			LinesChanged: lines,
		})
	}
	return modified, nil
}
