package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shaiso/Critiquely/internal/domain"
	"github.com/shaiso/Critiquely/internal/repo"
)

const defaultListLimit = 50

// NewRunCmd создаёт группу команд для просмотра runs.
// Команды читают напрямую из Postgres и требуют заданного DSN.
func NewRunCmd(dbURL *string, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Inspect review runs",
	}

	cmd.AddCommand(
		newRunListCmd(dbURL, outputFn),
		newRunShowCmd(dbURL, outputFn),
	)

	return cmd
}

func newRunListCmd(dbURL *string, outputFn func() *Output) *cobra.Command {
	var status string
	var limit int
	var offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List review runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			pool, err := repo.NewPool(cmd.Context(), *dbURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()

			runs, err := repo.NewRunRepo(pool).List(cmd.Context(), repo.RunFilter{
				Status: domain.RunStatus(status),
				Limit:  limit,
				Offset: offset,
			})
			if err != nil {
				return err
			}

			headers := []string{"ID", "REPO", "BRANCH", "STATUS", "NEW_PR", "CREATED"}
			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = []string{
					r.ID.String(),
					r.RepoURL,
					r.Branch,
					string(r.Status),
					r.NewPRURL,
					r.CreatedAt.Format(time.RFC3339),
				}
			}

			out.Print(headers, rows, runs)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (PENDING, RUNNING, SUCCEEDED, FAILED)")
	cmd.Flags().IntVar(&limit, "limit", defaultListLimit, "Maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of results to skip")

	return cmd
}

func newRunShowCmd(dbURL *string, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run ID %q: %w", args[0], err)
			}

			pool, err := repo.NewPool(cmd.Context(), *dbURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer pool.Close()

			run, err := repo.NewRunRepo(pool).GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}

			headers := []string{"FIELD", "VALUE"}
			rows := [][]string{
				{"ID", run.ID.String()},
				{"Repo", run.RepoURL},
				{"Original PR", run.OriginalPRURL},
				{"Branch", run.Branch},
				{"Status", string(run.Status)},
				{"New PR", run.NewPRURL},
				{"Error", run.Error},
				{"Created", run.CreatedAt.Format(time.RFC3339)},
				{"Duration", run.Duration().String()},
			}

			out.Print(headers, rows, run)
			return nil
		},
	}
}
