package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"groom/constants/lipgloss"
	"groom/metrics"
	"groom/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show persisted progress and the most recent mutations.",
	Run: func(cmd *cobra.Command, args []string) {
		deps := handleRootCommand(cmd)
		defer deps.Store.Close()
		handleStatusCommand(deps)
	},
}

func handleStatusCommand(deps *RootDependencies) {
	ctx := context.Background()

	repository, err := deps.Store.Repository(ctx)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}
	if repository == "" {
		repository = deps.Config.Repository
	}
	if repository == "" {
		fmt.Println(lipgloss.Yellow.Render("No repository configured yet. Run 'groom run' or 'groom index' first."))
		return
	}

	queue, indexed, err := deps.Store.Queue(ctx)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}
	cursor, err := deps.Store.Cursor(ctx)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}
	model, err := deps.Store.Model(ctx)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}
	if model == "" {
		model = deps.Config.Model
	}

	if !indexed {
		fmt.Println(lipgloss.BoxStyle.Render(fmt.Sprintf("Repository: %s - not indexed yet", repository)))
		return
	}

	info := fmt.Sprintf("Repository: %s - Model: %s - Progress: %d%% (%d/%d)",
		repository, model, metrics.Progress(cursor, len(queue)), cursor, len(queue))
	fmt.Println(lipgloss.BoxStyle.Render(info))

	insights, err := deps.Store.Recent(ctx, store.RecentInsightLimit)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}
	if len(insights) == 0 {
		fmt.Println(lipgloss.Gray.Render("No mutations recorded yet."))
		return
	}

	fmt.Println(lipgloss.Green.Render("Recent mutations:"))
	for _, insight := range insights {
		fmt.Println(lipgloss.Gray.Render(fmt.Sprintf("  %s  %s",
			insight.CreatedAt.Local().Format("2006-01-02 15:04:05"), insight.Path)))
	}
}
