package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"groom/constants/lipgloss"
	"groom/githost"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the work queue from the repository tree and restart progress.",
	Long: `Index enumerates the repository's default branch, filters the file tree by
extension and exclusion rules, and replaces the persisted work queue. The
cursor resets to zero, so the next run starts from the top.`,
	Run: func(cmd *cobra.Command, args []string) {
		deps := handleRootCommand(cmd)
		defer deps.Store.Close()
		handleIndexCommand(deps)
	},
}

func handleIndexCommand(deps *RootDependencies) {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	if err := ensureRepository(ctx, deps, reader); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}

	gateway, err := githost.NewGateway(&githost.GatewayConfig{
		BaseURL:    deps.Config.GitHubBaseURL,
		Repository: deps.Config.Repository,
		Token:      deps.Config.GitHubToken,
	})
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}

	queue, err := buildQueue(ctx, deps, gateway)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}

	fmt.Println(lipgloss.BoxStyle.Render(fmt.Sprintf("Indexed %d files from %s", len(queue), deps.Config.Repository)))
}
