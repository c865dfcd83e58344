package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"groom/constants/lipgloss"
	"groom/githost"
	"groom/indexer"
	"groom/metrics"
	"groom/pipeline"
	"groom/providers/gemini"
	provider_models "groom/providers/models"
	"groom/scheduler"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Go live: process the work queue one file per cycle until exhausted.",
	Long: `Run resolves configuration (prompting for anything missing), indexes the
repository if no work queue is persisted, and then processes one file per
cycle until the queue is exhausted or the process is interrupted. The cursor
persists after every file, so an interrupted run resumes where it stopped.`,
	Run: func(cmd *cobra.Command, args []string) {
		deps := handleRootCommand(cmd)
		defer deps.Store.Close()
		handleRunCommand(deps)
	},
}

func handleRunCommand(deps *RootDependencies) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reader := bufio.NewReader(os.Stdin)

	if err := ensureRepository(ctx, deps, reader); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}
	model, err := ensureInference(ctx, deps, reader)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}

	gateway, err := githost.NewGateway(&githost.GatewayConfig{
		BaseURL:    deps.Config.GitHubBaseURL,
		Repository: deps.Config.Repository,
		Token:      deps.Config.GitHubToken,
		Warn: func(message string) {
			fmt.Println(lipgloss.Yellow.Render(message))
		},
	})
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}

	selection := provider_models.NewModelSelection(model)

	// The scheduler owns demotion logging, but it does not exist yet when the
	// provider is built; the closure resolves it at call time.
	var sched *scheduler.Scheduler
	provider := gemini.NewGeminiProvider(&gemini.GeminiConfig{
		BaseURL:   deps.Config.GeminiBaseURL,
		APIKey:    deps.Config.GeminiAPIKey,
		Selection: selection,
		OnFallback: func(from, to string) {
			if sched != nil {
				sched.Log(scheduler.SeverityWarning, fmt.Sprintf("model '%s' not found, falling back to '%s'", from, to))
			}
			_ = deps.Store.SaveModel(context.Background(), to)
		},
	})

	runMetrics := metrics.NewRunMetrics()
	sched = scheduler.New(scheduler.Options{
		Interval: time.Duration(deps.Config.IntervalSeconds) * time.Second,
		Identity: deps.Identity,
		Executor: pipeline.NewExecutor(gateway, provider),
		Cursors:  deps.Store,
		Insights: deps.Store,
		Metrics:  runMetrics,
		Echo:     echoLog,
	})

	queue, indexed, err := deps.Store.Queue(ctx)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		return
	}
	cursor := 0
	if indexed {
		cursor, err = deps.Store.Cursor(ctx)
		if err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
			return
		}
	} else {
		queue, err = buildQueue(ctx, deps, gateway)
		if err != nil {
			fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
			return
		}
	}
	sched.SetQueue(queue, cursor)

	sessionInfo := fmt.Sprintf("Repository: %s - Model: %s - Queue: %d files - Resuming at: %d",
		deps.Config.Repository, selection.Get(), len(queue), cursor)
	fmt.Println(lipgloss.BoxStyle.Render(sessionInfo))

	sched.Start(ctx)

	select {
	case <-ctx.Done():
		fmt.Println(lipgloss.Yellow.Render("\n🔄 Stopping after the current file..."))
		sched.Stop()
		<-sched.Done()
	case <-sched.Done():
	}

	finalCursor, total := sched.Cursor()
	runMetrics.Display(finalCursor, total)
}

// buildQueue indexes the repository and persists the fresh queue.
func buildQueue(ctx context.Context, deps *RootDependencies, gateway *githost.Gateway) ([]string, error) {
	spinner := pterm.DefaultSpinner.WithStyle(pterm.NewStyle(pterm.FgLightBlue)).WithRemoveWhenDone(true)
	spinnerIndexing, _ := spinner.Start("Indexing repository...")

	queue, err := indexer.New(gateway).Index(ctx)
	if err != nil {
		spinnerIndexing.Stop()
		return nil, err
	}

	changed, err := deps.Store.SaveQueue(ctx, queue)
	spinnerIndexing.Stop()
	fmt.Print("\r")
	if err != nil {
		return nil, err
	}
	if !changed {
		fmt.Println(lipgloss.Gray.Render("Repository tree unchanged since the last index."))
	}
	return queue, nil
}

func echoLog(entry scheduler.LogEntry) {
	line := fmt.Sprintf("[%s] %s", entry.Time.Format("15:04:05"), entry.Message)
	switch entry.Severity {
	case scheduler.SeveritySuccess:
		fmt.Println(lipgloss.Green.Render(line))
	case scheduler.SeverityError:
		fmt.Println(lipgloss.Red.Render(line))
	case scheduler.SeverityWarning:
		fmt.Println(lipgloss.Yellow.Render(line))
	default:
		fmt.Println(lipgloss.Gray.Render(line))
	}
}
