package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"groom/config"
	"groom/constants/lipgloss"
	"groom/store"
	"groom/utils"
)

const version = "0.3.1"

// RootDependencies wires the pieces every subcommand needs.
type RootDependencies struct {
	Config   *config.Config
	Store    *store.Store
	Cwd      string
	Identity string
}

var rootCmd = &cobra.Command{
	Use:   "groom",
	Short: "Walk a repository file by file and let a model groom each file.",
	Long: `Groom walks a remote repository file by file, runs each file through a
pipeline of model-driven transformation steps, and writes materially improved
content back through the code host's contents API. Progress survives restarts:
the work queue and cursor persist locally, so a stopped run resumes where it
left off.`,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Println(version)
			return
		}
		_ = cmd.Help()
	},
}

func handleRootCommand(cmd *cobra.Command) *RootDependencies {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error getting current directory: %v", err)))
		os.Exit(1)
	}

	cfg := config.LoadConfigs(rootCmd, cwd)

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("Error opening state database: %v", err)))
		os.Exit(1)
	}

	return &RootDependencies{
		Config:   cfg,
		Store:    st,
		Cwd:      cwd,
		// An anonymous run still needs an opaque subject identifier for the
		// event log.
		Identity: uuid.NewString(),
	}
}

// ensureRepository resolves the repository coordinates and code-host
// credential, prompting interactively for anything missing. Coordinates are
// persisted; the credential never is.
func ensureRepository(ctx context.Context, deps *RootDependencies, reader *bufio.Reader) error {
	if deps.Config.Repository == "" {
		persisted, err := deps.Store.Repository(ctx)
		if err != nil {
			return err
		}
		deps.Config.Repository = persisted
	}

	repository, err := utils.PromptIfEmpty(reader, deps.Config.Repository, "Repository (owner/name or URL)")
	if err != nil {
		return err
	}
	repository = config.NormalizeRepository(repository)
	if repository == "" {
		return fmt.Errorf("repository coordinates are required")
	}
	deps.Config.Repository = repository
	if err := deps.Store.SaveRepository(ctx, repository); err != nil {
		return err
	}

	deps.Config.GitHubToken, err = utils.PromptIfEmpty(reader, deps.Config.GitHubToken, "Code host token")
	return err
}

// ensureInference resolves the inference credential and the active model,
// preferring a persisted model (e.g. after a fallback demotion) over the
// configured one.
func ensureInference(ctx context.Context, deps *RootDependencies, reader *bufio.Reader) (string, error) {
	var err error
	deps.Config.GeminiAPIKey, err = utils.PromptIfEmpty(reader, deps.Config.GeminiAPIKey, "Inference API key")
	if err != nil {
		return "", err
	}

	model, err := deps.Store.Model(ctx)
	if err != nil {
		return "", err
	}
	if model == "" {
		model = deps.Config.Model
	}
	return model, nil
}

// Execute runs the root command.
func Execute() {
	config.InitFlags(rootCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(statusCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(lipgloss.Red.Render(fmt.Sprintf("%v", err)))
		os.Exit(1)
	}
}
