package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitchat/internal/app"
	"gitchat/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	flagBackend string
	flagNoSave  bool
)

func buildApplication() (*app.Application, error) {
	cfg, err := app.LoadConfig(app.DefaultConfigPath())
	if err != nil {
		return nil, err
	}
	if flagBackend != "" {
		cfg.BackendURL = flagBackend
	}
	if flagNoSave {
		cfg.SaveTranscripts = false
	}
	return app.NewApplication(cfg), nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()
	return ctx, cancel
}

func main() {
	root := &cobra.Command{
		Use:     "gitchat [owner/repo]",
		Short:   "Chat with a public GitHub repository from the terminal",
		Long:    "gitchat points the analysis backend at a public GitHub repository and opens an interactive conversation about its contents.\n\nRun without arguments to pick a repository inside the TUI, or pass one (owner/repo or a full URL) to start analyzing immediately.",
		Version: version,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApplication()
			if err != nil {
				return err
			}
			initial := ""
			if len(args) > 0 {
				initial = args[0]
			}
			p := tea.NewProgram(tui.New(application, initial), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return err
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flagBackend, "backend", "", "backend base URL (overrides config and GITCHAT_BACKEND_URL)")
	root.Flags().BoolVar(&flagNoSave, "no-save", false, "do not save the transcript on exit")

	askCmd := &cobra.Command{
		Use:   "ask <owner/repo> <question>",
		Short: "One-shot question without the TUI",
		Long:  "Initialize a repository, send a single question, and print the answer.\n\nExamples:\n  - gitchat ask octocat/hello-world \"What does this repo do?\"\n  - gitchat ask https://github.com/golang/go \"Where is the scheduler?\"",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApplication()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			fmt.Fprintln(os.Stderr, "Analyzing repository...")
			start := time.Now()
			repo, err := application.Chat.Initialize(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Ready (%s) in %s\n\n", repo.URL, time.Since(start).Round(time.Millisecond))

			reply, err := application.Chat.Send(ctx, args[1])
			if err != nil {
				return err
			}
			fmt.Println(reply.Content)
			application.SaveTranscript()
			return nil
		},
	}
	root.AddCommand(askCmd)

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApplication()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := application.Client.Healthcheck(ctx); err != nil {
				return err
			}
			fmt.Printf("backend ok: %s\n", application.Config.BackendURL)
			return nil
		},
	}
	root.AddCommand(healthCmd)

	transcriptsCmd := &cobra.Command{
		Use:   "transcripts",
		Short: "List saved conversation transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApplication()
			if err != nil {
				return err
			}
			store := application.Transcripts
			if store == nil {
				store = app.NewTranscriptStore("")
			}
			keys, err := store.List()
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				fmt.Println("no saved transcripts")
				return nil
			}
			for _, k := range keys {
				fmt.Println(k)
			}
			return nil
		},
	}
	root.AddCommand(transcriptsCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
