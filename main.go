package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"docchat/config"
	"docchat/data"
	"docchat/logger"
	"docchat/remote"
	"docchat/services"
	"docchat/tui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	cfg    config.Config
	client *remote.Client
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logger.Screen(err.Error(), color.New(color.FgRed))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()
	a := &app{}

	root := &cobra.Command{
		Use:           "docchat",
		Short:         "Ask questions about your document databases",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(v)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI()
		},
	}

	flags := root.PersistentFlags()
	flags.String("base-url", "", "base URL of the query service")
	flags.String("theme", "", "color theme: auto, dark or light")
	flags.Bool("verbose", false, "write debug entries to the log file")
	bindFlag(v, "remote.base_url", root, "base-url")
	bindFlag(v, "ui.theme", root, "theme")
	bindFlag(v, "log.verbose", root, "verbose")

	root.AddCommand(newDatabasesCmd(a), newAskCmd(a))
	return root
}

func bindFlag(v *viper.Viper, key string, cmd *cobra.Command, name string) {
	if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(name)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", name, err))
	}
}

func (a *app) setup(v *viper.Viper) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Log.Path, cfg.Log.Verbose); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	client, err := remote.NewClient(cfg.Remote.BaseURL, nil)
	if err != nil {
		return err
	}

	logger.Log.Infow("starting", "base_url", cfg.Remote.BaseURL, "theme", cfg.UI.Theme)
	a.cfg = cfg
	a.client = client
	return nil
}

func (a *app) runTUI() error {
	return tui.Run(tui.TUIConfig{
		Backend:     a.client,
		Loader:      services.NewCachedPreviewLoader(a.client, a.cfg.Preview.CacheTTL),
		Placeholder: a.client.ResolveLocator(a.cfg.Preview.Placeholder),
		Theme:       a.cfg.UI.Theme,
	})
}

func newDatabasesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "databases",
		Short: "List the databases the service can answer from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			selector := services.NewDatabaseSelector()
			if err := selector.Load(cmd.Context(), a.client); err != nil {
				return err
			}

			ids := selector.Available()
			if len(ids) == 0 {
				logger.Screen("No databases found.", color.New(color.FgYellow))
				return nil
			}

			selected, _ := selector.Selected()
			for _, id := range ids {
				marker := "  "
				if id == selected {
					marker = "* "
				}
				fmt.Fprintln(cmd.OutOrStdout(), marker+id)
			}
			return nil
		},
	}
}

func newAskCmd(a *app) *cobra.Command {
	var (
		database string
		copyCode bool
	)

	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Ask a single question and print the answer",
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			if strings.TrimSpace(question) == "" {
				reader := bufio.NewReader(cmd.InOrStdin())
				fmt.Fprint(cmd.OutOrStdout(), "Question: ")
				line, _ := reader.ReadString('\n')
				question = strings.TrimSpace(line)
			}

			store := data.NewConversationStore()
			selector := services.NewDatabaseSelector()
			if database != "" {
				selector.Select(database)
			} else if err := selector.Load(cmd.Context(), a.client); err != nil {
				logger.Log.Warnw("database discovery failed", "error", err)
				logger.Screen("Could not load databases.", color.New(color.FgYellow))
			}

			printer := CliPrinter{
				Out:    cmd.OutOrStdout(),
				Style:  glamourStyle(a.cfg.UI.Theme),
				Locate: a.client.PreviewURL,
			}
			store.Subscribe(printer.Print)

			dispatcher := services.NewQueryDispatcher(store, selector)
			dispatcher.OnBusyChange(func(busy bool) {
				if busy {
					logger.Screen("Bot is typing...", color.RGB(150, 150, 150))
				}
			})

			outcome := dispatcher.Run(cmd.Context(), a.client, question)
			if outcome != services.OutcomeDispatched || !copyCode {
				return nil
			}

			answer, _ := store.Last()
			if err := services.CopyToClipboard(services.ClipboardText(answer.Text, true)); err != nil {
				return err
			}
			logger.Screen("Copied to clipboard.", color.New(color.FgGreen))
			return nil
		},
	}

	cmd.Flags().StringVarP(&database, "database", "d", "", "database to query (default: first discovered)")
	cmd.Flags().BoolVar(&copyCode, "copy", false, "copy code blocks of the answer to the clipboard")
	return cmd
}

func glamourStyle(theme string) string {
	if tui.DarkTheme(theme) {
		return "dark"
	}
	return "light"
}
