package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tartampluch/go-garden/internal/config"
	"github.com/tartampluch/go-garden/internal/credentials"
	"github.com/tartampluch/go-garden/internal/engine"
	"github.com/tartampluch/go-garden/internal/health"
	"github.com/tartampluch/go-garden/internal/i18n"
	"github.com/tartampluch/go-garden/internal/report"
	"github.com/tartampluch/go-garden/internal/server"
	"github.com/tartampluch/go-garden/internal/worker"
	"golang.org/x/sync/errgroup"
)

// cli holds the state shared by every command.
type cli struct {
	configPath string
	debug      bool
	logCloser  io.Closer
}

func (c *cli) close() {
	if c.logCloser != nil {
		_ = c.logCloser.Close()
	}
}

// loadSettings reads the settings file from --config or the default location.
func (c *cli) loadSettings() (config.Settings, error) {
	path := c.configPath
	if path == "" {
		p, err := config.DefaultSettingsPath()
		if err != nil {
			return config.Settings{}, err
		}
		path = p
	}
	return config.LoadSettings(path)
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           config.CommandName,
		Short:         config.CmdDescRoot,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// The report goes to stdout, so only the server logs there.
			console := cmd.ErrOrStderr()
			if cmd.Name() == config.CmdServe {
				console = cmd.OutOrStdout()
			}
			c.logCloser = setupLogging(console, c.debug)
			logStartupInfo()
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, config.FlagConfig, "", config.FlagDescConfig)
	root.PersistentFlags().BoolVar(&c.debug, config.FlagDebug, false, config.FlagDescDebug)

	root.AddCommand(newServeCmd(c))
	root.AddCommand(newReportCmd(c))
	root.AddCommand(newCredentialsCmd(c))
	root.AddCommand(newVersionCmd())
	return root
}

func newServeCmd(c *cli) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   config.CmdServe,
		Short: config.CmdDescServe,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := c.loadSettings()
			if err != nil {
				return err
			}
			if port != "" {
				if err := config.ValidatePort(port); err != nil {
					return err
				}
				settings.Server.Port = port
			}
			return serve(cmd.Context(), c, settings)
		},
	}
	cmd.Flags().StringVar(&port, config.FlagPort, "", config.FlagDescPort)
	return cmd
}

// serve runs the HTTP server and the refresher until ctx is cancelled.
// SIGHUP reloads the settings file and forces a refresh.
func serve(ctx context.Context, c *cli, settings config.Settings) error {
	var current atomic.Pointer[config.Settings]
	current.Store(&settings)

	srv := server.NewFeedServer(settings.Server.Port)
	syncer := &gardenSyncer{settings: &current, fetcher: engine.NewHTTPFetcher()}
	refresher := worker.NewRefresher(syncer, srv,
		func() engine.SyncConfig { return syncConfig(*current.Load()) },
		refreshInterval(settings))

	hangup := make(chan os.Signal, config.ChannelBufferSize)
	signal.Notify(hangup, syscall.SIGHUP)
	defer signal.Stop(hangup)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Start(gctx) })
	g.Go(func() error { return refresher.Run(gctx) })
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
				return nil
			case <-hangup:
				slog.Info(config.MsgManualRefresh, config.LogKeyComponent, config.CompMain)
				reloaded, err := c.loadSettings()
				if err != nil {
					slog.Error(config.ErrSettingsInvalid,
						config.LogKeyComponent, config.CompMain,
						config.LogKeyError, err)
				} else {
					// The listening port only changes on restart.
					reloaded.Server.Port = settings.Server.Port
					current.Store(&reloaded)
					refresher.SetInterval(refreshInterval(reloaded))
				}
				refresher.Trigger()
			}
		}
	})
	return g.Wait()
}

func newReportCmd(c *cli) *cobra.Command {
	var opts report.Options
	var lang string

	cmd := &cobra.Command{
		Use:   config.CmdReport,
		Short: config.CmdDescReport,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := c.loadSettings()
			if err != nil {
				return err
			}
			if lang != "" {
				settings.Language = lang
			}

			tr := i18n.New(settings.Language)
			gen := newGenerator(settings, tr, engine.NewHTTPFetcher())
			_, rep, err := gen.RunSync(cmd.Context(), syncConfig(settings))
			if err != nil {
				return err
			}
			return report.Render(cmd.OutOrStdout(), rep, tr, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.JSON, config.FlagJSON, false, config.FlagDescJSON)
	cmd.Flags().BoolVar(&opts.NoColor, config.FlagNoColor, false, config.FlagDescNoColor)
	cmd.Flags().StringVar(&lang, config.FlagLanguage, "", config.FlagDescLanguage)
	return cmd
}

func newCredentialsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   config.CmdCredentials,
		Short: config.CmdDescCredentials,
	}

	var user, password string
	set := &cobra.Command{
		Use:   config.CmdSet,
		Short: config.CmdDescSet,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				settings, err := c.loadSettings()
				if err != nil {
					return err
				}
				user = settings.Source.User
			}
			if user == "" {
				return errors.New(config.ErrUserRequired)
			}

			if password == "" {
				_, _ = fmt.Fprint(cmd.ErrOrStderr(), config.MsgPasswordPrompt)
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("%s: %w", config.ErrCredentialRead, err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			if err := credentials.Save(user, password); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), config.MsgCredentialSaved)
			return nil
		},
	}
	set.Flags().StringVar(&user, config.FlagUser, "", config.FlagDescUser)
	set.Flags().StringVar(&password, config.FlagPassword, "", config.FlagDescPassword)

	cmd.AddCommand(set)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   config.CmdVersion,
		Short: config.CmdDescVersion,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout())
		},
	}
}

// gardenSyncer builds a generator from the latest settings on every sync.
type gardenSyncer struct {
	settings *atomic.Pointer[config.Settings]
	fetcher  engine.ContactFetcher
}

func (s *gardenSyncer) RunSync(ctx context.Context, cfg engine.SyncConfig) ([]byte, engine.Report, error) {
	settings := *s.settings.Load()
	return newGenerator(settings, i18n.New(settings.Language), s.fetcher).RunSync(ctx, cfg)
}

func newGenerator(settings config.Settings, tr *i18n.Translator, fetcher engine.ContactFetcher) *engine.Generator {
	return &engine.Generator{
		Clock:         health.RealClock{},
		Fetcher:       fetcher,
		Policy:        health.PolicyFromSettings(settings.Policy),
		FormatLabel:   tr.Localize,
		FormatSummary: tr.EventSummary,
	}
}

// syncConfig maps settings onto a sync request. Web passwords come from the keyring.
func syncConfig(s config.Settings) engine.SyncConfig {
	cfg := engine.SyncConfig{
		Mode:            s.Source.Mode,
		Format:          s.Source.Format,
		LocalPath:       s.Source.Path,
		WebURL:          s.Source.URL,
		WebUser:         s.Source.User,
		ReminderTrigger: s.Reminder.Trigger(),
	}
	if cfg.Mode == config.SourceModeWeb {
		cfg.WebPass = credentials.Lookup(cfg.WebUser)
	}
	return cfg
}

func refreshInterval(s config.Settings) time.Duration {
	return time.Duration(s.RefreshMinutes) * time.Minute
}
