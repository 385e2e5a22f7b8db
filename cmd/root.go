package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"filexfer/internal/config"
	"filexfer/internal/logging"
	"filexfer/internal/transfer"
	"filexfer/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	cfgFile string
	host    string
	port    int
	debug   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "filexfer",
		Short: "Send files to and fetch files from a file transfer server",
		Long: `filexfer talks to a small HTTP file server:

  GET  /files             list uploaded files
  POST /upload            upload one file (multipart field "file")
  GET  /files/{filename}  download a file

Without a subcommand it opens the interactive panel.`,
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(cmd.ErrOrStderr(), opts.debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return runTUI(cfg, opts.debug)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.cfgFile, "config", "c", "", "config file (default "+config.Path()+")")
	pf.StringVar(&opts.host, "host", "", "server address (env "+config.EnvHost+")")
	pf.IntVarP(&opts.port, "port", "p", 0, "server port (env "+config.EnvPort+")")
	pf.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newListCmd(opts),
		newSendCmd(opts),
		newGetCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

func (o *rootOptions) configPath() string {
	if o.cfgFile != "" {
		return o.cfgFile
	}
	return config.Path()
}

func (o *rootOptions) loadFile() (*config.Config, error) {
	if o.cfgFile == "" {
		return config.Load()
	}
	return config.LoadFrom(o.cfgFile)
}

func (o *rootOptions) saveFile(cfg *config.Config) error {
	if o.cfgFile == "" {
		return config.Save(cfg)
	}
	return config.SaveTo(o.cfgFile, cfg)
}

// load resolves the effective config: flags over environment over file over
// built-in defaults.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := o.loadFile()
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = o.host
	}
	if flags.Changed("port") {
		cfg.Port = o.port
	}
	return cfg, nil
}

func targetOf(cfg *config.Config) transfer.Target {
	return transfer.Target{Host: cfg.Host, Port: cfg.Port}
}

func newClient(cfg *config.Config) *transfer.Client {
	ua := cfg.UserAgent
	if ua == "" {
		ua = "filexfer/" + version
	}
	return transfer.NewClient(transfer.WithUserAgent(ua))
}

func requestContext(parent context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	if d := cfg.RequestTimeout(); d > 0 {
		return context.WithTimeout(parent, d)
	}
	return context.WithCancel(parent)
}

func runTUI(cfg *config.Config, debug bool) error {
	logFile := logging.Path()
	f, err := tea.LogToFile(logFile, "debug")
	if err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}
	defer func() { _ = f.Close() }()
	logging.Setup(f, debug)
	log.Info().Str("log", logFile).Str("target", targetOf(cfg).String()).Msg("filexfer starting")

	panel := ui.NewPanel(newClient(cfg), transfer.BrowserOpener{}, cfg.Host, cfg.Port, ui.Options{
		RefreshDelay:   cfg.RefreshDelay(),
		RequestTimeout: cfg.RequestTimeout(),
	})
	p := tea.NewProgram(newAppModel(panel), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run panel: %w", err)
	}
	return nil
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List files on the server",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd.Context(), cfg)
			defer cancel()

			files, err := newClient(cfg).ListFiles(ctx, targetOf(cfg))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range files {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}

func newSendCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send <file>",
		Short: "Upload a file to the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (retErr error) {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() {
				if cErr := f.Close(); cErr != nil {
					retErr = errors.Join(retErr, cErr)
				}
			}()
			info, err := f.Stat()
			if err != nil {
				return err
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", args[0])
			}

			name := filepath.Base(args[0])
			var r io.Reader = f
			bar := newProgressBar(cmd.ErrOrStderr(), info.Size(), "sending "+name)
			if bar != nil {
				r = io.TeeReader(f, bar)
			}

			ctx, cancel := requestContext(cmd.Context(), cfg)
			defer cancel()
			stored, err := newClient(cfg).UploadFile(ctx, targetOf(cfg), name, r)
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				return err
			}
			log.Debug().Str("local", args[0]).Str("stored", stored).Msg("sent")
			fmt.Fprintln(cmd.OutOrStdout(), stored)
			return nil
		},
	}
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Download a file from the server",
		Long: `Download a file from the server into the output directory.
Use -o - to write the file to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := requestContext(cmd.Context(), cfg)
			defer cancel()

			client := newClient(cfg)
			name := args[0]
			if outDir == "-" {
				_, err := client.Download(ctx, targetOf(cfg), name, cmd.OutOrStdout())
				return err
			}
			dest, n, err := downloadTo(ctx, client, targetOf(cfg), name, outDir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\n", dest, n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "output directory, or - for stdout")
	return cmd
}

// downloadTo streams name into dir. The bytes go to a temporary file in dir
// that is renamed into place only once the download has completed.
func downloadTo(ctx context.Context, client *transfer.Client, t transfer.Target, name, dir string, progress io.Writer) (dest string, n int64, retErr error) {
	base := filepath.Base(name)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return "", 0, fmt.Errorf("invalid file name %q", name)
	}
	resp, err := client.OpenDownload(ctx, t, name)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	tmp, err := os.CreateTemp(dir, "."+base+".*.part")
	if err != nil {
		return "", 0, err
	}
	defer func() {
		if retErr != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	var w io.Writer = tmp
	bar := newProgressBar(progress, resp.ContentLength, "fetching "+base)
	if bar != nil {
		w = io.MultiWriter(tmp, bar)
		defer func() { _ = bar.Finish() }()
	}
	n, err = io.Copy(w, resp.Body)
	if err != nil {
		return "", n, fmt.Errorf("download %s: %w", name, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return "", n, err
	}
	if err := tmp.Close(); err != nil {
		return "", n, fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	dest = filepath.Join(dir, base)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", n, err
	}
	return dest, n, nil
}

// newProgressBar returns a byte progress bar on w, or nil when w is not a
// terminal.
func newProgressBar(w io.Writer, total int64, description string) *progressbar.ProgressBar {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(f),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(f, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := opts.configPath()
			if _, err := os.Stat(p); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", p)
			}
			cfg := config.Default()
			delay := int(config.DefaultRefreshDelay / time.Millisecond)
			cfg.RefreshDelayMS = &delay
			if err := opts.saveFile(cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				*config.Config
				RefreshDelay   string `json:"refresh_delay"`
				RequestTimeout string `json:"request_timeout"`
				BaseURL        string `json:"base_url"`
			}{
				Config:         cfg,
				RefreshDelay:   cfg.RefreshDelay().String(),
				RequestTimeout: cfg.RequestTimeout().String(),
				BaseURL:        targetOf(cfg).BaseURL(),
			})
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
