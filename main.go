package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"trustify/internal/config"
	"trustify/internal/logger"
	"trustify/internal/server"
	"trustify/internal/widget"

	"github.com/spf13/cobra"
)

// Global filesystems that will be populated by either assets_dev.go or assets_prod.go at startup.
var templatesFS fs.FS
var staticFS fs.FS

var configPath string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "trustify",
		Short:         "Site with the Trustify widgets plugin",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./config.yaml or /etc/trustify/config.yaml)")

	serve := newServeCmd()
	root.RunE = serve.RunE
	root.AddCommand(serve, newOptionsCmd(), newPagesCmd())
	return root
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Log.Format, cfg.Log.Level)
	return cfg, nil
}

func newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}
			return server.Run(cmd.Context(), cfg, templatesFS, staticFS)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (overrides config)")
	return cmd
}

func newOptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Show or change the Trustify widget options",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the stored options",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProvider(cmd.Context(), func(p widget.ConfigurationProvider) error {
				opts, err := p.LoadOptions(cmd.Context())
				if err != nil {
					return err
				}
				printOptions(cmd, opts)
				return nil
			})
		},
	}

	var slugFlag string
	var barFlag bool
	set := &cobra.Command{
		Use:   "set",
		Short: "Change the stored options",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("slug") && !cmd.Flags().Changed("bar") {
				return fmt.Errorf("nothing to change: pass --slug and/or --bar")
			}
			return withProvider(cmd.Context(), func(p widget.ConfigurationProvider) error {
				current, err := p.LoadOptions(cmd.Context())
				if err != nil {
					return err
				}
				raw := current.Values()
				if cmd.Flags().Changed("slug") {
					raw[widget.KeySlug] = slugFlag
				}
				if cmd.Flags().Changed("bar") {
					raw[widget.KeyBarEnabled] = fmt.Sprint(barFlag)
				}
				opts, err := p.SaveOptions(cmd.Context(), raw)
				if err != nil {
					return err
				}
				printOptions(cmd, opts)
				return nil
			})
		},
	}
	set.Flags().StringVar(&slugFlag, "slug", "", "Trustify profile slug")
	set.Flags().BoolVar(&barFlag, "bar", false, "show the trust bar on every page")

	cmd.AddCommand(show, set)
	return cmd
}

func withApp(ctx context.Context, fn func(*server.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

func withProvider(ctx context.Context, fn func(widget.ConfigurationProvider) error) error {
	return withApp(ctx, func(app *server.App) error {
		return fn(widget.NewProvider(app.Settings))
	})
}

func printOptions(cmd *cobra.Command, opts widget.Options) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s\n", widget.KeySlug, opts.ProfileSlug)
	fmt.Fprintf(out, "%s: %t\n", widget.KeyBarEnabled, opts.BarEnabled)
}

func newPagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pages",
		Short: "Manage the public pages",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the published pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(app *server.App) error {
				pages, err := app.Pages.ListPages(cmd.Context())
				if err != nil {
					return err
				}
				for _, p := range pages {
					fmt.Fprintf(cmd.OutOrStdout(), "/page/%s\t%s\n", p.Slug, p.Title)
				}
				return nil
			})
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Import Markdown files with YAML front matter as pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(app *server.App) error {
				pages, err := app.Pages.ImportMarkdown(cmd.Context(), os.DirFS(args[0]))
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d pages.\n", len(pages))
				return err
			})
		},
	}

	cmd.AddCommand(list, importCmd)
	return cmd
}
