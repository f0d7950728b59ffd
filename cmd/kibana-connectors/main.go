package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Mykobyhub/kibana-connectors/pkg/connector/registry"

	// Register the bundled connectors
	_ "github.com/Mykobyhub/kibana-connectors/pkg/connector/destinations"
	_ "github.com/Mykobyhub/kibana-connectors/pkg/connector/sources"
)

const cmdName = "kibana-connectors"

var version = "0.1.0"

func main() {
	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(viper.New()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(vip *viper.Viper) *cobra.Command {
	app := &app{viper: vip}

	root := &cobra.Command{
		Use:   cmdName,
		Short: "Sync CRM records into search-ready documents",
		Long: `kibana-connectors reads records from a CRM platform, normalizes them into
flat documents and writes them as JSON. Settings come from a YAML file; any
connector setting can be overridden with a KC_<SETTING> environment variable.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return app.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.shutdown()
		},
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "salesforce.yaml", "Path to the connector YAML configuration")
	flags.String("log-level", "", "Log level (debug, info, warn, error); overrides the config file")
	flags.String("log-encoding", "", "Log encoding (json, console); overrides the config file")
	_ = root.MarkPersistentFlagFilename("config", "yaml", "yml")
	if err := vip.BindPFlags(flags); err != nil {
		panic(err)
	}

	root.AddCommand(
		newVersionCmd(),
		newListCmd(),
		newValidateCmd(app),
		newPingCmd(app),
		newSyncCmd(app),
		newServeCmd(app),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s v%s\n", cmdName, version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available connectors",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printConnectors(cmd.OutOrStdout(), registry.List())
		},
	}
}

func printConnectors(out io.Writer, infos []registry.ConnectorInfo) error {
	for _, info := range infos {
		if _, err := fmt.Fprintf(out, "%-12s %-6s %s\n", info.Kind, info.Name, info.Description); err != nil {
			return err
		}
		for _, key := range info.Settings {
			fmt.Fprintf(out, "    %s\n", key)
		}
	}
	return nil
}

func newValidateCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration without contacting the platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.validate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
			return nil
		},
	}
}

func newPingCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the platform is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func newSyncCmd(app *app) *cobra.Command {
	opts := &syncOptions{}
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync pass and write the documents as JSON",
		Example: `  kibana-connectors sync -c salesforce.yaml -o docs.jsonl
  KC_CLIENT_SECRET=... kibana-connectors sync --omit _attachment`,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := app.sync(cmd.Context(), opts, opts.output)
			if err != nil {
				return err
			}
			if opts.output != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "%d documents written in %s\n", stats.Written, stats.Duration.Round(time.Millisecond))
			}
			return nil
		},
	}
	opts.install(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "-", "Output file, - for stdout")
	return cmd
}

func newServeCmd(app *app) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run sync passes on an interval and expose metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.serve(cmd.Context(), opts)
		},
	}
	opts.install(cmd)
	cmd.Flags().DurationVar(&opts.interval, "interval", time.Hour, "Time between the start of two sync passes")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "output", "Directory receiving one file per pass")
	cmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "Stop serving when a pass fails")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-address", "", "Metrics listen address; overrides the config file")
	cmd.Flags().DurationVar(&opts.healthInterval, "health-interval", time.Minute, "Time between two reachability checks, 0 disables them")
	return cmd
}
