package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Mykobyhub/kibana-connectors/internal/pipeline"
	"github.com/Mykobyhub/kibana-connectors/internal/service"
	"github.com/Mykobyhub/kibana-connectors/pkg/config"
	"github.com/Mykobyhub/kibana-connectors/pkg/connector/base"
	"github.com/Mykobyhub/kibana-connectors/pkg/connector/core"
	"github.com/Mykobyhub/kibana-connectors/pkg/connector/registry"
	"github.com/Mykobyhub/kibana-connectors/pkg/errors"
	"github.com/Mykobyhub/kibana-connectors/pkg/logger"
	"github.com/Mykobyhub/kibana-connectors/pkg/observability"
)

const (
	envPrefix       = "KC"
	destinationType = "json"
)

// app holds the state shared by the subcommands once the configuration is
// loaded.
type app struct {
	viper  *viper.Viper
	cfg    *config.BaseConfig
	logger *zap.Logger

	shutdownTracing func(context.Context) error
}

// commands that run without a configuration file
var configless = map[string]bool{"version": true, "list": true, "help": true, "completion": true}

func (a *app) init(cmd *cobra.Command) error {
	if configless[cmd.Name()] {
		return nil
	}

	cfg, err := loadConfig(a.viper)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Observability.LogLevel
	if v := a.viper.GetString("log-level"); v != "" {
		level = v
	}
	encoding := cfg.Observability.LogEncoding
	if v := a.viper.GetString("log-encoding"); v != "" {
		encoding = v
	}
	if err := logger.Init(logger.Config{Level: level, Encoding: encoding}); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "invalid logging settings")
	}
	a.logger = logger.With(zap.String("connector", cfg.Name), zap.String("type", cfg.Type))

	if cfg.Observability.EnableTracing {
		shutdown, err := observability.Init(observability.TracingConfig{
			ServiceName:    cmdName,
			ServiceVersion: version,
			SamplingRate:   cfg.Observability.TracingSampleRate,
		})
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeConfig, "failed to initialize tracing")
		}
		a.shutdownTracing = shutdown
	}
	return nil
}

func (a *app) shutdown() error {
	if a.shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdownTracing(ctx); err != nil {
			return err
		}
	}
	_ = logger.Sync()
	return nil
}

// loadConfig reads the YAML file named by the config flag and applies
// KC_<SETTING> environment overrides to the connector settings.
func loadConfig(vip *viper.Viper) (*config.BaseConfig, error) {
	vip.SetEnvPrefix(envPrefix)
	vip.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vip.AutomaticEnv()

	path := vip.GetString("config")
	cfg, err := config.LoadBase(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to load "+path)
	}
	if cfg.Type == "" {
		return nil, errors.New(errors.ErrorTypeValidation, "configuration has no connector type").WithDetail("field", "type")
	}
	if cfg.Name == "" {
		cfg.Name = cfg.Type
	}

	info, ok := findConnector(registry.List(), cfg.Type, core.ConnectorTypeSource)
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeConfig, "source connector %s not found", cfg.Type)
	}
	for _, key := range info.Settings {
		if v := vip.GetString(key); v != "" {
			cfg.Security.Credentials[key] = v
		}
	}
	return cfg, nil
}

func findConnector(infos []registry.ConnectorInfo, name string, kind core.ConnectorType) (registry.ConnectorInfo, bool) {
	for _, info := range infos {
		if info.Name == name && info.Kind == kind {
			return info, true
		}
	}
	return registry.ConnectorInfo{}, false
}

func (a *app) validate(ctx context.Context) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	src, err := registry.CreateSource(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer src.Close(ctx)
	return src.Validate()
}

func (a *app) ping(ctx context.Context) error {
	src, err := registry.CreateSource(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer src.Close(ctx)
	return src.Ping(ctx)
}

// syncOptions shape the documents of a pass.
type syncOptions struct {
	output    string
	format    string
	pretty    bool
	omit      []string
	rename    map[string]string
	onlyTypes []string
}

func (o *syncOptions) install(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&o.format, "format", "lines", "Output format (lines, array)")
	flags.BoolVar(&o.pretty, "pretty", false, "Indent the JSON output")
	flags.StringSliceVar(&o.omit, "omit", nil, "Fields removed from every document")
	flags.StringToStringVar(&o.rename, "rename", nil, "Field renames, e.g. body=content")
	flags.StringSliceVar(&o.onlyTypes, "only-types", nil, "Document types to keep, e.g. case,content_document")
}

func (o *syncOptions) apply(p *pipeline.SimplePipeline) {
	if len(o.onlyTypes) > 0 {
		p.AddTransform(pipeline.TypeFilterTransform(o.onlyTypes...))
	}
	if len(o.omit) > 0 {
		p.AddTransform(pipeline.OmitFieldsTransform(o.omit...))
	}
	if len(o.rename) > 0 {
		p.AddTransform(pipeline.FieldMapperTransform(o.rename))
	}
}

func (a *app) destinationConfig(opts *syncOptions, output string) *config.BaseConfig {
	cfg := config.NewBaseConfig(a.cfg.Name+"-output", destinationType)
	cfg.Security.Credentials["path"] = output
	cfg.Security.Credentials["format"] = opts.format
	cfg.Security.Credentials["pretty"] = fmt.Sprint(opts.pretty)
	cfg.Advanced = a.cfg.Advanced
	cfg.Observability = a.cfg.Observability
	return cfg
}

// sync runs one pass from the configured source into a JSON file.
func (a *app) sync(ctx context.Context, opts *syncOptions, output string) (*pipeline.Stats, error) {
	src, err := registry.CreateSource(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	defer src.Close(ctx)

	dest, err := registry.CreateDestination(ctx, a.destinationConfig(opts, output))
	if err != nil {
		return nil, err
	}

	p := pipeline.NewSimplePipeline(src, dest, nil, a.logger)
	opts.apply(p)

	stats, err := p.Run(ctx)
	if closeErr := dest.Close(ctx); closeErr != nil && err == nil {
		err = closeErr
	}
	return stats, err
}

type serveOptions struct {
	syncOptions
	interval       time.Duration
	outputDir      string
	failFast       bool
	metricsAddr    string
	healthInterval time.Duration
}

// passOutput names the file of the pass starting at t.
func (o *serveOptions) passOutput(name string, t time.Time) string {
	return filepath.Join(o.outputDir, fmt.Sprintf("%s-%s.jsonl", name, t.UTC().Format("20060102T150405Z")))
}

func (a *app) serve(ctx context.Context, opts *serveOptions) error {
	if opts.interval <= 0 {
		return errors.New(errors.ErrorTypeValidation, "interval must be positive").WithDetail("field", "interval")
	}

	syncer := service.NewSyncService(func(ctx context.Context) error {
		_, err := a.sync(ctx, &opts.syncOptions, opts.passOutput(a.cfg.Name, time.Now()))
		return err
	}, opts.interval, a.logger)
	syncer.FailFast = opts.failFast

	group := service.NewGroup(a.logger, syncer)

	var health service.HealthReporter
	if opts.healthInterval > 0 {
		probe, err := registry.CreateSource(ctx, a.cfg)
		if err != nil {
			return err
		}
		defer probe.Close(context.Background())

		checker := base.NewHealthChecker("health", opts.healthInterval, probe.Ping, a.logger)
		group.Add(checker)
		health = checker
	}

	addr := a.cfg.Observability.MetricsAddress
	if opts.metricsAddr != "" {
		addr = opts.metricsAddr
	}
	if a.cfg.Observability.EnableMetrics || opts.metricsAddr != "" {
		group.Add(service.NewMetricsService(addr, health, a.logger))
	}

	a.logger.Info("serving",
		zap.Duration("interval", opts.interval),
		zap.String("output_dir", opts.outputDir))
	return group.Run(ctx)
}
