package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"forgery/internal/config"
	"forgery/internal/diagnostic"
	"forgery/internal/pipeline"
)

// Environment variables supplying flag defaults, also read from .env.
const (
	envConfig  = "FORGERY_CONFIG"
	envVerbose = "FORGERY_VERBOSE"
)

type options struct {
	config       string
	verbose      bool
	dumpMappings string
}

func newRootCmd() *cobra.Command {
	_ = godotenv.Load()

	opts := &options{config: os.Getenv(envConfig)}
	opts.verbose, _ = strconv.ParseBool(os.Getenv(envVerbose))

	cmd := &cobra.Command{
		Use:   "forgery <input> <output> <intermediary.tiny> <joined.tsrg> <runtime.jar> <minecraft.jar> <package>",
		Short: "Convert a Fabric mod into a Forge mod",
		Long: `forgery remaps a Fabric mod from intermediary to srg names and rewrites it
for Forge. It is not a silver bullet: the mod must already be written to work
on both loaders, forgery only remaps it and adds the runtime helpers.

Arguments, in order:
  input              Fabric mod jar
  output             Forge mod jar to write
  intermediary.tiny  Intermediary tiny mappings (official -> intermediary)
  joined.tsrg        MCP tsrg mappings (official -> srg)
  runtime.jar        forgery runtime jar
  minecraft.jar      Intermediary-remapped Minecraft jar
  package            package of the runtime helpers`,
		Args:          cobra.ExactArgs(7),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", opts.config, "run configuration YAML (or set "+envConfig+")")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", opts.verbose, "enable debug logging (or set "+envVerbose+")")
	cmd.Flags().StringVar(&opts.dumpMappings, "dump-mappings", "", "write the composite mappings as TSRG to this file")

	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger, nil
}

func inputs(args []string) pipeline.Inputs {
	return pipeline.Inputs{
		Module:       args[0],
		Output:       args[1],
		Intermediary: args[2],
		Target:       args[3],
		Runtime:      args[4],
		Classpath:    []string{args[5]},
		Package:      args[6],
	}
}

func run(ctx context.Context, opts *options, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}

	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadFile(opts.config)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(cfg, diagnostic.NewSink(logger))

	if opts.dumpMappings != "" {
		f, err := os.Create(opts.dumpMappings)
		if err != nil {
			return fmt.Errorf("failed to create mappings dump: %w", err)
		}
		defer f.Close()

		runner.DumpMappings = f
	}

	logger.Info("forgery is not a silver bullet: the mod must already support both loaders")

	res, err := runner.Run(ctx, inputs(args))
	if err != nil {
		return err
	}

	if diags := runner.Sink().Diagnostics(); diags.HasErrors() {
		logger.Warn("some entries were copied unchanged",
			zap.Int("errors", len(diags.Errors)),
			zap.Int("rewritten", res.Rewritten))
	}

	return nil
}
