package main

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/brepio"
	"github.com/gogpu/brepio/internal/config"
	"github.com/spf13/cobra"
)

const defaultConfigPath = "brepmesh.yaml"

// app holds state shared by subcommands of one invocation.
type app struct {
	configPath string
	cfg        *config.Config
	logger     *slog.Logger

	// Flag values, applied over the config file when set.
	kernel       string
	deflection   float64
	structOnly   bool
	batchSize    int
	vertexBuffer bool
	logLevel     string
	logFormat    string
	indent       bool
	jobs         int
	outDir       string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "brepmesh",
		Short:         "Export B-rep scenes as mesh documents",
		Version:       brepio.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", defaultConfigPath, "configuration file; a missing file selects defaults")
	pf.StringVar(&a.kernel, "kernel", "", "geometry kernel name")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: text, json")

	root.AddCommand(
		newInterrogateCmd(a),
		newUpdateCmd(a),
		newKernelsCmd(),
	)
	return root
}

// setup loads the configuration, applies explicitly set flags and builds
// the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("kernel") {
		cfg.Kernel = a.kernel
	}
	if changed("deflection") {
		cfg.Deflection = a.deflection
	}
	if changed("struct-only") {
		cfg.StructOnly = a.structOnly
	}
	if changed("batch-size") {
		cfg.BatchSize = a.batchSize
	}
	if changed("vertex-buffer") {
		cfg.Output.VertexBuffer = a.vertexBuffer
	}
	if changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if changed("indent") {
		cfg.Output.Indent = a.indent
	}
	if changed("jobs") {
		cfg.Jobs = a.jobs
	}
	if changed("out-dir") {
		cfg.Output.Dir = a.outDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	h, err := cfg.Log.Handler(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = slog.New(h)
	return nil
}

// session creates a session over the configured kernel.
func (a *app) session() (*brepio.Session, error) {
	k, err := brepio.NewKernel(a.cfg.Kernel)
	if err != nil {
		return nil, err
	}
	s, err := brepio.NewSession(k, a.cfg.SessionOptions(a.logger)...)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return s, nil
}

func newKernelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kernels",
		Short: "List registered geometry kernels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range brepio.Kernels() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
