package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kolkov/synckit"
	"github.com/kolkov/synckit/internal/config"
)

// app carries the state shared by the subcommands of one invocation.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	cmd := &cobra.Command{
		Use:           "synckit",
		Short:         "Stress and inspect the synckit synchronization primitives",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       synckit.Version,
	}

	cmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	cmd.PersistentFlags().String("log-level", config.Default().Log.Level,
		"Set the log level (debug, info, warn, error)")
	mustBind(a.v, "log.level", cmd.PersistentFlags().Lookup("log-level"))

	cmd.PersistentPreRunE = func(cc *cobra.Command, _ []string) error {
		file, err := cc.Flags().GetString("config")
		if err != nil {
			return fmt.Errorf("invalid argument: %w", err)
		}

		cfg, err := config.Load(a.v, file)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}

		logger, err := newLogger(cc.ErrOrStderr(), cfg.Log)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}

		a.cfg = cfg
		a.logger = logger
		return nil
	}

	cmd.AddCommand(newStressCmd(a))
	cmd.AddCommand(newVersionCmd(a))

	return cmd
}

func newLogger(w io.Writer, cfg config.LogConfig) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "synckit",
		ReportTimestamp: cfg.Timestamps,
	}), nil
}

// mustBind binds a flag to a viper key. Binding fails only for a nil flag,
// which is a programming error.
func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag for %s: %v", key, err))
	}
}
