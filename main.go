package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/krehermann/intcode/api"
	"github.com/krehermann/intcode/config"
	"github.com/krehermann/intcode/console"
	"github.com/krehermann/intcode/core"
	"github.com/krehermann/intcode/vm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errNeedsInput = errors.New("program is waiting for more input")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		cfg        *config.Config
		logger     *zap.Logger
	)

	rootCmd := &cobra.Command{
		Use:           "intcode",
		Short:         "Intcode interpreter",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg = config.Default()
			if configPath != "" {
				cfg, err = config.Load(configPath)
				if err != nil {
					return err
				}
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			logger, err = newLogger(cfg.Log)
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(logger)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	var (
		programPath string
		input       string
		lines       []string
		ascii       bool
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a program to completion with fixed input",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := core.LoadProgramFile(programPath)
			if err != nil {
				return err
			}
			values, err := console.ParseValues(input)
			if err != nil {
				return fmt.Errorf("bad --input: %w", err)
			}
			values = append(values, vm.ASCIIInput(lines...)...)
			return runProgram(cmd, p, values, ascii || cfg.Console.ASCII)
		},
	}
	runCmd.Flags().StringVarP(&programPath, "program", "p", "", "program file")
	runCmd.Flags().StringVarP(&input, "input", "i", "", "comma separated input values")
	runCmd.Flags().StringArrayVar(&lines, "line", nil, "text input line, repeatable")
	runCmd.Flags().BoolVar(&ascii, "ascii", false, "render output as text")
	_ = runCmd.MarkFlagRequired("program")

	consoleCmd := &cobra.Command{
		Use:   "console",
		Short: "Run a program interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := core.LoadProgramFile(programPath)
			if err != nil {
				return err
			}
			rl, err := console.NewReadline(cfg.Console)
			if err != nil {
				return err
			}
			defer rl.Close()

			interp := vm.NewInterpreter(p, vm.WithLogger(logger))
			c := console.New(interp, rl, cmd.OutOrStdout(),
				console.WithASCII(ascii || cfg.Console.ASCII),
				console.WithLogger(logger))
			return c.Run()
		},
	}
	consoleCmd.Flags().StringVarP(&programPath, "program", "p", "", "program file")
	consoleCmd.Flags().BoolVar(&ascii, "ascii", false, "text mode")
	_ = consoleCmd.MarkFlagRequired("program")

	var listenAddr string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the machine registry over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if listenAddr != "" {
				cfg.API.ListenAddr = listenAddr
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "listen address, overrides the config")

	rootCmd.AddCommand(runCmd, consoleCmd, serveCmd)
	return rootCmd
}

func newLogger(cfg config.Log) (*zap.Logger, error) {
	if cfg.Development {
		return zap.NewDevelopment()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("bad log level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = level
	return zcfg.Build()
}

func runProgram(cmd *cobra.Command, p core.Program, input []int64, ascii bool) error {
	interp := vm.NewInterpreter(p)
	interp.RunWithInput(input...)

	switch interp.State() {
	case vm.StateFailed:
		return interp.Err()
	case vm.StateWaitingForInput:
		out, err := interp.DrainOutput()
		if err != nil {
			return err
		}
		if err := console.WriteOutput(cmd.OutOrStdout(), out, ascii); err != nil {
			return errors.Join(errNeedsInput, err)
		}
		return errNeedsInput
	}

	out, err := interp.IntoOutput()
	if err != nil {
		return err
	}
	return console.WriteOutput(cmd.OutOrStdout(), out, ascii)
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := core.NewRegistry(
		core.WithLogger(logger),
		core.WithAddressLimit(cfg.API.MaxAddress))
	defer reg.Close()

	s, err := api.NewServer(api.ServerConfig{
		ListenerAddr: cfg.API.ListenAddr,
		Logger:       logger,
	}, reg)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}
