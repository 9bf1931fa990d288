package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/jshufro/storagepos/config"
	"github.com/jshufro/storagepos/layout"
	"github.com/jshufro/storagepos/log"
	"github.com/jshufro/storagepos/project"
)

// Shared by every command.
type app struct {
	fs       afero.Fs
	v        *viper.Viper
	logLevel string
	contract string

	cfg      config.Config
	logger   *zap.Logger
	resolver *project.Resolver
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	a := &app{fs: fs, v: config.NewViper()}
	var (
		structName string
		locate     bool
	)

	cmd := &cobra.Command{
		Use:   "storagepos",
		Short: "print the storage positions of a struct in a solidity contract",
		Long: `Prints the slot and byte range of every member of a struct, read from the
storage layout forge writes to its output directory.

Before using, make sure foundry.toml has extra_output = ["storageLayout"].

If the contract is in a file with the same name, the contract name is enough.
Otherwise use forge's path:Name format, e.g. ./src/ContractFile.sol:Contract`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printStruct(cmd, structName, locate)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.contract, "contract", "c", "WildcatMarket", "contract name, path:Name or path to a .sol file")
	pf.String(config.KeyRoot, "", "project root (default: nearest directory holding foundry.toml)")
	pf.String(config.KeySrc, "", "source directory, relative to the project root")
	pf.String(config.KeyOut, "", "forge output directory, relative to the project root")
	pf.StringVar(&a.logLevel, "log-level", log.DefaultLevel, "logging level")
	if err := bindFlags(a.v, pf, config.KeyRoot, config.KeySrc, config.KeyOut); err != nil {
		panic(err)
	}

	cmd.Flags().StringVarP(&structName, "struct", "s", "MarketState", "struct name to report on")
	cmd.Flags().BoolVar(&locate, "locate", false, "also print the state variables holding the struct")

	cmd.AddCommand(newStructsCmd(a), newSelectorsCmd(a))
	return cmd
}

// bindFlags lets set flags take precedence over STORAGEPOS_* variables.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys ...string) error {
	for _, key := range keys {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			return fmt.Errorf("bind flag %s: %w", key, err)
		}
	}
	return nil
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	logger, err := log.NewWithWriter(cmd.ErrOrStderr(), a.logLevel)
	if err != nil {
		return err
	}
	a.logger = logger

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	fallback, err := config.ExecutableRoot()
	if err != nil {
		logger.Debug("no executable root", zap.Error(err))
	}
	a.cfg, err = config.Load(a.fs, a.v, wd, fallback)
	if err != nil {
		return err
	}
	logger.Debug("loaded config",
		zap.String("root", a.cfg.ProjectRoot),
		zap.String("src", a.cfg.SrcDir),
		zap.String("out", a.cfg.OutDir),
		zap.String("profile", a.cfg.Profile),
	)
	a.resolver = project.NewResolver(a.fs, a.cfg, project.WithLogger(logger.Named("project")))
	return nil
}

// locateArtifact resolves --contract and finds its forge output.
func (a *app) locateArtifact(ctx context.Context) (project.ResolvedContract, string, error) {
	resolved, err := a.resolver.Resolve(ctx, a.contract)
	if err != nil {
		return project.ResolvedContract{}, "", err
	}
	artifact, err := a.resolver.Locate(resolved)
	if err != nil {
		return project.ResolvedContract{}, "", err
	}
	return resolved, artifact, nil
}

func (a *app) printStruct(cmd *cobra.Command, structName string, locate bool) error {
	resolved, artifact, err := a.locateArtifact(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Found forge output: %s\n", artifact)

	s, err := layout.Extract(a.fs, artifact, structName)
	if errors.Is(err, layout.ErrLayoutMissing) && !a.cfg.EmitsStorageLayout() {
		a.logger.Warn("foundry.toml extra_output does not include storageLayout",
			zap.String("profile", a.cfg.Profile),
			zap.Strings("extra_output", a.cfg.ExtraOutput),
		)
	}
	if err != nil {
		return err
	}

	report := layout.NewReport(resolved.ContractName, s)
	for _, m := range report.Skipped {
		a.logger.Warn("member omitted, byte length unknown",
			zap.String("struct", s.Name),
			zap.String("label", m.Label),
			zap.String("type", m.Type),
			zap.String("slot", string(m.Slot)),
		)
	}
	return report.Print(out, locate)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := newRootCmd(afero.NewOsFs()).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
