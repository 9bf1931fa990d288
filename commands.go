package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jshufro/storagepos/sigs"
	"github.com/jshufro/storagepos/solsrc"
)

func newStructsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "structs",
		Short: "list every struct defined in the project's sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := solsrc.Scan(cmd.Context(), a.fs, a.cfg.SrcDir)
			if err != nil {
				return err
			}
			a.logger.Debug("scanned sources", zap.String("dir", a.cfg.SrcDir), zap.Int("files", len(files)))
			return solsrc.Print(cmd.OutOrStdout(), files)
		},
	}
}

func newSelectorsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "selectors",
		Short: "print function selectors, event topics and error selectors of --contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, artifact, err := a.locateArtifact(cmd.Context())
			if err != nil {
				return err
			}
			signatures, err := sigs.FromArtifact(a.fs, artifact)
			if err != nil {
				return err
			}
			return sigs.Print(cmd.OutOrStdout(), artifact, signatures)
		},
	}
}
