package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"taskflow/internal/backup"
)

func newExportCommand(opts *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup snapshot of every task, category and setting",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			snap := rt.svc.Export()

			if out == "" || out == "-" {
				return backup.Encode(cmd.OutOrStdout(), snap)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			if err := backup.Encode(f, snap); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks and %d categories to %s\n",
				len(snap.Tasks), len(snap.Categories), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newImportCommand(opts *rootOptions) *cobra.Command {
	var in string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the whole store with a backup snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if in != "-" {
				f, err := os.Open(in)
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", in, err)
				}
				defer f.Close()
				r = f
			}

			snap, err := backup.Decode(r)
			if err != nil {
				return err
			}

			rt, err := openRuntime(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.svc.Import(cmd.Context(), snap); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks and %d categories (snapshot %s)\n",
				len(snap.Tasks), len(snap.Categories), snap.Version)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in, "in", "i", "", "snapshot file to import, or - for stdin")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}
