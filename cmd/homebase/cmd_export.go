package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"homebase/internal/calendar"
	"homebase/internal/export"
	"homebase/internal/model"
)

func newExportCmd(a *app) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write appliances, maintenance tasks and contacts to an .xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			var d export.Data
			var err error
			if d.Appliances, err = a.orch.Appliances().List(ctx, model.ListFilter{}); err != nil {
				return err
			}
			if d.Maintenance, err = a.orch.Maintenance().List(ctx, model.ListFilter{}); err != nil {
				return err
			}
			if d.Contacts, err = a.orch.Contacts().List(ctx, model.ListFilter{}); err != nil {
				return err
			}

			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", path, err)
			}
			if err := export.WriteXLSX(f, d, calendar.Today()); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close %s: %w", path, err)
			}
			a.out.Success(fmt.Sprintf("Exported %d appliances, %d tasks and %d contacts to %s",
				len(d.Appliances), len(d.Maintenance), len(d.Contacts), path))
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "out", "o", "homebase.xlsx", "output file")
	return cmd
}
