package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the client is using the server or the offline store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.orch.InFallbackMode() {
				a.out.Title("Offline")
				a.out.Muted("Recent calls failed; changes are saved on this device until the server answers again.")
				return nil
			}
			stats, err := a.orch.Appliances().Stats(cmd.Context())
			if err != nil {
				return err
			}
			if a.orch.InFallbackMode() {
				a.out.Title("Offline")
			} else {
				a.out.Title("Online")
			}
			a.out.Muted(fmt.Sprintf("%d appliances tracked", stats.Total))
			return nil
		},
	}
}

func newBannerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "banner",
		Short: "Control the offline-mode notice",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "dismiss",
		Short: "Hide the offline-mode notice until the next failure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.orch.DismissBanner()
			a.out.Success("Notice dismissed")
			return nil
		},
	})
	return cmd
}
