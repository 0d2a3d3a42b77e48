package main

import (
	"github.com/spf13/cobra"

	"homebase/internal/calendar"
	"homebase/internal/model"
)

func newAppliancesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "appliances",
		Aliases: []string{"appliance", "a"},
		Short:   "Manage appliances and their warranties",
	}

	var filter model.ListFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List appliances, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appliances, err := a.orch.Appliances().List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			a.out.Appliances(appliances, calendar.Today())
			return nil
		},
	}
	list.Flags().StringVar(&filter.Search, "search", "", "match name, brand, model or serial number")
	list.Flags().StringVar(&filter.Status, "status", "", "warranty status: active, expiring-soon or expired")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show an appliance with its maintenance tasks and contacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := a.orch.Appliances().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.out.ApplianceDetail(detail, calendar.Today())
			return nil
		},
	}

	var in model.ApplianceInput
	var purchased string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add an appliance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := parseDateFlag("purchaseDate", purchased)
			if err != nil {
				return err
			}
			in.PurchaseDate = d
			created, err := a.orch.Appliances().Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			a.out.Success("Appliance created: " + created.ID)
			return nil
		},
	}
	add.Flags().StringVar(&in.Name, "name", "", "appliance name")
	add.Flags().StringVar(&in.Brand, "brand", "", "manufacturer")
	add.Flags().StringVar(&in.Model, "model", "", "model")
	add.Flags().StringVar(&in.SerialNumber, "serial", "", "serial number")
	add.Flags().StringVar(&purchased, "purchase-date", "", "purchase date (YYYY-MM-DD)")
	add.Flags().IntVar(&in.WarrantyPeriodMonths, "warranty-months", 0, "warranty length in months")
	add.Flags().StringVar(&in.PurchaseLocation, "location", "", "where it was bought")
	add.Flags().StringVar(&in.ManualLink, "manual", "", "link to the manual")
	add.Flags().StringVar(&in.ReceiptLink, "receipt", "", "link to the receipt")

	var up model.ApplianceInput
	var upPurchased string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change an appliance; only the given flags are updated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := optDate(cmd, "purchase-date", upPurchased)
			if err != nil {
				return err
			}
			p := model.AppliancePatch{
				Name:                 optString(cmd, "name", up.Name),
				Brand:                optString(cmd, "brand", up.Brand),
				Model:                optString(cmd, "model", up.Model),
				SerialNumber:         optString(cmd, "serial", up.SerialNumber),
				PurchaseDate:         date,
				WarrantyPeriodMonths: optInt(cmd, "warranty-months", up.WarrantyPeriodMonths),
				PurchaseLocation:     optString(cmd, "location", up.PurchaseLocation),
				ManualLink:           optString(cmd, "manual", up.ManualLink),
				ReceiptLink:          optString(cmd, "receipt", up.ReceiptLink),
			}
			updated, err := a.orch.Appliances().Update(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}
			a.out.Success("Appliance updated: " + updated.ID + ", warranty until " + updated.WarrantyExpiry.String())
			return nil
		},
	}
	update.Flags().StringVar(&up.Name, "name", "", "appliance name")
	update.Flags().StringVar(&up.Brand, "brand", "", "manufacturer")
	update.Flags().StringVar(&up.Model, "model", "", "model")
	update.Flags().StringVar(&up.SerialNumber, "serial", "", "serial number")
	update.Flags().StringVar(&upPurchased, "purchase-date", "", "purchase date (YYYY-MM-DD)")
	update.Flags().IntVar(&up.WarrantyPeriodMonths, "warranty-months", 0, "warranty length in months")
	update.Flags().StringVar(&up.PurchaseLocation, "location", "", "where it was bought")
	update.Flags().StringVar(&up.ManualLink, "manual", "", "link to the manual")
	update.Flags().StringVar(&up.ReceiptLink, "receipt", "", "link to the receipt")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an appliance with its maintenance tasks and contacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.orch.Appliances().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.out.Success("Appliance deleted")
			return nil
		},
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Count appliances by warranty status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.orch.Appliances().Stats(cmd.Context())
			if err != nil {
				return err
			}
			a.out.Stats(s)
			return nil
		},
	}

	cmd.AddCommand(list, get, add, update, del, stats)
	return cmd
}
