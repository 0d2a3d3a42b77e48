package main

import (
	"github.com/spf13/cobra"

	"homebase/internal/model"
)

func newContactsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "contacts",
		Aliases: []string{"contact", "c"},
		Short:   "Manage service contacts",
	}

	var filter model.ListFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List contacts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			contacts, err := a.orch.Contacts().List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			a.out.Contacts(contacts)
			return nil
		},
	}
	list.Flags().StringVar(&filter.ApplianceID, "appliance", "", "only contacts of this appliance")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.orch.Contacts().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.out.Contacts([]model.Contact{c})
			if c.Notes != "" {
				a.out.Muted(c.Notes)
			}
			return nil
		},
	}

	var in model.ContactInput
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a contact; a phone number or an email is required",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			created, err := a.orch.Contacts().Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			a.out.Success("Contact created: " + created.ID)
			return nil
		},
	}
	bindContactFlags(add, &in)

	var up model.ContactInput
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a contact; only the given flags are updated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := model.ContactPatch{
				ApplianceID: optString(cmd, "appliance", up.ApplianceID),
				ContactName: optString(cmd, "name", up.ContactName),
				Phone:       optString(cmd, "phone", up.Phone),
				Email:       optString(cmd, "email", up.Email),
				Notes:       optString(cmd, "notes", up.Notes),
			}
			if _, err := a.orch.Contacts().Update(cmd.Context(), args[0], p); err != nil {
				return err
			}
			a.out.Success("Contact updated")
			return nil
		},
	}
	bindContactFlags(update, &up)

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.orch.Contacts().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.out.Success("Contact deleted")
			return nil
		},
	}

	cmd.AddCommand(list, get, add, update, del)
	return cmd
}

func bindContactFlags(cmd *cobra.Command, in *model.ContactInput) {
	cmd.Flags().StringVar(&in.ApplianceID, "appliance", "", "appliance id")
	cmd.Flags().StringVar(&in.ContactName, "name", "", "person or company")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "free-form notes")
}
