package main

import (
	"github.com/spf13/cobra"

	"homebase/internal/calendar"
	"homebase/internal/model"
)

const frequencyHelp = "one-time, monthly, quarterly, bi-yearly or yearly"

func newMaintenanceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "maintenance",
		Aliases: []string{"m"},
		Short:   "Schedule and track maintenance tasks",
	}

	var filter model.ListFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List maintenance tasks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := a.orch.Maintenance().List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			a.out.Tasks(tasks)
			return nil
		},
	}
	list.Flags().StringVar(&filter.ApplianceID, "appliance", "", "only tasks of this appliance")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one maintenance task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.orch.Maintenance().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.out.Tasks([]model.MaintenanceTask{t})
			return nil
		},
	}

	var in model.MaintenanceInput
	var date, frequency string
	add := &cobra.Command{
		Use:   "add",
		Short: "Schedule a maintenance task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := parseDateFlag("date", date)
			if err != nil {
				return err
			}
			in.Date = d
			in.Frequency = calendar.Frequency(frequency)
			created, err := a.orch.Maintenance().Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			a.out.Success("Maintenance task created: " + created.ID + ", reminder on " + created.ReminderDate.String())
			return nil
		},
	}
	add.Flags().StringVar(&in.ApplianceID, "appliance", "", "appliance id")
	add.Flags().StringVar(&in.TaskName, "task", "", "what needs doing")
	add.Flags().StringVar(&date, "date", "", "scheduled date (YYYY-MM-DD)")
	add.Flags().StringVar(&frequency, "frequency", string(calendar.OneTime), frequencyHelp)
	add.Flags().StringVar(&in.ServiceProviderName, "provider", "", "service provider name")
	add.Flags().StringVar(&in.ServiceProviderContact, "provider-contact", "", "service provider phone or email")

	var up model.MaintenanceInput
	var upDate, upFrequency string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a task; only the given flags are updated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := optDate(cmd, "date", upDate)
			if err != nil {
				return err
			}
			p := model.MaintenancePatch{
				ApplianceID:            optString(cmd, "appliance", up.ApplianceID),
				TaskName:               optString(cmd, "task", up.TaskName),
				Date:                   d,
				ServiceProviderName:    optString(cmd, "provider", up.ServiceProviderName),
				ServiceProviderContact: optString(cmd, "provider-contact", up.ServiceProviderContact),
				Completed:              optBool(cmd, "completed", up.Completed),
			}
			if cmd.Flags().Changed("frequency") {
				f := calendar.Frequency(upFrequency)
				p.Frequency = &f
			}
			updated, err := a.orch.Maintenance().Update(cmd.Context(), args[0], p)
			if err != nil {
				return err
			}
			a.out.Success("Maintenance task updated: reminder on " + updated.ReminderDate.String())
			return nil
		},
	}
	update.Flags().StringVar(&up.ApplianceID, "appliance", "", "appliance id")
	update.Flags().StringVar(&up.TaskName, "task", "", "what needs doing")
	update.Flags().StringVar(&upDate, "date", "", "scheduled date (YYYY-MM-DD)")
	update.Flags().StringVar(&upFrequency, "frequency", "", frequencyHelp)
	update.Flags().StringVar(&up.ServiceProviderName, "provider", "", "service provider name")
	update.Flags().StringVar(&up.ServiceProviderContact, "provider-contact", "", "service provider phone or email")
	update.Flags().BoolVar(&up.Completed, "completed", false, "mark the task completed or open")

	var undo bool
	done := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.orch.Maintenance().SetCompleted(cmd.Context(), args[0], !undo); err != nil {
				return err
			}
			if undo {
				a.out.Success("Task reopened")
			} else {
				a.out.Success("Task completed")
			}
			return nil
		},
	}
	done.Flags().BoolVar(&undo, "undo", false, "reopen the task instead")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a maintenance task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.orch.Maintenance().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.out.Success("Maintenance task deleted")
			return nil
		},
	}

	var days int
	upcoming := &cobra.Command{
		Use:   "upcoming",
		Short: "List open tasks whose reminder falls in the next days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tasks, err := a.orch.Maintenance().Upcoming(cmd.Context(), days)
			if err != nil {
				return err
			}
			a.out.Upcoming(tasks)
			return nil
		},
	}
	upcoming.Flags().IntVar(&days, "days", model.DefaultUpcomingDays, "look-ahead in days")

	cmd.AddCommand(list, get, add, update, done, del, upcoming)
	return cmd
}
