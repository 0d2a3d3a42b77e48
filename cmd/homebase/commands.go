package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"homebase/config"
	"homebase/internal/apperr"
	"homebase/internal/availability"
	"homebase/internal/calendar"
	"homebase/internal/fallback"
	"homebase/internal/gateway"
	"homebase/internal/localstore"
	"homebase/internal/ux"
)

// app is the state shared by every command of one invocation.
type app struct {
	out *ux.Printer

	configPath string
	apiURL     string
	dataDir    string
	verbose    bool

	local *localstore.Store
	orch  *fallback.Orchestrator
}

// setup loads configuration and wires the orchestrator. It runs before any
// subcommand.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.verbose {
		log.SetOutput(os.Stderr)
	} else {
		log.SetOutput(io.Discard)
	}

	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration from %s: %w", a.configPath, err)
		}
		cfg = loaded
	}
	if a.apiURL != "" {
		cfg.Client.APIURL = a.apiURL
	}
	if a.dataDir != "" {
		cfg.Client.DataDir = a.dataDir
	}

	local, err := localstore.Open(localstore.Config{Path: cfg.Client.DataDir, SyncWrites: true})
	if err != nil {
		return err
	}
	a.local = local

	tracker := availability.New(local, cfg.Client.DecayWindow)
	remote := gateway.New(cfg.Client.APIURL, cfg.Client.Timeout)
	a.orch = fallback.New(remote, local, tracker)
	log.Printf("Using API at %s, local data in %s", remote.BaseURL(), cfg.Client.DataDir)
	return nil
}

func (a *app) close() {
	if a.local != nil {
		if err := a.local.Close(); err != nil {
			log.Printf("Error closing local store: %v", err)
		}
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:               "homebase",
		Short:             "Track appliance warranties, maintenance and service contacts",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", os.Getenv("CONFIG_PATH"), "path to the YAML configuration file")
	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "base URL of the homebase API (overrides configuration)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "directory of the offline store (overrides configuration)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log diagnostics to stderr")

	root.AddCommand(
		newAppliancesCmd(a),
		newMaintenanceCmd(a),
		newContactsCmd(a),
		newStatusCmd(a),
		newBannerCmd(a),
		newExportCmd(a),
	)
	return root
}

// execute runs one CLI invocation, printing the degraded-mode banner and any
// error to out.
func execute(args []string, out io.Writer) error {
	a := &app{out: ux.NewPrinter(out)}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(out)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := root.ExecuteContext(ctx)
	if a.orch != nil && a.orch.Degraded() {
		a.out.Banner()
	}
	if err != nil {
		a.out.Error(describe(err))
	}
	return err
}

// describe turns an error into the message shown to the user.
func describe(err error) string {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		parts := make([]string, len(ve.Fields))
		for i, f := range ve.Fields {
			parts[i] = f.Field + " " + f.Message
		}
		return "Invalid input: " + strings.Join(parts, "; ")
	}
	var tf *fallback.TotalFailureError
	if errors.As(err, &tf) {
		return fmt.Sprintf("Could not %s: the server is unreachable and saving on this device failed (%v)", tf.Op, tf.Local)
	}
	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		return fmt.Sprintf("No %s with id %s", nf.Kind, nf.ID)
	}
	if errors.Is(err, apperr.ErrNotFound) {
		return "Not found"
	}
	return err.Error()
}

// Flag helpers: a patch field is set only when its flag was given.

func optString(cmd *cobra.Command, name, v string) *string {
	if cmd.Flags().Changed(name) {
		return &v
	}
	return nil
}

func optInt(cmd *cobra.Command, name string, v int) *int {
	if cmd.Flags().Changed(name) {
		return &v
	}
	return nil
}

func optBool(cmd *cobra.Command, name string, v bool) *bool {
	if cmd.Flags().Changed(name) {
		return &v
	}
	return nil
}

func optDate(cmd *cobra.Command, name, raw string) (*calendar.Date, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	d, err := parseDateFlag(name, raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// parseDateFlag parses a YYYY-MM-DD flag value. An empty value is the zero
// date, which validation reports as missing.
func parseDateFlag(name, raw string) (calendar.Date, error) {
	if raw == "" {
		return calendar.Date{}, nil
	}
	d, err := calendar.ParseDate(raw)
	if err != nil {
		return calendar.Date{}, &apperr.ValidationError{Fields: []apperr.FieldError{{Field: name, Message: "must be a date in YYYY-MM-DD format"}}}
	}
	return d, nil
}
