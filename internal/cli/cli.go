// Package cli implements the planner command line tool. It edits the same
// plan document as the API server, stored on local disk.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pkordes/trip-planner/internal/geocode"
	"github.com/pkordes/trip-planner/internal/repo"
	"github.com/pkordes/trip-planner/internal/service"
)

// Config is the resolved CLI configuration.
type Config struct {
	DataDir       string
	PlanKey       string
	LocationIQKey string
	UserAgent     string
	Verbose       bool
}

// Option customizes the root command.
type Option func(*app)

// WithGeocoder replaces the provider-backed geocoder.
func WithGeocoder(g geocode.Geocoder) Option {
	return func(a *app) { a.geo = g }
}

type app struct {
	v   *viper.Viper
	geo geocode.Geocoder
}

// New returns the root planner command.
func New(opts ...Option) *cobra.Command {
	a := &app{v: viper.New()}
	for _, opt := range opts {
		opt(a)
	}

	cmd := &cobra.Command{
		Use:           "planner",
		Short:         "Plan a trip day by day from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("data-dir", "~/.trip-planner", "Directory holding the plan document.")
	flags.String("plan-key", service.DefaultPlanKey, "Key the plan is stored under.")
	flags.String("locationiq-key", "", "LocationIQ API key; without it only OpenStreetMap Nominatim is used.")
	flags.String("user-agent", "trip-planner/1.0", "User agent sent to geocoding providers.")
	flags.BoolP("verbose", "v", false, "Log warnings to stderr.")
	for _, name := range []string{"data-dir", "plan-key", "locationiq-key", "user-agent", "verbose"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}

	addShow(cmd, a)
	addTitle(cmd, a)
	addDates(cmd, a)
	addAdd(cmd, a)
	addRm(cmd, a)
	addMove(cmd, a)
	addExport(cmd, a)
	addImport(cmd, a)
	addGeocode(cmd, a)

	return cmd
}

// loadConfig resolves settings from flags, PLANNER_* environment variables
// and an optional .planner.yaml in the working or home directory, in that
// order of precedence.
func (a *app) loadConfig() (Config, error) {
	a.v.SetConfigName(".planner") // .yaml is implicit
	a.v.SetEnvPrefix("PLANNER")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	a.v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		a.v.AddConfigPath(home)
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	dir, err := homedir.Expand(a.v.GetString("data-dir"))
	if err != nil {
		return Config{}, fmt.Errorf("expanding data dir: %w", err)
	}
	return Config{
		DataDir:       dir,
		PlanKey:       a.v.GetString("plan-key"),
		LocationIQKey: a.v.GetString("locationiq-key"),
		UserAgent:     a.v.GetString("user-agent"),
		Verbose:       a.v.GetBool("verbose"),
	}, nil
}

// service opens the disk store and builds the plan service.
func (a *app) service(cmd *cobra.Command) (*service.PlanService, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	var logOut io.Writer = io.Discard
	if cfg.Verbose {
		logOut = cmd.ErrOrStderr()
	}
	geo := a.geo
	if geo == nil {
		geo = geocode.New(cfg.LocationIQKey, cfg.UserAgent)
	}
	return service.NewPlanService(repo.NewDiskPlanStore(cfg.DataDir), cfg.PlanKey,
		service.WithGeocoder(geo),
		service.WithLogger(slog.New(slog.NewTextHandler(logOut, nil))),
	), nil
}
