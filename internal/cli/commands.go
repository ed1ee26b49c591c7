package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pkordes/trip-planner/internal/document"
	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/service"
)

func addShow(topLevel *cobra.Command, a *app) {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the plan",
		Example: `
planner show
planner show --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}
			p, err := svc.Get(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				b, err := json.MarshalIndent(document.FromPlan(p), "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return err
			}
			printPlan(cmd.OutOrStdout(), p)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON.")
	topLevel.AddCommand(cmd)
}

func addTitle(topLevel *cobra.Command, a *app) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "title <title>",
		Short: "Rename the plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}
			p, err := svc.SetTitle(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return done(cmd, "title set to %q", p.Title)
		},
	})
}

func addDates(topLevel *cobra.Command, a *app) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "dates <start> [end]",
		Short: "Set the trip dates and regenerate the days",
		Long: `Set the trip dates and regenerate the days.

Existing days keep their items by position; days beyond the new range are
dropped. Without an end date the trip is a single day. Dates are YYYY-MM-DD.`,
		Example: `
planner dates 2025-06-01 2025-06-05
`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}
			end := args[0]
			if len(args) == 2 {
				end = args[1]
			}
			p, err := svc.SetDates(cmd.Context(), args[0], end)
			if err != nil {
				return err
			}
			return done(cmd, "%d day(s) from %s to %s", len(p.Days), p.StartDate, p.EndDate)
		},
	})
}

func addAdd(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a location or note to a day",
		Example: `
planner add location 1 "Louvre Museum" --start 09:00 --end 12:00
planner add note 2 "Buy museum pass"
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	addLocation(cmd, a)
	addNote(cmd, a)
	topLevel.AddCommand(cmd)
}

func addLocation(parent *cobra.Command, a *app) {
	var (
		in       domain.LocationPatch
		lat, lng float64
	)
	cmd := &cobra.Command{
		Use:   "location <day#> <name>",
		Short: "Add a location; coordinates are looked up when --lat/--lng are omitted",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}
			day, err := dayByNumber(cmd, svc, args[0])
			if err != nil {
				return err
			}
			in.Name = args[1]
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
				in.Lat, in.Lng = &lat, &lng
			}
			loc, err := svc.AddLocation(cmd.Context(), day.ID, in)
			if err != nil {
				return err
			}
			return done(cmd, "added %s (%s) at %.6f, %.6f", loc.Name, loc.ID, loc.Lat, loc.Lng)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&lat, "lat", 0, "Latitude.")
	f.Float64Var(&lng, "lng", 0, "Longitude.")
	f.StringVar(&in.GoogleAddress, "address", "", "Street address.")
	f.StringVar(&in.StartTime, "start", "", "Start time, HH:MM.")
	f.StringVar(&in.EndTime, "end", "", "End time, HH:MM.")
	f.StringVar(&in.Notes, "notes", "", "Free-form notes (markdown).")
	f.Float64Var(&in.Money, "money", 0, "Planned spend.")
	f.StringVar(&in.Currency, "currency", "", "Currency of --money (default USD).")
	parent.AddCommand(cmd)
}

func addNote(parent *cobra.Command, a *app) {
	parent.AddCommand(&cobra.Command{
		Use:   "note <day#> <text>",
		Short: "Add a note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}
			day, err := dayByNumber(cmd, svc, args[0])
			if err != nil {
				return err
			}
			n, err := svc.AddNote(cmd.Context(), day.ID, args[1])
			if err != nil {
				return err
			}
			return done(cmd, "added note %s", n.ID)
		},
	})
}

func addRm(topLevel *cobra.Command, a *app) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "rm <day#> <itemId>",
		Short: "Remove an item from a day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}
			day, err := dayByNumber(cmd, svc, args[0])
			if err != nil {
				return err
			}
			if err := svc.DeleteItem(cmd.Context(), day.ID, args[1]); err != nil {
				return err
			}
			return done(cmd, "removed %s", args[1])
		},
	})
}

func addMove(topLevel *cobra.Command, a *app) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "move <itemId> <targetDay#> <index>",
		Short: "Move an item within or across days",
		Long: `Move an item to position <index> of the target day.

Within the same day the index counts positions before the item is removed,
so moving the first of three items to the end takes index 3.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}
			p, err := svc.Get(cmd.Context())
			if err != nil {
				return err
			}
			src, err := dayOfItem(p, args[0])
			if err != nil {
				return err
			}
			dst, err := parseDay(p, args[1])
			if err != nil {
				return err
			}
			idx, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("index %q is not a number", args[2])
			}
			if _, err := svc.Reorder(cmd.Context(), src.ID, dst.ID, args[0], idx); err != nil {
				return err
			}
			return done(cmd, "moved %s to day %d", args[0], dst.Number)
		},
	})
}

func addExport(topLevel *cobra.Command, a *app) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "export [file]",
		Short: "Write the plan document to a file, or stdout",
		Example: `
planner export
planner export ` + document.Filename + `
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}
			data, err := svc.Export(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 0 {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return err
			}
			return done(cmd, "exported to %s", args[0])
		},
	})
}

func addImport(topLevel *cobra.Command, a *app) {
	var force bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the plan with a document file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !document.Importable(args[0], "") {
				return fmt.Errorf("%s is not a .json file", args[0])
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}
			p, err := svc.Import(cmd.Context(), data, force)
			if err != nil {
				return err
			}
			return done(cmd, "imported %q with %d day(s)", p.Title, len(p.Days))
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace a plan that already has days.")
	topLevel.AddCommand(cmd)
}

func addGeocode(topLevel *cobra.Command, a *app) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "geocode <query>",
		Short: "Look up coordinates for a place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd)
			if err != nil {
				return err
			}
			res, err := svc.Geocode(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printGeocode(cmd.OutOrStdout(), res)
			return nil
		},
	})
}

// dayByNumber resolves a 1-based day number argument against the stored plan.
func dayByNumber(cmd *cobra.Command, svc *service.PlanService, arg string) (*domain.Day, error) {
	p, err := svc.Get(cmd.Context())
	if err != nil {
		return nil, err
	}
	return parseDay(p, arg)
}

func parseDay(p domain.Plan, arg string) (*domain.Day, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("day %q is not a number", arg)
	}
	return p.DayByNumber(n)
}

func dayOfItem(p domain.Plan, itemID string) (*domain.Day, error) {
	for _, d := range p.Days {
		if d.IndexOf(itemID) >= 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
}
