package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/geocode"
)

var (
	titleColor = color.New(color.Bold, color.Underline)
	dayColor   = color.New(color.Bold)
	faint      = color.New(color.Faint)
	idColor    = color.New(color.FgHiYellow, color.Faint)
	okColor    = color.New(color.FgGreen)
)

// printPlan writes the plan as one table per day.
func printPlan(w io.Writer, p domain.Plan) {
	_, _ = titleColor.Fprintln(w, p.Title)
	if p.StartDate != "" {
		_, _ = faint.Fprintf(w, "%s to %s\n", p.StartDate, p.EndDate)
	}
	_, _ = fmt.Fprintln(w)

	if len(p.Days) == 0 {
		_, _ = faint.Fprintln(w, "no days; set the trip dates with `planner dates`")
		return
	}

	for _, d := range p.Days {
		_, _ = dayColor.Fprintf(w, "Day %d", d.Number)
		_, _ = faint.Fprintf(w, "  %s\n", d.Date)

		if len(d.Items) == 0 {
			_, _ = faint.Fprint(w, "  none\n\n")
			continue
		}

		display := map[string]string{}
		for _, sg := range d.Segments() {
			display[sg.Travel.ID] = sg.Display
		}

		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.MaxColWidth = 60
		for _, it := range d.Items {
			tbl.AddRow(idColor.Sprint(it.ItemID()), itemRow(it, display))
		}
		_, _ = fmt.Fprintln(w, tbl)
		_, _ = fmt.Fprintln(w)
	}
}

func itemRow(it domain.Item, travelDisplay map[string]string) string {
	switch v := it.(type) {
	case *domain.Location:
		parts := []string{"● " + v.Name}
		if tr := clockRange(v.StartTime, v.EndTime); tr != "" {
			parts = append(parts, tr)
		}
		if v.Money > 0 {
			parts = append(parts, fmt.Sprintf("%.2f %s", v.Money, v.Currency))
		}
		return strings.Join(parts, "  ")
	case *domain.Note:
		return "– " + v.Content
	case *domain.Travel:
		method := v.Transport
		if method == "" {
			method = "travel"
		}
		s := "  ↓ " + method
		if d := travelDisplay[v.ID]; d != "" {
			s += " " + d
		}
		return faint.Sprint(s)
	}
	return ""
}

func clockRange(start, end string) string {
	switch {
	case start != "" && end != "":
		return start + "-" + end
	case start != "":
		return "from " + start
	case end != "":
		return "until " + end
	}
	return ""
}

func printGeocode(w io.Writer, res geocode.Result) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(dayColor.Sprint("Lat"), fmt.Sprintf("%.6f", res.Lat))
	tbl.AddRow(dayColor.Sprint("Lng"), fmt.Sprintf("%.6f", res.Lng))
	tbl.AddRow(dayColor.Sprint("Address"), res.DisplayAddress)
	_, _ = fmt.Fprintln(w, tbl)
}

// done prints a one-line confirmation.
func done(cmd *cobra.Command, format string, args ...any) error {
	_, err := okColor.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
	return err
}
