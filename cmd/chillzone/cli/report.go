package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chillzone/chillzone-pos/internal/reports"
	"github.com/chillzone/chillzone-pos/internal/reports/export"
)

// DashboardSource builds the reports dashboard for a reference date.
type DashboardSource interface {
	Dashboard(ctx context.Context, ref time.Time) (reports.Dashboard, error)
}

// ReportCLI prints the sales summary from the command line.
type ReportCLI struct {
	source DashboardSource
	loc    *time.Location
}

// NewReportCLI constructs the helper. loc is the store time zone used to
// parse --ref.
func NewReportCLI(source DashboardSource, loc *time.Location) (*ReportCLI, error) {
	if source == nil {
		return nil, errors.New("report cli: dashboard source required")
	}
	if loc == nil {
		loc = time.Local
	}
	return &ReportCLI{source: source, loc: loc}, nil
}

// ReportOptions defines the flags of the report command.
type ReportOptions struct {
	RefDate    string
	Top        int
	Section    string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// ParseReportFlags reads report command flags from args.
func ParseReportFlags(args []string, stderr io.Writer) (ReportOptions, error) {
	var opts ReportOptions
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	if stderr != nil {
		fs.SetOutput(stderr)
	}
	fs.StringVar(&opts.RefDate, "ref", "", "reference date (YYYY-MM-DD), defaults to today")
	fs.IntVar(&opts.Top, "top", 0, "size of the best-seller ranking, defaults to REPORT_TOP_N")
	fs.StringVar(&opts.Section, "csv", "", "write CSV for a section (all, weekly, monthly, yearly, top) instead of the summary")
	fs.BoolVar(&opts.JSONOutput, "json", false, "print the dashboard as JSON")
	if err := fs.Parse(args); err != nil {
		return ReportOptions{}, err
	}
	if opts.Top < 0 {
		return ReportOptions{}, errors.New("report: --top must not be negative")
	}
	return opts, nil
}

// SummaryCommand prints the dashboard and returns the process exit code.
func (c *ReportCLI) SummaryCommand(ctx context.Context, opts ReportOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	var ref time.Time
	if raw := strings.TrimSpace(opts.RefDate); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, c.loc)
		if err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "report: invalid --ref %q (expected YYYY-MM-DD)\n", opts.RefDate)
			return 1
		}
		ref = parsed
	}
	section := strings.TrimSpace(opts.Section)
	if section != "" && !export.ValidSection(section) {
		_, _ = fmt.Fprintf(opts.Stderr, "report: unknown section %q\n", section)
		return 1
	}

	dashboard, err := c.source.Dashboard(ctx, ref)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "report: %v\n", err)
		return 1
	}

	switch {
	case section != "":
		if err := export.WriteCSV(opts.Stdout, dashboard, section); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "report: write csv: %v\n", err)
			return 1
		}
	case opts.JSONOutput:
		if err := json.NewEncoder(opts.Stdout).Encode(dashboard); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "report: encode json: %v\n", err)
			return 1
		}
	default:
		renderSummary(opts.Stdout, dashboard)
	}
	return 0
}

func renderSummary(out io.Writer, d reports.Dashboard) {
	_, _ = fmt.Fprintf(out, "Sales report for %s (week %s)\n", d.RefDate, d.WeekRange)
	_, _ = fmt.Fprintf(out, "Weekly:  KES %s\n", export.FormatAmount(d.Summary.Weekly))
	_, _ = fmt.Fprintf(out, "Monthly: KES %s\n", export.FormatAmount(d.Summary.Monthly))
	_, _ = fmt.Fprintf(out, "Yearly:  KES %s\n", export.FormatAmount(d.Summary.Yearly))
	_, _ = fmt.Fprintf(out, "Sales recorded: %d\n", d.SalesCount)
	if len(d.TopProducts) == 0 {
		_, _ = fmt.Fprintln(out, "No products sold yet.")
		return
	}
	_, _ = fmt.Fprintln(out, "Top products:")
	for i, p := range d.TopProducts {
		_, _ = fmt.Fprintf(out, " %d. %s (%d)\n", i+1, p.Name, p.Quantity)
	}
}
