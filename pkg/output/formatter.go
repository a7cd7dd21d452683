package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/guptam/altimeter/pkg/artifact"
	"github.com/guptam/altimeter/pkg/encode"
	"github.com/guptam/altimeter/pkg/graphcheck"
	"github.com/guptam/altimeter/pkg/link"
)

// PrintScanSummary prints a nicely formatted summary of a scan artifact
func PrintScanSummary(w io.Writer, a *artifact.Artifact, s encode.Summary) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Header
	bold.Fprintf(w, "Altimeter - Scan Summary\n")
	bold.Fprintf(w, "========================\n")
	fmt.Fprintf(w, "Graph: %s (version %s)\n", a.Name, a.Version)
	fmt.Fprintf(w, "Account: %s\n", a.AccountID)
	fmt.Fprintf(w, "Duration: %s\n", a.Duration())
	fmt.Fprintln(w)

	green.Fprintf(w, "Resources: %d\n", s.Resources)
	for _, typ := range sortedKeys(s.Types) {
		cyan.Fprintf(w, "  %-45s %d\n", typ, s.Types[typ])
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Links:\n")
	for _, t := range link.Types {
		if n := s.Links[t]; n > 0 {
			fmt.Fprintf(w, "  %-45s %d\n", t, n)
		}
	}
	fmt.Fprintln(w)

	if len(a.Errors) == 0 {
		green.Fprintf(w, "Scan errors: 0\n")
		return
	}
	yellow.Fprintf(w, "Scan errors: %d\n", len(a.Errors))
	for _, e := range a.Errors {
		red.Fprintf(w, "  %s\n", e)
	}
}

// PrintCheckReport prints the findings of a graph check
func PrintCheckReport(w io.Writer, r *graphcheck.Report) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	bold.Fprintf(w, "Altimeter - Graph Check\n")
	bold.Fprintf(w, "=======================\n")
	fmt.Fprintf(w, "Checked: %d resources\n", r.Resources)
	fmt.Fprintln(w)

	if len(r.Dangling) > 0 {
		red.Fprintf(w, "DANGLING LINKS:\n")
		for _, f := range r.Dangling {
			c := yellow
			if f.Severity == graphcheck.SeverityError {
				c = red
			}
			c.Fprintf(w, "  [%s] %s\n", f.Severity, f.From)
			cyan.Fprintf(w, "    %s -> %s\n", f.Label, f.To)
		}
		fmt.Fprintln(w)
	}

	if len(r.Cycles) > 0 {
		yellow.Fprintf(w, "REFERENCE CYCLES: %d\n", len(r.Cycles))
		for i, c := range r.Cycles {
			fmt.Fprintf(w, "  %d:", i+1)
			for _, id := range c.Resources {
				fmt.Fprintf(w, " %s", id)
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w)
	}

	errs := len(r.Errors())
	if errs == 0 {
		green.Fprintf(w, "✓ No dangling resource links (%d informational)\n", len(r.Dangling))
		return
	}
	red.Fprintf(w, "Summary: %d dangling resource link(s)\n", errs)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
