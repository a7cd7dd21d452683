// Package graphcheck reports integrity problems in an encoded property graph:
// links to resources that were never scanned, and reference cycles.
package graphcheck

import (
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws/arn"

	"github.com/guptam/altimeter/pkg/link"
	"github.com/guptam/altimeter/pkg/logging"
	"github.com/guptam/altimeter/pkg/model"
)

// Severity of a finding.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityInfo  Severity = "info"
)

// Finding is a link whose target vertex is missing from the graph.
type Finding struct {
	Severity Severity `json:"severity"`
	Label    string   `json:"label"`
	From     string   `json:"from"`
	To       string   `json:"to"`
}

// Cycle is a set of resources that reference each other, in discovery order.
type Cycle struct {
	Resources []string `json:"resources"`
}

// Report is the result of a check.
type Report struct {
	Resources int       `json:"resources"`
	Dangling  []Finding `json:"dangling"`
	Cycles    []Cycle   `json:"cycles"`
}

// Errors returns the findings of error severity.
func (r *Report) Errors() []Finding {
	var out []Finding
	for _, f := range r.Dangling {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// OK reports whether the check found no errors.
func (r *Report) OK() bool {
	return len(r.Errors()) == 0
}

// Option configures a check.
type Option func(*checker)

// IgnoreTarget skips links whose target matches fn.
func IgnoreTarget(fn func(id string) bool) Option {
	return func(c *checker) {
		c.ignore = append(c.ignore, fn)
	}
}

// IgnoreScopeTargets skips links to account and region ARNs.
func IgnoreScopeTargets() Option {
	return IgnoreTarget(IsScopeARN)
}

// IsScopeARN reports whether id is an account or region ARN.
func IsScopeARN(id string) bool {
	a, err := arn.Parse(id)
	if err != nil {
		return false
	}
	return a.Service == "" && (strings.HasPrefix(a.Resource, "account/") || strings.HasPrefix(a.Resource, "region/"))
}

type checker struct {
	ignore []func(string) bool
}

func (c *checker) ignored(id string) bool {
	for _, fn := range c.ignore {
		if fn(id) {
			return true
		}
	}
	return false
}

// Check inspects g. A resource_link to a missing vertex is an error; a
// transient_resource_link to a missing vertex is informational, since
// transient targets may legitimately have been deleted.
func Check(g *model.Graph, opts ...Option) *Report {
	c := &checker{}
	for _, opt := range opts {
		opt(c)
	}

	rg := FromLPG(g)
	report := &Report{
		Resources: rg.Len(),
		Dangling:  make([]Finding, 0),
		Cycles:    make([]Cycle, 0),
	}

	for _, e := range g.Edges {
		if !isReference(e.Label) || rg.HasResource(e.To) || c.ignored(e.To) {
			continue
		}
		sev := SeverityInfo
		if e.Label == string(link.TypeResourceLink) {
			sev = SeverityError
		}
		report.Dangling = append(report.Dangling, Finding{Severity: sev, Label: e.Label, From: e.From, To: e.To})
	}

	for _, id := range rg.selfLinks {
		report.Cycles = append(report.Cycles, Cycle{Resources: []string{id}})
	}
	for _, scc := range newTarjan(rg.graph).components() {
		ids := make([]string, 0, len(scc))
		for _, nodeID := range scc {
			ids = append(ids, rg.name(nodeID))
		}
		report.Cycles = append(report.Cycles, Cycle{Resources: ids})
	}
	sort.SliceStable(report.Dangling, func(i, j int) bool {
		return report.Dangling[i].Severity == SeverityError && report.Dangling[j].Severity != SeverityError
	})

	logging.Debug("checked graph",
		"resources", report.Resources,
		"dangling", len(report.Dangling),
		"cycles", len(report.Cycles),
	)
	return report
}
