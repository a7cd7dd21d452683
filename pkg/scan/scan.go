// Package scan turns raw scanner dumps into resources using the schema
// registry. Parsing is free of shared state, so records are parsed
// concurrently; results keep input order.
package scan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guptam/altimeter/pkg/field"
	"github.com/guptam/altimeter/pkg/link"
	"github.com/guptam/altimeter/pkg/logging"
	"github.com/guptam/altimeter/pkg/metrics"
	"github.com/guptam/altimeter/pkg/resource"
	"github.com/guptam/altimeter/pkg/schema"
)

// ErrUnknownResourceType is returned for records whose type has no schema.
var ErrUnknownResourceType = errors.New("unknown resource type")

// Input is one scanner dump: the raw API descriptions gathered for one
// account and region.
type Input struct {
	AccountID string   `json:"account_id"`
	Region    string   `json:"region"`
	Partition string   `json:"partition,omitempty"`
	Resources []Record `json:"resources"`
}

// Record is a single raw API description.
type Record struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// Options controls a parse run.
type Options struct {
	// MaxWorkers bounds the number of records parsed at once.
	// Zero means GOMAXPROCS.
	MaxWorkers int
	// SkipErrors records parse failures and carries on instead of aborting.
	SkipErrors bool
}

// Error is a record that failed to parse.
type Error struct {
	AccountID string `json:"account_id"`
	Region    string `json:"region"`
	Index     int    `json:"index"`
	Type      string `json:"resource_type"`
	Err       error  `json:"-"`
	Message   string `json:"error"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("record %d (%s): %v", e.Index, e.Type, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Result holds the resources parsed from one or more inputs.
type Result struct {
	Resources []resource.Resource
	Errors    []*Error
}

// ReadInput decodes a scanner dump. Numbers are decoded exactly.
func ReadInput(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scan input %s: %w", path, err)
	}
	var in Input
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("failed to decode scan input %s: %w", path, err)
	}
	return &in, nil
}

// Parse parses every record of in. Without SkipErrors the first failure
// cancels the run and is returned.
func Parse(ctx context.Context, reg *schema.Registry, in *Input, opts Options) (*Result, error) {
	workers := opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	fctx := field.Context{AccountID: in.AccountID, Region: in.Region, Partition: in.Partition}

	parsed := make([]resource.Resource, len(in.Resources))
	failed := make([]*Error, len(in.Resources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, rec := range in.Resources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := parseRecord(reg, rec, fctx)
			if err != nil {
				scanErr := &Error{
					AccountID: in.AccountID,
					Region:    in.Region,
					Index:     i,
					Type:      rec.Type,
					Err:       err,
					Message:   err.Error(),
				}
				if !opts.SkipErrors {
					return scanErr
				}
				logging.Warn("skipping resource", "type", rec.Type, "index", i, "error", err)
				failed[i] = scanErr
				return nil
			}
			parsed[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Resources: make([]resource.Resource, 0, len(parsed))}
	for i := range parsed {
		if failed[i] != nil {
			res.Errors = append(res.Errors, failed[i])
			continue
		}
		res.Resources = append(res.Resources, parsed[i])
	}
	logging.Debug("parsed scan input",
		"account", in.AccountID,
		"region", in.Region,
		"resources", len(res.Resources),
		"errors", len(res.Errors),
	)
	return res, nil
}

func parseRecord(reg *schema.Registry, rec Record, ctx field.Context) (resource.Resource, error) {
	start := time.Now()
	rt, ok := reg.Lookup(rec.Type)
	if !ok {
		err := fmt.Errorf("%w: %q", ErrUnknownResourceType, rec.Type)
		metrics.Metrics.ObserveParse(rec.Type, time.Since(start).Seconds(), err)
		return resource.Resource{}, err
	}
	r, err := rt.Build(rec.Data, ctx)
	metrics.Metrics.ObserveParse(rec.Type, time.Since(start).Seconds(), err)
	if err == nil && logging.Enabled(logging.LevelTrace) {
		logging.Trace("parsed resource", "resource", r.ID, "links", link.Dump(r.Links...))
	}
	return r, err
}

// ParseAll parses several inputs in order and concatenates their results.
func ParseAll(ctx context.Context, reg *schema.Registry, inputs []*Input, opts Options) (*Result, error) {
	all := &Result{}
	for _, in := range inputs {
		res, err := Parse(ctx, reg, in, opts)
		if err != nil {
			return nil, fmt.Errorf("account %s region %s: %w", in.AccountID, in.Region, err)
		}
		all.Resources = append(all.Resources, res.Resources...)
		all.Errors = append(all.Errors, res.Errors...)
	}
	return all, nil
}
