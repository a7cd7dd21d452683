package command

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/guptam/altimeter/pkg/artifact"
	"github.com/guptam/altimeter/pkg/graphcheck"
	"github.com/guptam/altimeter/pkg/logging"
	"github.com/guptam/altimeter/pkg/pubsub"
	"github.com/guptam/altimeter/pkg/rdfgraph"
	"github.com/guptam/altimeter/pkg/watcher"
	"github.com/guptam/altimeter/pkg/web"
)

// NewServeCommand serves encoded graphs over HTTP.
func NewServeCommand(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [input.json...]",
		Short: "Serve the graphs of a scan artifact, or of raw scan dumps, over HTTP",
		Long: `Serve encodes the scan artifact, or the raw scan dumps given as arguments,
and serves both graph encodings plus a check report. With --watch the graph is
rebuilt whenever an input or schema file changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			syntax, err := rdfgraph.ParseSyntax(cli.Config.RDFSyntax)
			if err != nil {
				return err
			}
			srv := web.NewServer(rdfgraph.Namespace(cli.Config.Namespace), syntax, graphcheck.IgnoreScopeTargets())
			src := &graphSource{cli: cli, inputs: args}

			if err := src.rebuild(ctx, srv); err != nil {
				return err
			}
			if cli.Config.Serve.Watch {
				if err := src.watch(ctx, srv); err != nil {
					return err
				}
			}
			return srv.Start(ctx, cli.Config.Serve.Port)
		},
	}

	flags := cmd.Flags()
	flags.Int("port", 8080, "Port for web server")
	flags.Bool("watch", false, "Rebuild the graph when inputs change")
	flags.StringSlice("schema", nil, "Extra schema files, used when serving raw scan dumps")
	flags.Bool("skip-errors", false, "Record unparseable resources as scan errors instead of failing")
	flags.Int("workers", 8, "Maximum resources parsed concurrently")
	flags.String("rdf-syntax", "ntriples", "Default RDF serialisation: ntriples or turtle")
	return cmd
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// graphSource is where the served graph comes from: raw scan dumps when
// inputs are given, the configured artifact otherwise.
type graphSource struct {
	cli    *CLI
	inputs []string
}

func (s *graphSource) raw() bool {
	return len(s.inputs) > 0
}

func (s *graphSource) load(ctx context.Context, srv *web.Server) (*artifact.Artifact, error) {
	if !s.raw() {
		srv.PublishStatus(pubsub.GraphStatus{State: pubsub.StateLoading, Message: "reading artifact", Artifact: s.cli.Config.ArtifactPath})
		return artifact.Read(s.cli.Config.ArtifactPath)
	}
	srv.PublishStatus(pubsub.GraphStatus{State: pubsub.StateParsing, Message: "parsing scan dumps"})
	return buildArtifact(ctx, s.cli, s.inputs)
}

// rebuild loads the source and replaces the served graph. The previous graph
// keeps being served when it fails.
func (s *graphSource) rebuild(ctx context.Context, srv *web.Server) error {
	a, err := s.load(ctx, srv)
	if err != nil {
		srv.PublishStatus(pubsub.GraphStatus{State: pubsub.StateFailed, Message: err.Error()})
		return err
	}
	return srv.Load(a)
}

// watch rebuilds the graph on debounced input changes until ctx ends.
func (s *graphSource) watch(ctx context.Context, srv *web.Server) error {
	inputs := s.inputs
	var schemas []string
	if s.raw() {
		schemas = s.cli.Config.Schemas
	} else {
		inputs = []string{s.cli.Config.ArtifactPath}
	}

	fw, err := watcher.NewFileWatcher(inputs, schemas...)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}
	debouncer := watcher.NewDebouncer(fw.Events(), 300*time.Millisecond, 3*time.Second)
	debouncer.Start(ctx)

	go func() {
		for ev := range debouncer.Output() {
			analysis := watcher.AnalyzeChanges(ev)
			logging.Info("inputs changed, rebuilding graph",
				"kind", ev.Type.String(),
				"files", len(analysis.ChangedFiles),
				"reparse", analysis.NeedReparse || s.raw(),
			)
			if err := s.rebuild(ctx, srv); err != nil {
				logging.Error("rebuild failed, keeping previous graph", "error", err)
			}
		}
	}()
	return nil
}
