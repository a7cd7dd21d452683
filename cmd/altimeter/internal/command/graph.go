package command

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/guptam/altimeter/pkg/artifact"
	"github.com/guptam/altimeter/pkg/encode"
	"github.com/guptam/altimeter/pkg/logging"
	"github.com/guptam/altimeter/pkg/rdfgraph"
)

// NewGraphCommand encodes an artifact as RDF or a property graph.
func NewGraphCommand(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Encode a scan artifact as RDF or a labeled property graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := artifact.Read(cli.Config.ArtifactPath)
			if err != nil {
				return err
			}
			format, err := encode.ParseFormat(cli.Config.Format)
			if err != nil {
				return err
			}

			w, closeOut, err := cli.output()
			if err != nil {
				return err
			}

			switch format {
			case encode.FormatRDF:
				err = writeRDF(cli, a, w)
			case encode.FormatLPG:
				g := encode.EncodeLPG(a.Resources)
				logging.Debug("encoded property graph", "vertices", len(g.Vertices), "edges", len(g.Edges), "labels", g.LabelCounts())
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				err = enc.Encode(g)
			}
			if cerr := closeOut(); err == nil {
				err = cerr
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringP("format", "f", "lpg", "Graph encoding: rdf or lpg")
	flags.String("rdf-syntax", "ntriples", "RDF serialisation: ntriples or turtle")
	flags.StringP("output", "o", "-", "Output file, - for stdout")
	return cmd
}

func writeRDF(cli *CLI, a *artifact.Artifact, w io.Writer) error {
	syntax, err := rdfgraph.ParseSyntax(cli.Config.RDFSyntax)
	if err != nil {
		return err
	}
	g, err := encode.EncodeRDF(a.Resources, rdfgraph.Namespace(cli.Config.Namespace))
	if err != nil {
		return err
	}
	if err := g.Encode(w, syntax); err != nil {
		return fmt.Errorf("failed to write rdf: %w", err)
	}
	return nil
}
