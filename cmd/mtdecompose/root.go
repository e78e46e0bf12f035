package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/quake-mechanism-etl/internal/domain"
	"github.com/couchcryptid/quake-mechanism-etl/internal/geometry/matrix"
)

var errInputMode = errors.New("give exactly one of: tensor components (--mrr…--mtp), a nodal plane (--strike/--dip/--rake) or --file")

var componentFlags = []string{"mrr", "mtt", "mpp", "mrt", "mrp", "mtp"}

type options struct {
	components   [6]float64
	plane        domain.NodalPlane
	moment       float64
	units        string
	file         string
	maxRotations int
	output       string
}

// productResult is one decomposed product of an event file.
type productResult struct {
	EventID     string `json:"event_id"`
	ProductType string `json:"product_type"`
	domain.Summary
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "mtdecompose",
		Short: "Decompose a seismic moment tensor",
		Long: `Decompose a seismic moment tensor into T, N and P axes, both nodal planes,
scalar moment and percent double couple.

Example:
  mtdecompose --mrr 1e17 --mtt -1e17 --mpp 0 --mrt 0 --mrp 0 --mtp 0
  mtdecompose --strike 322 --dip 81 --rake -173 --output yaml
  mtdecompose --file data/mock/event.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := decompose(cmd, opts)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), result, opts.output)
		},
	}

	f := cmd.Flags()
	for i, name := range componentFlags {
		f.Float64Var(&opts.components[i], name, 0, fmt.Sprintf("%s component", name))
	}
	f.Float64Var(&opts.plane.Strike, "strike", 0, "nodal plane strike in degrees")
	f.Float64Var(&opts.plane.Dip, "dip", 0, "nodal plane dip in degrees")
	f.Float64Var(&opts.plane.Rake, "rake", 0, "nodal plane rake in degrees")
	f.Float64Var(&opts.moment, "moment", 0, "scalar moment for a nodal plane (default: nominal unit moment)")
	f.StringVar(&opts.units, "units", domain.UnitsNewtonMeter, "component units (N-m or dyne-cm)")
	f.StringVarP(&opts.file, "file", "f", "", "GeoJSON event feature to decompose")
	f.IntVar(&opts.maxRotations, "max-rotations", matrix.DefaultMaxRotations, "Jacobi rotation budget")
	f.StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")

	return cmd
}

func decompose(cmd *cobra.Command, opts options) (any, error) {
	if opts.output != "json" && opts.output != "yaml" {
		return nil, fmt.Errorf("unknown output format %q", opts.output)
	}

	var hasComponents, hasPlane bool
	for _, name := range componentFlags {
		hasComponents = hasComponents || cmd.Flags().Changed(name)
	}
	for _, name := range []string{"strike", "dip", "rake"} {
		hasPlane = hasPlane || cmd.Flags().Changed(name)
	}
	hasFile := opts.file != ""

	modes := 0
	for _, b := range []bool{hasComponents, hasPlane, hasFile} {
		if b {
			modes++
		}
	}
	if modes != 1 {
		return nil, errInputMode
	}

	jacobi := matrix.WithMaxRotations(opts.maxRotations)
	if hasFile {
		return decomposeFile(opts.file, jacobi)
	}

	in := domain.TensorInput{Units: opts.units}
	if hasComponents {
		in.Components = opts.components[:]
	} else {
		plane := opts.plane
		in.Plane = &plane
		in.Moment = opts.moment
	}
	tensor, err := in.Tensor()
	if err != nil {
		return nil, err
	}
	d, err := domain.Decompose(tensor, jacobi)
	if err != nil {
		return nil, err
	}
	return domain.Summarize(tensor, d), nil
}

func decomposeFile(path string, jacobi matrix.JacobiOption) ([]productResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	event, err := domain.ParseRawEvent(domain.RawEvent{Value: data})
	if err != nil {
		return nil, err
	}
	if len(event.Products) == 0 {
		return nil, fmt.Errorf("%s: event %s has no moment-tensor or focal-mechanism products", path, event.ID)
	}

	results := make([]productResult, 0, len(event.Products))
	for _, p := range event.Products {
		tensor, err := domain.TensorFromProduct(p)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", event.ID, p.Type, err)
		}
		d, err := domain.Decompose(tensor, jacobi)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", event.ID, p.Type, err)
		}
		results = append(results, productResult{
			EventID:     event.ID,
			ProductType: p.Type,
			Summary:     domain.Summarize(tensor, d),
		})
	}
	return results, nil
}

// render writes v as indented JSON, or as YAML with the same field names.
func render(w io.Writer, v any, format string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if format == "json" {
		_, err = w.Write(append(data, '\n'))
		return err
	}

	// JSON is valid YAML; decoding into a node keeps key order.
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return err
	}
	clearStyle(&node)
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// clearStyle drops the flow and quoting styles the JSON syntax left on node
// so it encodes as block YAML.
func clearStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		clearStyle(child)
	}
}
