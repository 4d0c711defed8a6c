package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eda-labs/clab-connector/pkg/export"
	"github.com/eda-labs/clab-connector/pkg/topology"
)

func newExportLabCmd() *cobra.Command {
	var namespace string
	var output string

	cmd := &cobra.Command{
		Use:   "export-lab",
		Short: "Export an EDA namespace as a containerlab topology",
		Long: `Export-lab reads the toponodes and topolinks of a namespace from the
EDA API and writes an equivalent .clab.yaml file.

  clab-connector export-lab -e https://eda.example --namespace clab-mylab`,
		RunE: func(cmd *cobra.Command, args []string) error {
			edaClient, err := newEDAClient()
			if err != nil {
				return err
			}
			if output == "" {
				output = namespace + ".clab.yaml"
			}
			return export.NewExporter(edaClient, namespace).Run(output)
		},
	}

	cmd.Flags().StringVar(&namespace, "namespace", "", "EDA namespace to export")
	cmd.MarkFlagRequired("namespace")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <namespace>.clab.yaml)")
	return cmd
}

func newGenerateCRsCmd() *cobra.Command {
	var topologyFile string
	var output string
	var separate bool
	var skipEdgeLinks bool

	cmd := &cobra.Command{
		Use:   "generate-crs",
		Short: "Generate the CR manifests for a topology",
		Long: `Generate-crs renders the custom resources integration would commit,
without talking to EDA. The output is one combined YAML stream, or one
file per resource category with --separate.

  clab-connector generate-crs -t topology-data.json -o manifests.yaml
  clab-connector generate-crs -t topology-data.json --separate -o manifests/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			topo, err := topology.Parse(topologyFile)
			if err != nil {
				return err
			}
			categories, err := export.NewGenerator(topo, skipEdgeLinks).Generate()
			if err != nil {
				return err
			}
			if separate {
				dir := output
				if dir == "" {
					dir = "manifests"
				}
				return export.WriteSeparate(categories, dir)
			}
			if output == "" {
				fmt.Println(export.Combine(categories))
				return nil
			}
			return export.WriteCombined(categories, output)
		},
	}

	cmd.Flags().StringVarP(&topologyFile, "topology-data", "t", "", "path to topology-data.json")
	cmd.MarkFlagRequired("topology-data")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, or directory with --separate")
	cmd.Flags().BoolVar(&separate, "separate", false, "write one file per resource category")
	cmd.Flags().BoolVar(&skipEdgeLinks, "skip-edge-intfs", false, "skip edge links and their interfaces")
	return cmd
}
