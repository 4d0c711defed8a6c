package main

import (
	"github.com/spf13/cobra"

	"github.com/eda-labs/clab-connector/pkg/integrate"
	"github.com/eda-labs/clab-connector/pkg/topology"
)

func newRemoveCmd() *cobra.Command {
	var topologyFile string

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a topology's resources from EDA",
		Long: `Remove deletes the EDA namespace created for the topology, which
cascades to every resource integration created in it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			edaClient, err := newEDAClient()
			if err != nil {
				return err
			}
			topo, err := topology.Parse(topologyFile)
			if err != nil {
				return err
			}
			return integrate.NewRemover(edaClient).Run(topo)
		},
	}

	cmd.Flags().StringVarP(&topologyFile, "topology-data", "t", "", "path to topology-data.json")
	cmd.MarkFlagRequired("topology-data")
	return cmd
}
