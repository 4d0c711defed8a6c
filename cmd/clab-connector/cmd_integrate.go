package main

import (
	"github.com/spf13/cobra"

	"github.com/eda-labs/clab-connector/pkg/integrate"
	"github.com/eda-labs/clab-connector/pkg/kube"
	"github.com/eda-labs/clab-connector/pkg/topology"
)

func newIntegrateCmd() *cobra.Command {
	var topologyFile string
	cfg := integrate.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "integrate",
		Short: "Onboard a containerlab topology into EDA",
		Long: `Integrate reads the topology-data.json written by containerlab on
deploy and creates all EDA resources for the lab: namespace, schema
artifacts, node profiles, users, toponodes, and topolinks.

  clab-connector integrate -t clab-mylab/topology-data.json -e https://eda.example`,
		RunE: func(cmd *cobra.Command, args []string) error {
			edaClient, err := newEDAClient()
			if err != nil {
				return err
			}
			topo, err := topology.Parse(topologyFile)
			if err != nil {
				return err
			}
			integrator := integrate.New(edaClient, kube.NewClient(), cfg)
			return integrator.Run(cmd.Context(), topo)
		},
	}

	cmd.Flags().StringVarP(&topologyFile, "topology-data", "t", "", "path to topology-data.json")
	cmd.MarkFlagRequired("topology-data")
	cmd.Flags().BoolVar(&cfg.SkipEdgeLinks, "skip-edge-intfs", false, "skip edge links and their interfaces")
	cmd.Flags().IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "toponodes per commit")
	cmd.Flags().DurationVar(&cfg.BatchDelay, "batch-delay", cfg.BatchDelay, "pause between toponode batches")
	cmd.Flags().BoolVar(&cfg.RollbackOnFailure, "rollback-on-failure", false, "restore EDA to its pre-integration state when a phase fails")
	cmd.Flags().StringVar(&cfg.NodePassword, "node-password", "", "SSH password tried before the vendor default during post-integration")
	cmd.Flags().BoolVar(&cfg.WaitForSync, "wait-for-sync", false, "wait until all nodes report synced")
	cmd.Flags().DurationVar(&cfg.SyncTimeout, "sync-timeout", cfg.SyncTimeout, "maximum time to wait for node sync")
	cmd.Flags().DurationVar(&cfg.SyncInterval, "sync-interval", cfg.SyncInterval, "poll interval while waiting for sync")
	return cmd
}
