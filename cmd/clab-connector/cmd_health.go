package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eda-labs/clab-connector/pkg/cli"
	"github.com/eda-labs/clab-connector/pkg/kube"
	"github.com/eda-labs/clab-connector/pkg/status"
)

func newHealthCmd() *cobra.Command {
	var skipCluster bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the health of the EDA deployment",
		Long: `Health probes EDA connectivity, authentication, version support, and
Kubernetes cluster readiness.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			edaClient, err := newEDAClient()
			if err != nil {
				return err
			}
			var kubeClient *kube.Client
			if !skipCluster {
				kubeClient = kube.NewClient()
			}

			results := status.NewHealthChecker(edaClient, kubeClient).Run()

			table := cli.NewTable("COMPONENT", "STATUS", "MESSAGE")
			for _, r := range results {
				table.Row(r.Name, colorHealth(r.Status), r.Message)
			}
			table.Flush()

			overall := status.Overall(results)
			fmt.Printf("\nOverall: %s\n", colorHealth(overall))
			if overall == status.Unhealthy {
				return fmt.Errorf("EDA deployment is unhealthy")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipCluster, "skip-cluster", false, "skip the Kubernetes cluster check")
	return cmd
}

func colorHealth(s status.HealthStatus) string {
	switch s {
	case status.Healthy:
		return cli.Green(string(s))
	case status.Degraded:
		return cli.Yellow(string(s))
	case status.Unhealthy:
		return cli.Red(string(s))
	default:
		return cli.Dim(string(s))
	}
}
