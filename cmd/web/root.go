package main

import (
	"github.com/spf13/cobra"
)

const serviceName = "folio-web"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "web",
		Short:        "Server-rendered site backed by a headless content API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	cmd.AddCommand(serveCmd(), checkCmd())
	return cmd
}
