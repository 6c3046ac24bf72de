package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/folio-studio/folio-web/config"
	"github.com/folio-studio/folio-web/internal/bootstrap"
	"github.com/folio-studio/folio-web/internal/content"
	"github.com/folio-studio/folio-web/internal/logging"
	"github.com/folio-studio/folio-web/internal/viewmodel"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Fetch content once and report on the ordering documents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func runCheck(ctx context.Context, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	client, _, err := bootstrap.OpenContent(cfg, nil, logger)
	if err != nil {
		return err
	}

	api, err := client.Connect(ctx)
	if err != nil {
		return err
	}
	resp, err := api.Query(ctx, "", content.QueryOptions{})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return err
	}
	std, err := viewmodel.NewBuilder(cfg.App.Analytics, logger).Build(req, resp.Results)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "ref       %s\n", api.Ref)
	fmt.Fprintf(out, "entries   %d of %d\n", len(resp.Results), resp.TotalResultsSize)
	fmt.Fprintf(out, "projects  %d (%d unresolved)\n", len(std.Projects), countNil(std.Projects))
	fmt.Fprintf(out, "posts     %d (%d unresolved)\n", len(std.Posts), countNil(std.Posts))
	if resp.TotalResultsSize > len(resp.Results) {
		fmt.Fprintf(out, "warning: only the first %d entries are fetched\n", len(resp.Results))
	}
	return nil
}

func countNil(list []*content.Entry) int {
	n := 0
	for _, e := range list {
		if e == nil {
			n++
		}
	}
	return n
}
