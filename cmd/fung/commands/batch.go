package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/gofung/expr"
	"github.com/njchilds90/gofung/internal/service"
)

type batchResult struct {
	File     string               `json:"file"`
	Response service.ToolResponse `json:"response"`
}

func newBatchCommand(e *env) *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:   "batch FILE...",
		Short: "Run tool requests from several files concurrently",
		Long: `Run one tool request per file. Each file holds a document with the
fields "tool" and "params", as accepted by POST /tool of fung-server.
Results are printed in the order of the arguments.`,
		Example: `  fung batch requests/*.yaml --jobs 4`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jobs <= 0 {
				jobs = e.cfg.Batch.Workers
			}
			if jobs <= 0 {
				jobs = runtime.GOMAXPROCS(0)
			}
			results, err := runBatch(cmd, e.svc, args, jobs)
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if r.Response.Error != "" {
					failed++
				}
			}
			e.log.Info().Int("requests", len(results)).Int("failed", failed).Int("jobs", jobs).Msg("batch done")

			if e.jsonOutput {
				if err := printJSON(cmd.OutOrStdout(), results); err != nil {
					return err
				}
			} else {
				for _, r := range results {
					if r.Response.Error != "" {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: error: %s\n", r.File, r.Response.Error)
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", r.File, summary(r.Response))
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d requests failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "concurrent requests (default from config, else one per CPU)")
	return cmd
}

// runBatch handles every file on its own goroutine. Request failures are
// kept in the results; only cancellation aborts the batch.
func runBatch(cmd *cobra.Command, svc *service.Service, files []string, jobs int) ([]batchResult, error) {
	results := make([]batchResult, len(files))
	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i].File = path
			req, err := loadRequest(path)
			if err != nil {
				results[i].Response = service.ToolResponse{Error: err.Error()}
				return nil
			}
			results[i].Response = svc.Handle(gctx, req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func loadRequest(path string) (service.ToolRequest, error) {
	doc, err := expr.LoadFile(path)
	if err != nil {
		return service.ToolRequest{}, err
	}
	tool, _ := doc["tool"].(string)
	req := service.ToolRequest{Tool: tool}
	if p, ok := doc["params"]; ok {
		params, ok := p.(map[string]any)
		if !ok {
			return service.ToolRequest{}, fmt.Errorf("%s: params must be an object", path)
		}
		req.Params = params
	}
	return req, nil
}

func summary(r service.ToolResponse) string {
	if res, ok := r.Result.(*service.Result); ok {
		if res.Order == 0 {
			return fmt.Sprintf("%s = %s", res.Expression, res.Value)
		}
		return fmt.Sprintf("%s = %s, d%d = %s", res.Expression, res.Value, res.Order, res.Derivative)
	}
	if r.String != "" {
		return r.String
	}
	return fmt.Sprint(r.Result)
}
