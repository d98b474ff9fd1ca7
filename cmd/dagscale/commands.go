package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ZanzyTHEbar/dagscale/internal/domain"
	"github.com/ZanzyTHEbar/dagscale/internal/plan"
	"github.com/ZanzyTHEbar/dagscale/internal/qty"
	"github.com/ZanzyTHEbar/dagscale/internal/utils"
)

func (a *app) orderCmd() *cobra.Command {
	var byPriority, asJSON bool
	cmd := &cobra.Command{
		Use:   "order <plan>",
		Short: "Print the tasks of a plan in dependency order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.load(args[0])
			if err != nil {
				return err
			}

			var ids []string
			err = b.View(func(inner *plan.Block) error {
				var less func(x, y domain.NodeHandle) bool
				if byPriority {
					less = func(x, y domain.NodeHandle) bool {
						tx, _ := inner.Task(x)
						ty, _ := inner.Task(y)
						return tx.Priority() > ty.Priority()
					}
				}
				order, err := inner.TopoOrderFunc(less)
				if err != nil {
					return err
				}
				ids = make([]string, len(order))
				for i, h := range order {
					ids[i], _ = inner.IDOf(h)
				}
				return nil
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if err := json.MarshalWrite(out, ids); err != nil {
					return err
				}
				_, err := fmt.Fprintln(out)
				return err
			}
			for i, id := range ids {
				t, _ := b.TaskByID(id)
				fmt.Fprintf(out, "%3d. %s (%s)\n", i+1, id, t.Name())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&byPriority, "by-priority", false, "Among ready tasks, emit higher priorities first")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the order as a JSON array")
	return cmd
}

func (a *app) criticalPathCmd() *cobra.Command {
	var unit string
	cmd := &cobra.Command{
		Use:     "critical-path <plan>",
		Aliases: []string{"cp"},
		Short:   "Print the longest chain of dependent tasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.load(args[0])
			if err != nil {
				return err
			}
			total, path, err := b.CriticalPath()
			if err != nil {
				return err
			}
			return printCriticalPath(cmd.OutOrStdout(), total, path, a.unit(unit))
		},
	}
	cmd.Flags().StringVar(&unit, "unit", "", "Time unit for the total (defaults to report.unit)")
	return cmd
}

func printCriticalPath(w io.Writer, total qty.Quantity[qty.Second], path []string, unit string) error {
	u, ok := qty.Lookup(unit)
	if !ok {
		return fmt.Errorf("%w: %q", qty.ErrUnknownUnit, unit)
	}
	in, err := total.Measure().In(u)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "total: %s (%s)\n", in, utils.FormatSeconds(total))
	fmt.Fprintf(w, "path:  %s\n", strings.Join(path, " -> "))
	return nil
}

func (a *app) analyzeCmd() *cobra.Command {
	var unit, outDir string
	var parallel int
	cmd := &cobra.Command{
		Use:   "analyze <plan>...",
		Short: "Write a JSON critical path report for each plan",
		Long: `analyze loads every plan concurrently and writes one report per plan: the
order, the critical path, roots, leaves, waves and the earliest/latest
schedule and slack of every task. Plans with a horizon also get the window
metrics of every task: earliest start, deadline and flexibility.

Reports go to standard output, or to <out>/<plan name>.report.json with --out.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports := make([]*plan.Report, len(args))

			g, ctx := errgroup.WithContext(cmd.Context())
			if parallel > 0 {
				g.SetLimit(parallel)
			}
			for i, path := range args {
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					r, err := a.report(path, a.unit(unit))
					if err != nil {
						return err
					}
					reports[i] = r
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if outDir == "" {
				return writeReports(cmd.OutOrStdout(), reports)
			}
			if err := utils.CreateDirIfNotExists(outDir); err != nil {
				return err
			}
			for _, r := range reports {
				name := strings.TrimSuffix(filepath.Base(r.Source), filepath.Ext(r.Source)) + ".report.json"
				if err := writeReportFile(filepath.Join(outDir, name), r); err != nil {
					return err
				}
				log.Info().Str("plan", r.Source).Str("report", name).Msg("report written")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&unit, "unit", "", "Time unit for the report (defaults to report.unit)")
	cmd.Flags().StringVar(&outDir, "out", "", "Directory to write reports into")
	cmd.Flags().IntVar(&parallel, "parallel", 4, "Maximum plans analysed at once")
	return cmd
}

func (a *app) report(path, unit string) (*plan.Report, error) {
	b, f, err := a.loadFile(path)
	if err != nil {
		return nil, err
	}
	opts, err := f.ReportOptions()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var r *plan.Report
	err = b.View(func(inner *plan.Block) error {
		var viewErr error
		r, viewErr = plan.NewReport(inner, unit, opts...)
		return viewErr
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.Source = path
	return r, nil
}

// writeReports writes one report as an object and several as an array.
func writeReports(w io.Writer, reports []*plan.Report) error {
	if len(reports) == 1 {
		return reports[0].Encode(w)
	}
	if err := json.MarshalWrite(w, reports, jsontext.WithIndent("  ")); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func writeReportFile(path string, r *plan.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
