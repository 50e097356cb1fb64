// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianLADR/services/ladr/topinput"
)

type checkReport struct {
	Path     string
	Err      error
	Lists    int
	Items    int
	Applied  int
	Duration time.Duration
}

func (a *app) checkCmd() *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   "check files...",
		Short: "Interpret each file independently and report failures",
		Long: `Interpret every file on its own, with its own symbol table and options,
and print a pass/fail table. The exit status is 1 if any file fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports := a.check(cmd.Context(), args, jobs)
			a.printReports(reports)
			for _, r := range reports {
				if r.Err != nil {
					return errFailed
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.GOMAXPROCS(0), "files interpreted at once")
	return cmd
}

// check interprets every path concurrently. Reports are in path order.
// One file failing does not stop the others.
func (a *app) check(ctx context.Context, paths []string, jobs int) []checkReport {
	reports := make([]checkReport, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			reports[i] = a.checkOne(gctx, p)
			return nil
		})
	}
	_ = g.Wait()
	return reports
}

func (a *app) checkOne(ctx context.Context, path string) checkReport {
	start := time.Now()
	rep := checkReport{Path: path}
	f, err := os.Open(path)
	if err != nil {
		rep.Err = err
		return rep
	}
	defer f.Close()

	out := a.interpret(ctx, nil, topinput.Source{Name: path, Reader: f})
	rep.Err = out.Err
	rep.Duration = time.Since(start)
	if out.Result != nil {
		rep.Lists = len(out.Result.Lists)
		rep.Applied = out.Result.Directives
		for _, l := range out.Result.Lists {
			rep.Items += l.Len()
		}
	}
	if rep.Err != nil {
		a.logger.Warn("check failed", "file", path, "error", rep.Err.Error())
	}
	return rep
}

func (a *app) printReports(reports []checkReport) {
	st := stylesFor(a.stdout)
	rows := make([][]string, 0, len(reports))
	failed := 0
	for _, r := range reports {
		status := st.OK("ok")
		detail := ""
		if r.Err != nil {
			status = st.Fail("FAIL")
			detail = r.Err.Error()
			failed++
		}
		rows = append(rows, []string{
			r.Path,
			status,
			strconv.Itoa(r.Lists),
			strconv.Itoa(r.Items),
			strconv.Itoa(r.Applied),
			st.Muted(r.Duration.Round(time.Microsecond).String()),
			detail,
		})
	}
	fmt.Fprint(a.stdout, st.Table([]string{"FILE", "STATUS", "LISTS", "ITEMS", "DIRECTIVES", "TIME", "ERROR"}, rows))
	fmt.Fprintf(a.stdout, "%s checked, %d failed\n", plural(len(reports), "file"), failed)
}
