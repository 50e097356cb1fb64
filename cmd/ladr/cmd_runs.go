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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianLADR/services/ladr/storage/badger"
)

func (a *app) runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse runs saved with read --store",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(s *badger.RunStore) error {
				runs, err := s.List(cmd.Context())
				if err != nil {
					return err
				}
				a.printRuns(runs)
				return nil
			})
		},
	}

	var asJSON bool
	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a stored run; any unique ID prefix works",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(s *badger.RunStore) error {
				run, err := s.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(a.stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(run)
				}
				a.printRun(run)
				return nil
			})
		},
	}
	show.Flags().BoolVar(&asJSON, "json", false, "print the stored record as JSON")

	rm := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(s *badger.RunStore) error {
				run, err := s.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := s.Delete(cmd.Context(), run.ID); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "deleted run %s\n", run.ID)
				return nil
			})
		},
	}

	cmd.AddCommand(list, show, rm)
	return cmd
}

func (a *app) withStore(_ context.Context, fn func(*badger.RunStore) error) error {
	db, err := badger.Open(a.cfg.StoreSettings())
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer db.Close()
	return fn(badger.NewRunStore(db))
}

func (a *app) printRuns(runs []*badger.Run) {
	st := stylesFor(a.stdout)
	if len(runs) == 0 {
		fmt.Fprintln(a.stdout, st.Muted("no stored runs"))
		return
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := st.OK("ok")
		if r.Error != "" {
			status = st.Fail("FAIL")
		}
		items := 0
		for _, l := range r.Lists {
			items += len(l.Items)
		}
		rows = append(rows, []string{
			shortID(r.ID),
			r.Created.Local().Format(time.DateTime),
			status,
			strconv.Itoa(len(r.Lists)),
			strconv.Itoa(items),
			strings.Join(r.Streams, ","),
		})
	}
	fmt.Fprint(a.stdout, st.Table([]string{"ID", "CREATED", "STATUS", "LISTS", "ITEMS", "STREAMS"}, rows))
}

func (a *app) printRun(r *badger.Run) {
	st := stylesFor(a.stdout)
	w := a.stdout
	fmt.Fprintf(w, "%s %s\n", st.Title("run"), r.ID)
	fmt.Fprintf(w, "created:    %s\n", r.Created.Local().Format(time.RFC3339))
	fmt.Fprintf(w, "streams:    %s\n", strings.Join(r.Streams, ", "))
	fmt.Fprintf(w, "directives: %d\n", r.Directives)
	if r.Error != "" {
		fmt.Fprintf(w, "error:      %s\n", st.Fail(r.Error))
	}

	if changed := r.Options.Directives(); len(changed) > 0 {
		fmt.Fprintf(w, "\n%s\n", st.Muted("% options"))
		for _, d := range changed {
			fmt.Fprintln(w, d)
		}
	}
	for _, l := range r.Lists {
		opener := "formulas"
		if l.Kind == "terms" {
			opener = "list"
		}
		fmt.Fprintf(w, "\n%s(%s).\n", opener, l.Name)
		for _, item := range l.Items {
			fmt.Fprintf(w, "%s.\n", item)
		}
		fmt.Fprintln(w, "end_of_list.")
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
