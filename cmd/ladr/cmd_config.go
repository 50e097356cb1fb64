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
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianLADR/cmd/ladr/config"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect the ladr config file",
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file holding the defaults",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := a.configPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				path = config.DefaultPath()
			}
			if err := config.WriteDefault(path); err != nil {
				if errors.Is(err, os.ErrExist) {
					return fmt.Errorf("%s already exists", path)
				}
				return err
			}
			fmt.Fprintf(a.stdout, "wrote %s\n", path)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after env and flag overrides",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			data, err := config.Marshal(a.cfg)
			if err != nil {
				return err
			}
			_, err = a.stdout.Write(data)
			return err
		},
	}

	cmd.AddCommand(initCmd, show)
	return cmd
}
