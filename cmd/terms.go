/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/termitran/internal"
)

var termsTarget string

var termsCmd = &cobra.Command{
	Use:   "terms",
	Short: "Inspect and extend the terminology database",
}

var termsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all terms for a language pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadApp()
		if err != nil {
			return err
		}
		defer logger.Sync()

		store := newTerminologyStore(cfg, logger)
		terms := store.Load(context.Background(), termsTarget)

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		for _, t := range terms {
			fmt.Fprintf(w, "%s\t%s\n", t.Original, t.Translation)
		}
		w.Flush()
		fmt.Fprintf(os.Stderr, "%d terms\n", len(terms))
		return nil
	},
}

var termsQueryCmd = &cobra.Command{
	Use:   "query <term>",
	Short: "Look up a single term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadApp()
		if err != nil {
			return err
		}
		defer logger.Sync()

		store := newTerminologyStore(cfg, logger)
		term := store.Query(context.Background(), args[0], termsTarget)
		if term == nil {
			fmt.Printf("No translation found for %q\n", args[0])
			return nil
		}
		fmt.Printf("%s\t%s\n", term.Original, term.Translation)
		return nil
	},
}

var termsAddCmd = &cobra.Command{
	Use:   "add <original> <translation>",
	Short: "Add a term to the terminology database",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadApp()
		if err != nil {
			return err
		}
		defer logger.Sync()

		store := newTerminologyStore(cfg, logger)
		result := store.Add(context.Background(), []internal.Term{
			{Original: args[0], Translation: args[1], Confirmed: true},
		}, termsTarget)

		if result.SavedRemotely {
			fmt.Printf("Added %q → %q (saved to knowledge base)\n", args[0], args[1])
		} else {
			fmt.Printf("Added %q → %q (cache only: %s)\n", args[0], args[1], result.Reason)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(termsCmd)
	termsCmd.AddCommand(termsListCmd, termsQueryCmd, termsAddCmd)

	termsCmd.PersistentFlags().StringVarP(&termsTarget, "target", "t", "EN", "Target language code")
}
