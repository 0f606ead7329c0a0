package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"ideaspark/internal/journal"
)

func newKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "key [owner-uuid]",
		Short: "Print the journal key derived for an owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid owner id: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), journal.Derive(owner))
			return nil
		},
	}
}
