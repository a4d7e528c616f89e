package cmd

import (
	"context"
	"fmt"
	"time"

	"siddhaka-portal/internal/wire"
	"siddhaka-portal/pkg/utils"

	"github.com/spf13/cobra"
)

// slotsCmd asks the clinic backend which slots are free, the same query the
// booking dialog runs after a date is picked.
func slotsCmd() *cobra.Command {
	var packageID, date string

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List available time slots for a package on a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !utils.IsValidDate(date) {
				return fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", date)
			}

			config, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, cancel := context.WithTimeout(cmd.Context(), config.Backend.Timeout+5*time.Second)
			defer cancel()

			client := wire.NewBackendClient(config, nil, logger)
			slots, err := client.AvailableSlots(ctx, packageID, date)
			if err != nil {
				return fmt.Errorf("fetch slots: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(slots) == 0 {
				fmt.Fprintln(out, "No available time slots for this date")
				return nil
			}
			for _, slot := range slots {
				fmt.Fprintln(out, slot)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&packageID, "package", "", "package id")
	cmd.Flags().StringVar(&date, "date", "", "date (YYYY-MM-DD)")
	cmd.MarkFlagRequired("package")
	cmd.MarkFlagRequired("date")

	return cmd
}
