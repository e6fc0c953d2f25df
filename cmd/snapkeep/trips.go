package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/types"
)

func tripsCommand(ctx context.Context) *cobra.Command {
	tripsCmd := &cobra.Command{Use: "trips", Short: "Trip operations"}

	var upcomingOnly, pastOnly bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List trips",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close()
			switch {
			case upcomingOnly:
				return printJSON(c.UpcomingTrips())
			case pastOnly:
				return printJSON(c.PastTrips())
			default:
				return printJSON(c.Trips())
			}
		},
	}
	listCmd.Flags().BoolVar(&upcomingOnly, "upcoming", false, "Only trips that have not ended")
	listCmd.Flags().BoolVar(&pastOnly, "past", false, "Only finished trips")
	tripsCmd.AddCommand(listCmd)

	var name, description, start, end string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a trip",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close()
			trip, err := c.AddTrip(ctx, types.Trip{
				Name:        name,
				Description: description,
				StartDate:   start,
				EndDate:     end,
			})
			if err != nil {
				return err
			}
			return printJSON(trip)
		},
	}
	addCmd.Flags().StringVarP(&name, "name", "n", "", "Trip name (required)")
	addCmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	addCmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	_ = addCmd.MarkFlagRequired("name")
	tripsCmd.AddCommand(addCmd)

	itemsCmd := &cobra.Command{
		Use:   "items TRIP_ID",
		Short: "List the items attached to a trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close()
			return printJSON(c.TripItems(args[0]))
		},
	}
	tripsCmd.AddCommand(itemsCmd)

	rmCmd := &cobra.Command{
		Use:   "rm TRIP_ID",
		Short: "Delete a trip (items keep their reference)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close()
			return c.RemoveTrip(ctx, args[0])
		},
	}
	tripsCmd.AddCommand(rmCmd)

	return tripsCmd
}
