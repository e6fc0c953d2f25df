package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	snapkeep "github.com/JaggerB/rork-snapkeep-organizer"
	"github.com/JaggerB/rork-snapkeep-organizer/classify"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/config"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/logger"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/types"
)

var rootCmd = &cobra.Command{
	Use:   "snapkeep",
	Short: "Save and organize places captured from screenshots",
}

// newClient wires a Client from the environment and primes it from the
// local snapshot cache.
func newClient(ctx context.Context) (*snapkeep.Client, error) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New("snapkeep")
	c, err := snapkeep.FromConfig(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	c.Prime(ctx)
	if err := c.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("remote refresh failed, using cached state")
	}
	return c, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(os.Stdout, string(data))
	return nil
}

func main() {
	ctx := context.Background()

	var title, category, location, notes, imageURI, date string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Save a place by hand",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close()
			saved, err := c.AddItem(ctx, types.SavedItem{
				Title:       title,
				Category:    types.NormalizeCategory(category),
				Location:    location,
				Notes:       notes,
				ImageURI:    imageURI,
				DateTimeISO: date,
			})
			if err != nil {
				return err
			}
			return printJSON(saved)
		},
	}
	addCmd.Flags().StringVarP(&title, "title", "t", "", "Item title (required)")
	addCmd.Flags().StringVarP(&category, "category", "c", "", "Category")
	addCmd.Flags().StringVarP(&location, "location", "l", "", "Free-text location")
	addCmd.Flags().StringVarP(&notes, "notes", "n", "", "Notes")
	addCmd.Flags().StringVarP(&imageURI, "image", "i", "", "Image path or URL (required)")
	addCmd.Flags().StringVarP(&date, "date", "d", "", "Event date (RFC 3339)")
	_ = addCmd.MarkFlagRequired("title")
	_ = addCmd.MarkFlagRequired("image")
	rootCmd.AddCommand(addCmd)

	captureCmd := &cobra.Command{
		Use:   "capture SCREENSHOT",
		Short: "Extract, enrich and save a screenshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close()
			saved, err := c.SaveScreenshot(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(saved)
		},
	}
	rootCmd.AddCommand(captureCmd)

	var bucket string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved items, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close()
			items := c.Items()
			if bucket != "" {
				filtered := items[:0]
				for _, it := range items {
					if string(classify.Classify(it)) == bucket {
						filtered = append(filtered, it)
					}
				}
				items = filtered
			}
			return printJSON(items)
		},
	}
	listCmd.Flags().StringVarP(&bucket, "bucket", "b", "", "Filter by bucket (Do, Buy, Learn)")
	rootCmd.AddCommand(listCmd)

	rmCmd := &cobra.Command{
		Use:   "rm ITEM_ID",
		Short: "Remove a saved item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close()
			return c.RemoveItem(ctx, args[0])
		},
	}
	rootCmd.AddCommand(rmCmd)

	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Resolve coordinates for items missing them",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close()
			c.BackfillCoordinates(ctx)
			return nil
		},
	}
	rootCmd.AddCommand(backfillCmd)

	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Pull the latest items and trips from the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close()
			if err := c.Refresh(ctx); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%d items, %d trips\n", len(c.Items()), len(c.Trips()))
			return nil
		},
	}
	rootCmd.AddCommand(refreshCmd)

	upcomingCmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List dated items still ahead, soonest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close()
			return printJSON(c.Upcoming())
		},
	}
	rootCmd.AddCommand(upcomingCmd)

	statusCmd := &cobra.Command{
		Use:   "status ITEM_ID",
		Short: "Refresh live place status for one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer c.Close()
			it, err := c.RefreshLiveStatus(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(it)
		},
	}
	rootCmd.AddCommand(statusCmd)

	rootCmd.AddCommand(tripsCommand(ctx))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
