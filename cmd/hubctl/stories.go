package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"spectrumhub/db"
	"spectrumhub/models"
	"spectrumhub/services"

	"github.com/spf13/cobra"
)

var pendingLimit int

var storiesCmd = &cobra.Command{
	Use:   "stories",
	Short: "Inspect and seed the story board",
}

var storiesSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the bundled sample stories when the board is nearly empty",
	RunE:  runStoriesSeed,
}

var storiesPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List stories waiting for moderation, oldest first",
	RunE:  runStoriesPending,
}

func init() {
	storiesPendingCmd.Flags().IntVar(&pendingLimit, "limit", services.DefaultPageSize, "Maximum stories to list")
}

func storyService() *services.StoryService {
	return services.NewStoryService(
		db.NewStoryStore(db.MongoDatabase),
		db.NewModerationLogStore(db.MongoDatabase),
		cliLogger(),
	)
}

func runStoriesSeed(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	_, disconnect, err := connect(ctx)
	if err != nil {
		return err
	}
	defer disconnect()

	n, err := storyService().SeedSamples(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Board already has enough stories; nothing seeded")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d sample stories\n", n)
	return nil
}

func runStoriesPending(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	_, disconnect, err := connect(ctx)
	if err != nil {
		return err
	}
	defer disconnect()

	page, err := storyService().ListPending(ctx, 1, pendingLimit)
	if err != nil {
		return err
	}
	return printPending(cmd.OutOrStdout(), page)
}

func printPending(w io.Writer, page *models.ModerationPage) error {
	if len(page.Stories) == 0 {
		_, err := fmt.Fprintln(w, "No stories waiting for moderation")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSUBMITTED\tAUTHOR\tTITLE")
	for _, s := range page.Stories {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID.Hex(), s.CreatedAt.Format(time.DateTime), s.AuthorName, s.Title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d of %d pending\n", len(page.Stories), page.Total)
	return err
}
