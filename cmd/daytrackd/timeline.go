package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"daytrack-backend/internal/aggregate"
	"daytrack-backend/internal/parse"
)

var timelineDate string

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Print the grouped timeline of a day",
	Args:  cobra.NoArgs,
	RunE:  runTimeline,
}

func init() {
	timelineCmd.Flags().StringVar(&timelineDate, "date", "today", "day to show: YYYY-MM-DD, today, yesterday or -Nd")
}

func runTimeline(cmd *cobra.Command, args []string) error {
	logger := log.New(os.Stderr, "daytrack ", log.LstdFlags)
	cfg, err := loadConfig(logger)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	day, err := parse.Day(timelineDate, a.timeline.Now(), a.timeline.Location())
	if err != nil {
		return err
	}
	items, err := aggregate.ForDay(cmd.Context(), a.timeline, day)
	if err != nil {
		return err
	}
	printTimeline(cmd.OutOrStdout(), day, items)
	return nil
}

func printTimeline(w io.Writer, day time.Time, items []aggregate.Item) {
	fmt.Fprintf(w, "%s\n", day.Format("Monday, 2006-01-02"))
	if len(items) == 0 {
		fmt.Fprintln(w, "  nothing tracked")
		return
	}

	var total time.Duration
	for _, item := range items {
		marker := ""
		if item.IsRunning {
			marker = " (running)"
		}
		fmt.Fprintf(w, "  %s-%s  %-10s %8s%s\n",
			item.StartTime.Format("15:04"), item.EndTime.Format("15:04"),
			item.Category, item.Duration.Round(time.Minute), marker)
		total += item.Duration
	}
	fmt.Fprintf(w, "  total %s\n", total.Round(time.Minute))
}
