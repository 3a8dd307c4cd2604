package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(voteCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(candidatesCmd)
	rootCmd.AddCommand(infoCmd)
	eventsCmd.Flags().Uint64Var(&eventsAfterSeq, "after-seq", 0, "return only events after this sequence number")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 0, "maximum number of events to return")
	rootCmd.AddCommand(eventsCmd)
}

var voteCmd = &cobra.Command{
	Use:   "vote <candidate-id>",
	Short: "Cast a vote for a candidate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		candidateID, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("candidate id must be a positive integer: %q", args[0])
		}
		raw, err := callAPI("POST", "/v1/election/votes", map[string]any{
			"candidate_id": candidateID,
		})
		if err != nil {
			return err
		}
		return printJSON(raw)
	},
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Show the current election result",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := callAPI("GET", "/v1/election/results", nil)
		if err != nil {
			return err
		}
		return printJSON(raw)
	},
}

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "List the current candidate slate",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := callAPI("GET", "/v1/election/candidates", nil)
		if err != nil {
			return err
		}
		return printJSON(raw)
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the current session, personalized for the caller",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := callAPI("GET", "/v1/election/session", nil)
		if err != nil {
			return err
		}
		return printJSON(raw)
	},
}

var (
	eventsAfterSeq uint64
	eventsLimit    int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recorded election events",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/v1/election/events"
		sep := "?"
		if eventsAfterSeq > 0 {
			path += fmt.Sprintf("%safter_seq=%d", sep, eventsAfterSeq)
			sep = "&"
		}
		if eventsLimit > 0 {
			path += fmt.Sprintf("%slimit=%d", sep, eventsLimit)
		}
		raw, err := callAPI("GET", path, nil)
		if err != nil {
			return err
		}
		return printJSON(raw)
	},
}
