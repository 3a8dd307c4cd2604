package main

import (
	"github.com/spf13/cobra"
)

func init() {
	createSessionCmd.Flags().StringVar(&createTitle, "title", "", "session title")
	createSessionCmd.Flags().Int64Var(&createDuration, "duration", 0, "session duration in seconds")
	createSessionCmd.Flags().StringSliceVar(&createCandidates, "candidate", nil, "candidate name (repeatable)")
	_ = createSessionCmd.MarkFlagRequired("title")
	_ = createSessionCmd.MarkFlagRequired("duration")
	_ = createSessionCmd.MarkFlagRequired("candidate")

	rootCmd.AddCommand(createSessionCmd)
	rootCmd.AddCommand(endSessionCmd)
	rootCmd.AddCommand(authorizeCmd)
}

var (
	createTitle      string
	createDuration   int64
	createCandidates []string
)

var createSessionCmd = &cobra.Command{
	Use:   "create-session",
	Short: "Create a new voting session (admin only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := callAPI("POST", "/v1/election/sessions", map[string]any{
			"title":            createTitle,
			"duration_seconds": createDuration,
			"candidate_names":  createCandidates,
		})
		if err != nil {
			return err
		}
		return printJSON(raw)
	},
}

var endSessionCmd = &cobra.Command{
	Use:   "end-session",
	Short: "End the active voting session (admin only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := callAPI("POST", "/v1/election/sessions/current/end", nil)
		if err != nil {
			return err
		}
		return printJSON(raw)
	},
}

var authorizeCmd = &cobra.Command{
	Use:   "authorize <address>...",
	Short: "Authorize one or more voters (admin only)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := callAPI("POST", "/v1/election/voters/batch", map[string]any{
			"addresses": args,
		})
		if err != nil {
			return err
		}
		return printJSON(raw)
	},
}
