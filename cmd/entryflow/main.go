// Command entryflow is the CLI for the entryflow service API: submit
// documents, inspect status and audit history, approve records, correct
// fields, and pull the review-queue export.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	apiBase    string
	jsonOutput bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "entryflow",
		Short: "Contest entry intake and review",
		Long: `Entryflow submits contest entry documents for processing and
manages the human review workflow: status, audit traces, approvals,
manual corrections, and the review-queue export.`,
	}

	rootCmd.PersistentFlags().StringVar(&apiBase, "api", envOr("ENTRYFLOW_API", "http://localhost:8080/api"), "API base URL")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output raw JSON")

	rootCmd.AddCommand(submitCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(traceCmd())
	rootCmd.AddCommand(eventsCmd())
	rootCmd.AddCommand(approveCmd())
	rootCmd.AddCommand(editCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(watchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func submitCmd() *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "submit <file>...",
		Short: "Submit entry documents for processing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(apiBase)

			for _, path := range args {
				raw, status, err := c.submit(cmd.Context(), path, owner)
				if err != nil {
					return err
				}

				if jsonOutput {
					printJSON(raw)
					continue
				}

				switch status {
				case http.StatusCreated:
					fmt.Printf("%s: enqueued (%s)\n", path, field(raw, "id"))
				case http.StatusOK:
					fmt.Printf("%s: duplicate of %s, skipped\n", path, field(raw, "id"))
				default:
					return fmt.Errorf("%s: server returned %d: %s", path, status, raw)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Submitter identity recorded with the document")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id>",
		Short: "Show a submission's current state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, status, err := newClient(apiBase).get(cmd.Context(), "/submissions/"+args[0])
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("server returned %d: %s", status, raw)
			}

			if jsonOutput {
				printJSON(raw)
				return nil
			}

			var sub struct {
				ID          string          `json:"id"`
				Filename    string          `json:"filename"`
				Status      string          `json:"status"`
				DocType     string          `json:"doc_type"`
				NeedsReview bool            `json:"needs_review"`
				ReasonCodes []string        `json:"reason_codes"`
				Fields      map[string]struct {
					Value      string `json:"value"`
					Provenance string `json:"provenance"`
				} `json:"fields"`
			}
			if err := json.Unmarshal(raw, &sub); err != nil {
				return err
			}

			fmt.Printf("%s  %s\n", sub.ID, sub.Filename)
			fmt.Printf("  status: %s  doc_type: %s  needs_review: %v\n", sub.Status, sub.DocType, sub.NeedsReview)
			if len(sub.ReasonCodes) > 0 {
				fmt.Printf("  reasons: %s\n", strings.Join(sub.ReasonCodes, ", "))
			}
			if len(sub.Fields) > 0 {
				fmt.Println("  fields:")
				for key, f := range sub.Fields {
					if f.Provenance == "null" {
						continue
					}
					fmt.Printf("    %s: %s (%s)\n", key, f.Value, f.Provenance)
				}
			}
			return nil
		},
	}
}

func traceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trace <id>",
		Short: "Show processing traces for a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, status, err := newClient(apiBase).get(cmd.Context(), "/submissions/"+args[0]+"/trace")
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("server returned %d: %s", status, raw)
			}
			printJSON(raw)
			return nil
		},
	}
}

func eventsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "events <id>",
		Short: "Show audited actions for a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, status, err := newClient(apiBase).get(cmd.Context(), "/submissions/"+args[0]+"/events")
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("server returned %d: %s", status, raw)
			}
			printJSON(raw)
			return nil
		},
	}
}

func approveCmd() *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a submission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if actor == "" {
				return fmt.Errorf("--actor is required: approvals are attributed to a person")
			}

			raw, status, err := newClient(apiBase).postJSON(
				cmd.Context(),
				"/submissions/"+args[0]+"/approve",
				map[string]string{"actor": actor},
			)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("server returned %d: %s", status, raw)
			}

			if jsonOutput {
				printJSON(raw)
			} else {
				fmt.Printf("approved %s by %s\n", args[0], actor)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "Name of the approving reviewer")
	return cmd
}

func editCmd() *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "edit <id> <key=value>...",
		Short: "Manually correct extracted fields",
		Long: `Edit sets field values with manual provenance. Manual values
survive any later reprocessing of the document.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := make(map[string]string, len(args)-1)
			for _, pair := range args[1:] {
				key, value, ok := strings.Cut(pair, "=")
				if !ok {
					return fmt.Errorf("expected key=value, got %q", pair)
				}
				fields[key] = value
			}

			raw, status, err := newClient(apiBase).putJSON(
				cmd.Context(),
				"/submissions/"+args[0]+"/fields",
				map[string]any{"actor": actor, "fields": fields},
			)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("server returned %d: %s", status, raw)
			}

			if jsonOutput {
				printJSON(raw)
			} else {
				fmt.Printf("updated %d field(s) on %s\n", len(fields), args[0])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "Name of the editing reviewer")
	return cmd
}

func exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the review-queue spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = fmt.Sprintf("review-queue-%s.xlsx", time.Now().Format("20060102-150405"))
			}

			if err := newClient(apiBase).download(cmd.Context(), "/export/review-queue", out); err != nil {
				return err
			}

			fmt.Printf("wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file path")
	return cmd
}

func printJSON(raw json.RawMessage) {
	var buf any
	if err := json.Unmarshal(raw, &buf); err != nil {
		fmt.Println(string(raw))
		return
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(buf)
}

func field(raw json.RawMessage, key string) string {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
