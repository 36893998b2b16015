package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"content-porter/core/importer"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	planExistingAction string
	planJSONOutput     bool
)

// planCmd dry-runs an interchange document against the store.
var planCmd = &cobra.Command{
	Use:   "plan <file>",
	Short: "Reconcile an interchange document against the store without writing",
	Long: `Plan compares an interchange document to the current store contents and
reports what an import would do: which records would be created, updated or
skipped, which exist only in the store, and which fields differ.

Examples:
  # Summary of what an import would change
  content-porter plan export.json

  # Full machine-readable plan
  content-porter plan export.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		application, err := bootstrap(false)
		if err != nil {
			return err
		}
		l := application.logger

		result, err := application.porter.Plan(cmd.Context(), raw, importer.Options{
			ExistingAction: importer.ExistingAction(planExistingAction),
		})
		if err != nil {
			return fmt.Errorf("plan failed: %w", err)
		}
		if len(result.Errors) > 0 {
			for _, verr := range result.Errors {
				l.Error("Payload rejected", zap.String("path", verr.Path), zap.String("message", verr.Message))
			}
			return fmt.Errorf("payload failed validation with %d error(s)", len(result.Errors))
		}

		plan := result.Plan
		if planJSONOutput {
			raw, err := json.MarshalIndent(plan, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(raw))
			return nil
		}

		l.Info("Plan summary",
			zap.Int("total_records", plan.Summary.TotalRecords),
			zap.Int("creates", plan.Summary.Creates),
			zap.Int("updates", plan.Summary.Updates),
			zap.Int("skips", plan.Summary.Skips),
			zap.Int("only_in_store", plan.Summary.OnlyInStore),
			zap.Int("mismatches", plan.Summary.Mismatches),
		)
		return nil
	},
}

func init() {
	planCmd.Flags().StringVar(&planExistingAction, "existing-action", "", "Policy to plan with: warn, update or skip (default warn)")
	planCmd.Flags().BoolVar(&planJSONOutput, "json", false, "Print the full plan as JSON")
	RootCmd.AddCommand(planCmd)
}
