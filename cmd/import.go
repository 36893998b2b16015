package cmd

import (
	"fmt"
	"os"

	"content-porter/core/importer"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importContentType     string
	importFormat          string
	importExistingAction  string
	importIgnoreMissing   bool
	importAllowLocales    bool
	importDisallowNewRels bool
)

// importCmd applies an interchange document to the store.
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import an interchange document",
	Long: `Import an interchange document into the content store.

Records are matched by their natural-identifier values; published versions
are applied before drafts. Per-record failures are reported but do not
abort the run.

Examples:
  # Import, warning on records that already exist
  content-porter import export.json

  # Overwrite existing records
  content-porter import export.json --existing-action update

  # Keep going when relation targets are missing
  content-porter import export.json --ignore-missing-relations`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		application, err := bootstrap(true)
		if err != nil {
			return err
		}
		l := application.logger

		result, err := application.porter.Import(cmd.Context(), raw, importer.Options{
			ContentType:            importContentType,
			Format:                 importFormat,
			ExistingAction:         importer.ExistingAction(importExistingAction),
			IgnoreMissingRelations: importIgnoreMissing,
			AllowLocaleUpdates:     importAllowLocales,
			DisallowNewRelations:   importDisallowNewRels,
		})
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		if len(result.Errors) > 0 {
			for _, verr := range result.Errors {
				l.Error("Payload rejected", zap.String("path", verr.Path), zap.String("message", verr.Message))
			}
			return fmt.Errorf("payload failed validation with %d error(s)", len(result.Errors))
		}

		for _, failure := range result.Failures {
			l.Warn("Record failure", zap.String("path", failure.Path), zap.String("error", failure.Error))
		}
		l.Info("Import finished",
			zap.Int("created", result.Created),
			zap.Int("updated", result.Updated),
			zap.Int("skipped", result.Skipped),
			zap.Int("failures", len(result.Failures)),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importContentType, "content-type", "", "Restrict the import to one content type from the payload")
	importCmd.Flags().StringVar(&importFormat, "format", "", "Payload format (default json)")
	importCmd.Flags().StringVar(&importExistingAction, "existing-action", "", "Policy for existing records: warn, update or skip (default warn)")
	importCmd.Flags().BoolVar(&importIgnoreMissing, "ignore-missing-relations", false, "Null unresolvable relations instead of failing the record")
	importCmd.Flags().BoolVar(&importAllowLocales, "allow-locale-updates", false, "Add new locale variants to otherwise skipped records")
	importCmd.Flags().BoolVar(&importDisallowNewRels, "disallow-new-relations", false, "Do not wire existing records to records first created by this run")
	RootCmd.AddCommand(importCmd)
}
