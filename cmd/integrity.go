package cmd

import (
	"encoding/json"
	"fmt"

	"content-porter/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixBucketFlag bool

// integrityCmd runs the infrastructure checks from the command line.
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check identifier configuration, store tables and the media bucket",
	Long: `Runs the same checks as the /integrity HTTP endpoints: identifier
configuration per content type, the porter store tables, and the media
bucket in object storage.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := bootstrap(true)
		if err != nil {
			return err
		}
		l := application.logger

		svc := integrity.NewService(application.registry, application.objects,
			application.cfg.Storage.Bucket, application.db, l)

		failed := false

		problems := svc.CheckIdentifiers()
		if len(problems) > 0 {
			failed = true
			raw, _ := json.Marshal(problems)
			l.Warn("Identifier misconfigurations detected", zap.ByteString("problems", raw))
		} else {
			l.Info("Identifier configuration ok")
		}

		missing, err := svc.CheckStore()
		if err != nil {
			return fmt.Errorf("store check failed: %w", err)
		}
		if len(missing) > 0 {
			failed = true
			l.Warn("Store tables incomplete", zap.Any("missing", missing))
		} else {
			l.Info("Store tables ok")
		}

		if application.objects == nil {
			l.Warn("Object storage unavailable, skipping bucket check")
		} else {
			exists, err := svc.CheckBucket(cmd.Context())
			if err != nil {
				return fmt.Errorf("bucket check failed: %w", err)
			}
			if !exists && fixBucketFlag {
				if err := svc.FixBucket(cmd.Context()); err != nil {
					return fmt.Errorf("failed to create bucket: %w", err)
				}
				exists = true
			}
			if exists {
				l.Info("Media bucket ok", zap.String("bucket", application.cfg.Storage.Bucket))
			} else {
				failed = true
				l.Warn("Media bucket missing", zap.String("bucket", application.cfg.Storage.Bucket))
			}
		}

		if failed {
			return fmt.Errorf("integrity checks reported problems")
		}
		return nil
	},
}

func init() {
	integrityCmd.Flags().BoolVar(&fixBucketFlag, "fix", false, "Create the media bucket when missing")
	RootCmd.AddCommand(integrityCmd)
}
