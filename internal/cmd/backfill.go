package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wegentic/translator-core/internal/backfill"
	"github.com/wegentic/translator-core/internal/store"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Reconcile the legacy Conversion plane and on-disk artifacts into the FileTarget/Artifact plane",
}

func init() {
	rootCmd.AddCommand(backfillCmd)
	backfillCmd.AddCommand(backfillDiskCmd)
	backfillCmd.AddCommand(backfillLegacyCmd)

	backfillDiskCmd.Flags().Int("concurrency", backfill.DefaultConcurrency, "number of projects scanned in parallel")
	backfillLegacyCmd.Flags().Int("concurrency", backfill.DefaultConcurrency, "worker concurrency (the legacy pass bridges projects one at a time, so this has no effect on it)")
}

func parseProjectIDs(args []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(args))
	for _, a := range args {
		id, err := uuid.Parse(a)
		if err != nil {
			return nil, fmt.Errorf("invalid project id %q: %w", a, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

var backfillDiskCmd = &cobra.Command{
	Use:   "disk [PROJECT_ID ...]",
	Short: "Register legacy on-disk XLIFF/JLIFF artifacts that predate the Artifact table, for every project if none are named",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openService(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		ids, err := parseProjectIDs(args)
		if err != nil {
			return err
		}
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		worker := backfill.NewWorker(store.New(db), concurrency)
		outcome, err := worker.BackfillArtifactsFromDisk(context.Background(), ids)
		if err != nil {
			return reportErr(err)
		}

		fmt.Printf("projects scanned:   %d\n", outcome.ProjectsScanned)
		fmt.Printf("xliff registered:   %d\n", outcome.XLIFFRegistered)
		fmt.Printf("jliff registered:   %d\n", outcome.JLIFFRegistered)
		fmt.Printf("already indexed:    %d\n", outcome.AlreadyIndexed)
		fmt.Printf("skipped:            %d\n", outcome.Skipped)
		fmt.Printf("checksum failures:  %d\n", outcome.ChecksumFailures)
		return nil
	},
}

var backfillLegacyCmd = &cobra.Command{
	Use:   "legacy [PROJECT_ID ...]",
	Short: "Bridge legacy Conversion rows into LanguagePair/FileTarget/Artifact rows, for every project if none are named",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openService(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		ids, err := parseProjectIDs(args)
		if err != nil {
			return err
		}
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		worker := backfill.NewWorker(store.New(db), concurrency)
		outcome, err := worker.BackfillFileTargetsFromLegacy(context.Background(), ids)
		if err != nil {
			return reportErr(err)
		}

		fmt.Printf("conversions scanned: %d\n", outcome.Scanned)
		fmt.Printf("conversions bridged: %d\n", outcome.Bridged)
		fmt.Printf("new language pairs: %d\n", outcome.NewPairs)
		fmt.Printf("new file targets:   %d\n", outcome.NewTargets)
		fmt.Printf("status updates:      %d\n", outcome.StatusUpdates)
		fmt.Printf("xliff artifact upserts: %d\n", outcome.XLIFFUpserts)
		fmt.Printf("jliff artifact upserts: %d\n", outcome.JLIFFUpserts)
		return nil
	},
}
