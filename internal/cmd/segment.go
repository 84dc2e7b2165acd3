package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var segmentCmd = &cobra.Command{
	Use:   "segment",
	Short: "Edit segments inside an already-converted JLIFF document",
}

func init() {
	rootCmd.AddCommand(segmentCmd)
	segmentCmd.AddCommand(segmentUpdateCmd)
}

var segmentUpdateCmd = &cobra.Command{
	Use:   "update PROJECT_ID JLIFF_REL_PATH TRANS_UNIT_ID NEW_TARGET",
	Short: "Rewrite every translation unit matching TRANS_UNIT_ID with NEW_TARGET",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, db, err := openService(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		projectID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid project id: %w", err)
		}

		ctx := context.Background()
		details, err := svc.GetProjectDetails(ctx, projectID)
		if err != nil {
			return reportErr(err)
		}

		result, err := svc.UpdateSegment(&details.Project, args[1], args[2], args[3])
		if err != nil {
			return reportErr(err)
		}
		fmt.Printf("updated %d translation unit(s) at %s\n", result.UpdatedCount, result.UpdatedAt)
		return nil
	},
}
