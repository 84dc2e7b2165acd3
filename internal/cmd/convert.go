package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Plan and run XLIFF 2.0 -> JLIFF conversions for a project",
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.AddCommand(convertPlanCmd)
	convertCmd.AddCommand(convertRunCmd)
	convertCmd.AddCommand(convertOneCmd)

	convertRunCmd.Flags().String("operator", "", "name recorded as the conversion's operator")
	convertOneCmd.Flags().String("operator", "", "name recorded as the conversion's operator")
}

var convertPlanCmd = &cobra.Command{
	Use:   "plan PROJECT_ID",
	Short: "Print the conversions a project still needs (without running them)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, db, err := openService(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid project id: %w", err)
		}

		tasks, err := svc.BuildConversionsPlan(context.Background(), id)
		if err != nil {
			return reportErr(err)
		}
		if len(tasks) == 0 {
			fmt.Println("nothing to convert")
			return nil
		}
		for _, t := range tasks {
			fmt.Printf("%s  %s -> %s  %s\n", t.ConversionID, t.SrcLang, t.TrgLang, t.OutputAbsPath)
		}
		return nil
	},
}

var convertRunCmd = &cobra.Command{
	Use:   "run PROJECT_ID",
	Short: "Build and execute the conversions plan for a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, db, err := openService(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid project id: %w", err)
		}
		operator, _ := cmd.Flags().GetString("operator")

		ctx := context.Background()
		tasks, err := svc.BuildConversionsPlan(ctx, id)
		if err != nil {
			return reportErr(err)
		}
		if len(tasks) == 0 {
			fmt.Println("nothing to convert")
			return nil
		}

		outcomes, err := svc.ExecuteConversionsPlan(ctx, id, tasks, operator)
		if err != nil {
			return reportErr(err)
		}
		for _, o := range outcomes {
			if o.Converted {
				fmt.Printf("%s  converted\n", o.ConversionID)
				continue
			}
			fmt.Printf("%s  pending: %v\n", o.ConversionID, o.Err)
		}
		return nil
	},
}

var convertOneCmd = &cobra.Command{
	Use:   "one PROJECT_ID CONVERSION_ID XLIFF_PATH",
	Short: "Convert one already-extracted XLIFF file to JLIFF",
	Args:  cobra.ExactArgs(3),
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
		conversionID, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid conversion id: %w", err)
		}
		operator, _ := cmd.Flags().GetString("operator")

		result, err := svc.ConvertXLIFFToJLIFF(context.Background(), projectID, conversionID, args[2], operator)
		if err != nil {
			return reportErr(err)
		}
		fmt.Printf("jliff:   %s\n", result.JLIFFAbsPath)
		fmt.Printf("tag map: %s\n", result.TagMapAbsPath)
		return nil
	},
}
