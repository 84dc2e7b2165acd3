package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wegentic/translator-core/internal/model"
	"github.com/wegentic/translator-core/internal/project"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Create, inspect, and mutate translation projects",
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectAddFilesCmd)
	projectCmd.AddCommand(projectRemoveFileCmd)
	projectCmd.AddCommand(projectDeleteCmd)

	projectCreateCmd.Flags().String("type", string(model.ProjectTypeTranslation), "project type: translation|rag")
	projectCreateCmd.Flags().String("owner", "", "owner user id (uuid, generated if omitted)")
	projectCreateCmd.Flags().String("src", "", "default source language tag")
	projectCreateCmd.Flags().String("trg", "", "default target language tag")
	projectCreateCmd.Flags().StringArray("file", nil, "path to a file to import (repeatable)")

	projectAddFilesCmd.Flags().StringArray("file", nil, "path to a file to import (repeatable)")
}

var projectCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a new project and import its initial files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, db, err := openService(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		typeFlag, _ := cmd.Flags().GetString("type")
		projectType, err := model.ParseProjectType(typeFlag)
		if err != nil {
			return err
		}

		ownerFlag, _ := cmd.Flags().GetString("owner")
		owner := uuid.New()
		if ownerFlag != "" {
			owner, err = uuid.Parse(ownerFlag)
			if err != nil {
				return fmt.Errorf("invalid --owner: %w", err)
			}
		}

		src, _ := cmd.Flags().GetString("src")
		trg, _ := cmd.Flags().GetString("trg")
		files, _ := cmd.Flags().GetStringArray("file")

		staged := make([]project.StagedFile, 0, len(files))
		for _, f := range files {
			staged = append(staged, project.StagedFile{AbsPath: f, Role: model.FileRoleSource})
		}

		result, err := svc.CreateProject(context.Background(), args[0], projectType, owner, src, trg, staged)
		if err != nil {
			return reportErr(err)
		}

		fmt.Printf("created project %s (%s)\n", result.ProjectID, result.Slug)
		fmt.Printf("  folder: %s\n", result.Folder)
		fmt.Printf("  files:  %d\n", result.FileCount)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every project",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, db, err := openService(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		projects, err := svc.ListProjects(context.Background())
		if err != nil {
			return reportErr(err)
		}
		if len(projects) == 0 {
			fmt.Println("no projects")
			return nil
		}
		for _, p := range projects {
			fmt.Printf("%s  %-30s  %-12s  %-10s  %s\n", p.ID, p.Name, p.ProjectType, p.LifecycleStatus, p.RootPath)
		}
		return nil
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show PROJECT_ID",
	Short: "Show a project's files, language pairs, and file targets",
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

		details, err := svc.GetProjectDetails(context.Background(), id)
		if err != nil {
			return reportErr(err)
		}

		p := details.Project
		fmt.Printf("%s (%s)\n", p.Name, p.ID)
		fmt.Printf("  type:     %s\n", p.ProjectType)
		fmt.Printf("  status:   %s / %s\n", p.Status, p.LifecycleStatus)
		fmt.Printf("  root:     %s\n", p.RootPath)
		fmt.Println("  files:")
		for _, f := range details.Files {
			size := "unknown size"
			if f.SizeBytes != nil {
				size = humanize.Bytes(uint64(*f.SizeBytes))
			}
			fmt.Printf("    %s  %-30s  %-10s  %-10s  %s\n", f.ID, f.OriginalName, f.Role, f.ImportStatus, size)
			for _, t := range details.FileTargets[f.ID] {
				fmt.Printf("      target %s  %s\n", t.FileTargetID, t.Status)
			}
		}
		fmt.Println("  language pairs:")
		for _, lp := range details.LanguagePairs {
			fmt.Printf("    %s -> %s\n", lp.SrcLang, lp.TrgLang)
		}
		return nil
	},
}

var projectAddFilesCmd = &cobra.Command{
	Use:   "add-files PROJECT_ID",
	Short: "Import additional files into an existing project",
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

		files, _ := cmd.Flags().GetStringArray("file")
		staged := make([]project.StagedFile, 0, len(files))
		for _, f := range files {
			staged = append(staged, project.StagedFile{AbsPath: f, Role: model.FileRoleSource})
		}

		added, err := svc.AddFilesToProject(context.Background(), id, staged)
		if err != nil {
			return reportErr(err)
		}
		fmt.Printf("added %d file(s)\n", len(added))
		for _, f := range added {
			fmt.Printf("  %s  %s\n", f.ID, f.OriginalName)
		}
		return nil
	},
}

var projectRemoveFileCmd = &cobra.Command{
	Use:   "remove-file PROJECT_ID FILE_ID",
	Short: "Remove one file (and its legacy-plane artifacts) from a project",
	Args:  cobra.ExactArgs(2),
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
		fileID, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid file id: %w", err)
		}

		if err := svc.RemoveProjectFile(context.Background(), projectID, fileID); err != nil {
			return reportErr(err)
		}
		fmt.Println("removed")
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete PROJECT_ID",
	Short: "Delete a project and its directory tree",
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

		if err := svc.DeleteProject(context.Background(), id); err != nil {
			return reportErr(err)
		}
		fmt.Println("deleted")
		return nil
	},
}
