package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wegentic/translator-core/internal/model"
	"github.com/wegentic/translator-core/internal/project"
)

// seedDemoFiles are written to a temporary staging directory and imported as
// the demo project's initial files, standing in for the sample .docx/.html
// fixtures the original's seed_demo_project binary ships alongside itself.
var seedDemoFiles = map[string]string{
	"welcome.html": "<html><body><p>Welcome to the translation workbench.</p></body></html>",
	"notes.md":     "# Release notes\n\nThis demo project seeds a couple of convertible files.\n",
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a demo project with sample files and default languages",
	Long: `seed creates one demo project ("Demo Project"), imports a couple of
convertible sample files, and sets en-US -> fr-FR as the project's default
source and target languages (no language pair row is created), so
the store and converter can be exercised end to end without hand-assembling
fixtures first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, db, err := openService(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		stagingDir, err := os.MkdirTemp("", "translatorctl-seed-*")
		if err != nil {
			return fmt.Errorf("failed to create staging directory: %w", err)
		}
		defer os.RemoveAll(stagingDir)

		staged := make([]project.StagedFile, 0, len(seedDemoFiles))
		for name, contents := range seedDemoFiles {
			path := filepath.Join(stagingDir, name)
			if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
				return fmt.Errorf("failed to write seed fixture %s: %w", name, err)
			}
			staged = append(staged, project.StagedFile{AbsPath: path, Role: model.FileRoleSource})
		}

		ctx := context.Background()
		result, err := svc.CreateProject(ctx, "Demo Project", model.ProjectTypeTranslation, uuid.New(), "en-US", "fr-FR", staged)
		if err != nil {
			return reportErr(err)
		}

		fmt.Printf("seeded demo project %s (%s)\n", result.ProjectID, result.Slug)
		fmt.Printf("  folder: %s\n", result.Folder)
		fmt.Printf("  files:  %d\n", result.FileCount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
