package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wegentic/translator-core/internal/apperr"
	"github.com/wegentic/translator-core/internal/config"
	"github.com/wegentic/translator-core/internal/project"
	"github.com/wegentic/translator-core/internal/store"
	"github.com/wegentic/translator-core/internal/storedb"
)

var rootCmd = &cobra.Command{
	Use:   "translatorctl",
	Short: "Operate a local translation workbench project store",
	Long: `translatorctl drives the SQLite-backed project and artifact store and the
XLIFF 2.0 -> JLIFF converter directly from the command line: create
projects, import files, plan and run conversions, and edit segments without
the desktop UI.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "settings file (default: ~/.config/weg-translator/settings.yaml)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "debug flag (accepted but not read by any command)")
}

// openService loads settings and opens the project store + façade a command
// needs, mirroring the teacher's runMount bootstrap (load config, then wire
// the subsystem) but rooted at the workbench's app folder instead of a FUSE
// mountpoint.
func openService(cmd *cobra.Command) (*project.Service, *storedb.Store, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if cfgPath, _ := cmd.Root().PersistentFlags().GetString("config"); cfgPath != "" {
		data, err := os.ReadFile(cfgPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read settings file %s: %w", cfgPath, err)
		}
		settings = config.DefaultSettings()
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, nil, fmt.Errorf("failed to parse settings file %s: %w", cfgPath, err)
		}
	}

	if err := os.MkdirAll(settings.AppFolder, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create app folder: %w", err)
	}

	journalMode, err := storedb.ParseJournalMode(settings.DatabaseJournalMode)
	if err != nil {
		return nil, nil, err
	}
	synchronous, err := storedb.ParseSynchronous(settings.DatabaseSynchronous)
	if err != nil {
		return nil, nil, err
	}

	dbPath := filepath.Join(settings.AppFolder, "workbench.db")
	db, err := storedb.Open(dbPath, journalMode, synchronous)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open project store: %w", err)
	}

	projectsRoot := filepath.Join(settings.AppFolder, "projects")
	if err := os.MkdirAll(projectsRoot, 0o755); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to create projects directory: %w", err)
	}

	svc := project.New(store.New(db), projectsRoot)
	return svc, db, nil
}

// reportErr prints err's apperr.Kind alongside its message, the same
// {kind, message} split spec.md §6 defines for the Error JSON contract,
// rendered as plain text for a terminal instead of JSON for an IPC caller.
func reportErr(err error) error {
	return fmt.Errorf("%s: %s", apperr.KindOf(err), err.Error())
}
