// xlatprep — two-phase batch pipeline preparing XML string resources for
// human-assisted machine translation and reconciling the results.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jkataja/xlatprep/config"
	"github.com/jkataja/xlatprep/i18n"
	"github.com/jkataja/xlatprep/manifest"
	"github.com/jkataja/xlatprep/pipeline"
	"github.com/jkataja/xlatprep/scan"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir    string
	configPath string
)

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "xlatprep <phase>",
		Short: "Prepare string resources for external translation and reconcile the results",
		Long: `xlatprep — two-phase translation-prep pipeline.

Phase 1 collects the XML resource files from the nested todo/ tree into a
flat intermediate/ directory, extracts every translatable string, applies
the pretranslation glossary and writes intermediate/intermediate.csv.

The translated_text column is then filled by an external translation
service (a manual step, outside this tool).

Phase 2 repairs the systematic placeholder damage done by the translation
service, writes final/final.csv and moves the resource files to final/,
ready for the manual paste-back and QC step.

Directories are resolved relative to --root (default ".."); an optional
.xlatprep.yaml there overrides directories, the extraction convention,
the glossary and both rule lists.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one argument: the phase (1 or 2)")
			}
			if args[0] != "1" && args[0] != "2" {
				return fmt.Errorf("invalid phase %q: must be 1 or 2", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			phase, _ := strconv.Atoi(args[0])
			return runPhase(phase)
		},
	}

	// Global persistent flags — inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", "..", "Directory the todo/intermediate/final convention is resolved against")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Explicit config file (default <root>/"+config.FileName+")")

	root.AddCommand(
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")

	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// runPhase executes one pipeline phase with warnings routed to the log.
func runPhase(phase int) error {
	cfg, err := config.Load(rootDir, configPath)
	if err != nil {
		return err
	}

	p := pipeline.New(cfg)
	p.Warnf = logWarning
	p.Progress = true

	if err := p.Run(phase); err != nil {
		return err
	}

	switch phase {
	case 1:
		logInfo("%s: %s", i18n.T("Manifest"), cfg.IntermediateCSV())
	case 2:
		logInfo("%s: %s", i18n.T("Final manifest"), cfg.FinalCSV())
	}
	logSuccess(i18n.T("Phase %d complete"), phase)
	return nil
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("xlatprep version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// status (read-only: where is the pipeline right now)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show pending files and manifest progress",
		Long: `Show how far the pipeline has progressed: resource files still waiting
in todo/, manifest row counts, and how much of the translated_text column
the external translation step has filled in. Does not modify any files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}

	return cmd
}

func runStatus() error {
	cfg, err := config.Load(rootDir, configPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, i18n.T("Status"), colorReset)
	fmt.Fprintln(os.Stderr, "────────────────────────────────────────────────────────────")

	// Pending files in todo/
	pending := i18n.T("none")
	if files, err := scan.Find(cfg.TodoDir, cfg.Extension); err == nil {
		pending = fmt.Sprintf(i18n.N("%d file", "%d files", len(files)), len(files))
	} else {
		var nf *scan.NotFoundError
		if !errors.As(err, &nf) {
			return err
		}
	}
	fmt.Fprintf(os.Stderr, "  %-28s %s\n", i18n.T("Pending resource files")+":", pending)

	printManifestLine(i18n.T("Manifest"), cfg.IntermediateCSV(), i18n.T("not created yet (run phase 1)"))
	printManifestLine(i18n.T("Final manifest"), cfg.FinalCSV(), i18n.T("not created yet (run phase 2)"))

	fmt.Fprintln(os.Stderr)
	return nil
}

func printManifestLine(label, path, missing string) {
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintf(os.Stderr, "  %-28s %s\n", label+":", missing)
		return
	}
	m, err := manifest.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  %-28s %v\n", label+":", err)
		return
	}
	fmt.Fprintf(os.Stderr, "  %-28s %s\n", label+":",
		fmt.Sprintf(i18n.T("%d of %d rows translated"), m.TranslatedCount(), len(m.Rows)))
}
