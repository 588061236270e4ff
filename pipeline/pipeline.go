// Package pipeline sequences the two phases of the translation-prep
// workflow over the todo/intermediate/final directory convention.
//
// Phase 1 flattens the todo tree into the intermediate directory, extracts
// every translatable string, applies the pretranslation rules and writes
// intermediate.csv. Phase 2 repairs the systematic placeholder damage in
// the externally translated column, writes final.csv and relocates the
// resource files to the final directory.
//
// Both phases are synchronous and fail-fast: the first fatal error aborts
// the run with files moved so far left in place. Only tree cleanup is
// non-fatal — leftover files are reported through Warnf and the run
// continues with the tree intact.
package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/jkataja/xlatprep/config"
	"github.com/jkataja/xlatprep/flatten"
	"github.com/jkataja/xlatprep/manifest"
	"github.com/jkataja/xlatprep/resfile"
	"github.com/jkataja/xlatprep/rules"
	"github.com/jkataja/xlatprep/scan"
)

// Pipeline runs the two phases against one directory set.
type Pipeline struct {
	cfg *config.Config

	// Warnf receives non-fatal warnings (tree cleanup leftovers). nil
	// discards them.
	Warnf func(format string, args ...any)
	// Progress enables a per-file progress bar on stderr.
	Progress bool
}

// New returns a pipeline for the given configuration.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{cfg: cfg}
}

// Run executes the requested phase. Phase must be 1 or 2; the CLI validates
// this before the pipeline is ever constructed.
func (p *Pipeline) Run(phase int) error {
	switch phase {
	case 1:
		return p.Phase1()
	case 2:
		return p.Phase2()
	}
	return fmt.Errorf("invalid phase %d", phase)
}

// warnf forwards a warning if a sink is set.
func (p *Pipeline) warnf(format string, args ...any) {
	if p.Warnf != nil {
		p.Warnf(format, args...)
	}
}

// ---------------------------------------------------------------------------
// Phase 1 — flatten, extract, pretranslate, aggregate
// ---------------------------------------------------------------------------

// Phase1 turns the todo tree into a flat intermediate directory plus
// intermediate.csv. The todo directory is left behind as an empty shell.
func (p *Pipeline) Phase1() error {
	cfg := p.cfg

	// Compile the rule set before touching any file, so a bad rule has no
	// side effects.
	pre, err := rules.NewPretranslator(cfg.Glossary, cfg.Pretranslate)
	if err != nil {
		return fmt.Errorf("pretranslation rules: %w", err)
	}

	files, err := scan.Find(cfg.TodoDir, cfg.Extension)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files found under %s", cfg.Extension, cfg.TodoDir)
	}

	if err := flatten.Move(files, cfg.IntermediateDir); err != nil {
		return err
	}

	if err := flatten.Reset(cfg.TodoDir, nil); err != nil {
		var ce *flatten.CleanupError
		if !errors.As(err, &ce) {
			return err
		}
		p.warnf("%v", ce)
	}

	m := manifest.New()
	bar := p.newBar(len(files), "extracting")
	for _, src := range files {
		base := filepath.Base(src)
		moved := filepath.Join(cfg.IntermediateDir, base)

		f, err := resfile.ParseFile(moved, cfg.Extract)
		if err != nil {
			return err
		}
		for i := range f.Entries {
			f.Entries[i].Text = pre.Apply(f.Entries[i].Text)
		}
		if err := m.Append(base, f.Entries); err != nil {
			return err
		}
		barAdd(bar)
	}

	return m.WriteFile(cfg.IntermediateCSV())
}

// ---------------------------------------------------------------------------
// Phase 2 — correct, finalize, relocate
// ---------------------------------------------------------------------------

// Phase2 corrects the translated column of intermediate.csv into final.csv
// and moves the resource files to the final directory. The intermediate
// directory is left behind as an empty shell; intermediate.csv is consumed.
func (p *Pipeline) Phase2() error {
	cfg := p.cfg

	corr, err := rules.NewCorrector(cfg.Corrections)
	if err != nil {
		return fmt.Errorf("correction rules: %w", err)
	}

	src := cfg.IntermediateCSV()
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return &scan.NotFoundError{Path: src}
	}
	m, err := manifest.ReadFile(src)
	if err != nil {
		return err
	}
	if m.TranslatedCount() == 0 {
		return fmt.Errorf("%s has no translated text; run the external translation step first", src)
	}

	bar := p.newBar(len(m.Rows), "correcting")
	for i := range m.Rows {
		m.Rows[i].TranslatedText = corr.Apply(m.Rows[i].TranslatedText)
		barAdd(bar)
	}
	if err := m.WriteFile(cfg.FinalCSV()); err != nil {
		return err
	}

	files, err := scan.Find(cfg.IntermediateDir, cfg.Extension)
	if err != nil {
		return err
	}
	if err := flatten.Move(files, cfg.FinalDir); err != nil {
		return err
	}

	// intermediate.csv has been consumed; it goes down with the tree.
	keep := func(path string) bool {
		return filepath.Base(path) == config.IntermediateManifest
	}
	if err := flatten.Reset(cfg.IntermediateDir, keep); err != nil {
		var ce *flatten.CleanupError
		if !errors.As(err, &ce) {
			return err
		}
		p.warnf("%v", ce)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Progress
// ---------------------------------------------------------------------------

func (p *Pipeline) newBar(total int, desc string) *progressbar.ProgressBar {
	if !p.Progress {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan]%s[reset]", desc)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func barAdd(bar *progressbar.ProgressBar) {
	if bar != nil {
		bar.Add(1)
	}
}
