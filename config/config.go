// Package config — pipeline configuration and .xlatprep.yaml support.
//
// The three pipeline directories follow a fixed convention relative to the
// root directory (todo/, intermediate/, final/), but everything — the
// directories, the file extension, the XML extraction convention, the
// glossary and both substitution rule lists — can be overridden in an
// optional .xlatprep.yaml placed in the root directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jkataja/xlatprep/resfile"
	"github.com/jkataja/xlatprep/rules"
)

// FileName is the default config file name, looked up in the root directory.
const FileName = ".xlatprep.yaml"

// Manifest file names produced by the two phases.
const (
	IntermediateManifest = "intermediate.csv"
	FinalManifest        = "final.csv"
)

// Config is the fully resolved pipeline configuration. All directory paths
// are absolute.
type Config struct {
	// TodoDir holds the nested source tree of resource files (phase-1 input).
	TodoDir string
	// IntermediateDir holds the flattened files and intermediate.csv.
	IntermediateDir string
	// FinalDir receives final.csv and the relocated files in phase 2.
	FinalDir string

	// Extension selects the resource files to process (default ".xml").
	Extension string
	// Extract is the convention locating translatable entries.
	Extract resfile.Rule

	// Glossary maps project terms to their protected pretranslation.
	Glossary map[string]string
	// Pretranslate are extra phase-1 rules, applied after the glossary.
	Pretranslate []rules.Rule
	// Corrections are extra phase-2 rules, applied after the built-ins.
	Corrections []rules.Rule
}

// IntermediateCSV returns the path of the phase-1 manifest.
func (c *Config) IntermediateCSV() string {
	return filepath.Join(c.IntermediateDir, IntermediateManifest)
}

// FinalCSV returns the path of the phase-2 manifest.
func (c *Config) FinalCSV() string {
	return filepath.Join(c.FinalDir, FinalManifest)
}

// fileSchema is the YAML shape of .xlatprep.yaml. Every field is optional.
type fileSchema struct {
	TodoDir         string `yaml:"todo_dir,omitempty"`
	IntermediateDir string `yaml:"intermediate_dir,omitempty"`
	FinalDir        string `yaml:"final_dir,omitempty"`
	Extension       string `yaml:"extension,omitempty"`

	Extract struct {
		Element  string `yaml:"element,omitempty"`
		KeyAttr  string `yaml:"key_attr,omitempty"`
		SkipAttr string `yaml:"skip_attr,omitempty"`
	} `yaml:"extract,omitempty"`

	Glossary     map[string]string `yaml:"glossary,omitempty"`
	Pretranslate []rules.Rule      `yaml:"pretranslate,omitempty"`
	Corrections  []rules.Rule      `yaml:"corrections,omitempty"`
}

// Load builds the configuration for the given root directory. When
// explicitPath is non-empty that file must exist; otherwise
// rootDir/.xlatprep.yaml is used if present, and pure defaults apply when it
// is not.
func Load(rootDir, explicitPath string) (*Config, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", rootDir, err)
	}

	cfg := &Config{
		TodoDir:         filepath.Join(absRoot, "todo"),
		IntermediateDir: filepath.Join(absRoot, "intermediate"),
		FinalDir:        filepath.Join(absRoot, "final"),
		Extension:       ".xml",
		Extract:         resfile.DefaultRule(),
	}

	path := explicitPath
	if path == "" {
		path = filepath.Join(absRoot, FileName)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && explicitPath == "" {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var fs fileSchema
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if fs.TodoDir != "" {
		cfg.TodoDir = resolve(absRoot, fs.TodoDir)
	}
	if fs.IntermediateDir != "" {
		cfg.IntermediateDir = resolve(absRoot, fs.IntermediateDir)
	}
	if fs.FinalDir != "" {
		cfg.FinalDir = resolve(absRoot, fs.FinalDir)
	}
	if fs.Extension != "" {
		if fs.Extension[0] != '.' {
			return nil, fmt.Errorf("%s: extension %q must start with a dot", path, fs.Extension)
		}
		cfg.Extension = fs.Extension
	}
	if fs.Extract.Element != "" {
		cfg.Extract.Element = fs.Extract.Element
	}
	if fs.Extract.KeyAttr != "" {
		cfg.Extract.KeyAttr = fs.Extract.KeyAttr
	}
	if fs.Extract.SkipAttr != "" {
		cfg.Extract.SkipAttr = fs.Extract.SkipAttr
	}
	cfg.Glossary = fs.Glossary
	cfg.Pretranslate = fs.Pretranslate
	cfg.Corrections = fs.Corrections

	for i, r := range cfg.Pretranslate {
		if r.Pattern == "" {
			return nil, fmt.Errorf("%s: pretranslate rule #%d has no pattern", path, i+1)
		}
	}
	for i, r := range cfg.Corrections {
		if r.Pattern == "" {
			return nil, fmt.Errorf("%s: corrections rule #%d has no pattern", path, i+1)
		}
	}

	return cfg, nil
}

// resolve makes p absolute, treating relative paths as relative to root.
func resolve(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
