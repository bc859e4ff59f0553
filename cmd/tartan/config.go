package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"tartan/internal/ctypes"
	"tartan/internal/diag"
	"tartan/internal/gvariant"
	"tartan/internal/parser"
	"tartan/internal/source"
)

const configFileName = "tartan.toml"

// projectConfig mirrors tartan.toml.
type projectConfig struct {
	Check     checkConfig      `toml:"check"`
	Files     filesConfig      `toml:"files"`
	Functions []functionConfig `toml:"functions"`
	Typedefs  []typedefConfig  `toml:"typedefs"`
}

type checkConfig struct {
	Target           string   `toml:"target"`
	MaxDepth         int      `toml:"max_depth"`
	MaxDiagnostics   int      `toml:"max_diagnostics"`
	WarningsAsErrors bool     `toml:"warnings_as_errors"`
	NoWarnings       bool     `toml:"no_warnings"`
	Format           string   `toml:"format"`
	Charset          string   `toml:"charset"`
	Jobs             int      `toml:"jobs"`
	Defines          []string `toml:"defines"`
}

type filesConfig struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

type functionConfig struct {
	Name        string `toml:"name"`
	FormatParam int    `toml:"format_param"`
	FirstVararg int    `toml:"first_vararg"`
	VaList      bool   `toml:"va_list"`
	Direction   string `toml:"direction"`
}

type typedefConfig struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// projectManifest is a loaded tartan.toml.
type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

// configError is a problem in tartan.toml, reported with its CFG code.
type configError struct {
	Path string
	Code diag.Code
	Msg  string
}

func (e *configError) Error() string {
	return fmt.Sprintf("%s: error: %s [%s]", e.Path, e.Msg, e.Code.ID())
}

func findTartanToml(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadProjectManifest reads path when it is set, otherwise walks up from
// startDir. ok is false when no file was found.
func loadProjectManifest(path, startDir string) (*projectManifest, bool, error) {
	if path == "" {
		found, ok, err := findTartanToml(startDir)
		if err != nil || !ok {
			return nil, ok, err
		}
		path = found
	}
	cfg, err := loadProjectConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return projectConfig{}, &configError{Path: path, Code: diag.CfgUnknownKey,
			Msg: "unknown key(s): " + strings.Join(keys, ", ")}
	}
	if meta.IsDefined("check", "target") {
		if _, err := ctypes.ParseTarget(cfg.Check.Target); err != nil {
			return projectConfig{}, &configError{Path: path, Code: diag.CfgUnknownTarget, Msg: err.Error()}
		}
	}
	if meta.IsDefined("check", "charset") {
		if err := source.NewFileSet().SetCharset(cfg.Check.Charset); err != nil {
			return projectConfig{}, &configError{Path: path, Code: diag.CfgUnknownCharset, Msg: err.Error()}
		}
	}
	for i, fn := range cfg.Functions {
		if strings.TrimSpace(fn.Name) == "" {
			return projectConfig{}, &configError{Path: path, Code: diag.CfgBadFunction,
				Msg: fmt.Sprintf("[[functions]] entry %d has no name", i+1)}
		}
		switch fn.Direction {
		case "", "in", "out":
		default:
			return projectConfig{}, &configError{Path: path, Code: diag.CfgBadFunction,
				Msg: fmt.Sprintf("%s: direction must be \"in\" or \"out\", got %q", fn.Name, fn.Direction)}
		}
	}
	for i, td := range cfg.Typedefs {
		if strings.TrimSpace(td.Name) == "" || strings.TrimSpace(td.Type) == "" {
			return projectConfig{}, &configError{Path: path, Code: diag.CfgBadTypedef,
				Msg: fmt.Sprintf("[[typedefs]] entry %d needs both name and type", i+1)}
		}
	}
	return cfg, nil
}

// signatures converts the [[functions]] entries.
func (c *projectConfig) signatures() []gvariant.Signature {
	out := make([]gvariant.Signature, 0, len(c.Functions))
	for _, fn := range c.Functions {
		out = append(out, gvariant.Signature{
			Name:        fn.Name,
			FormatParam: fn.FormatParam,
			FirstVararg: fn.FirstVararg,
			UsesVaList:  fn.VaList,
			ArgsIn:      fn.Direction == "in",
		})
	}
	return out
}

// functionTable extends the built-in table with the configured functions.
func (c *projectConfig) functionTable(path string) (*gvariant.Table, error) {
	sigs := c.signatures()
	if len(sigs) == 0 {
		return gvariant.DefaultTable(), nil
	}
	table, err := gvariant.DefaultTable().With(sigs...)
	if err != nil {
		return nil, &configError{Path: path, Code: diag.CfgBadFunction, Msg: err.Error()}
	}
	return table, nil
}

func (c *projectConfig) typedefs() []parser.Typedef {
	out := make([]parser.Typedef, 0, len(c.Typedefs))
	for _, td := range c.Typedefs {
		out = append(out, parser.Typedef{Name: strings.TrimSpace(td.Name), Type: strings.TrimSpace(td.Type)})
	}
	return out
}
