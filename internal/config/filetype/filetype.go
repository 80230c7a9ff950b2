package filetype

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Name          string   `toml:"-"`
	Extensions    []string `toml:"extensions"`
	Patterns      []string `toml:"patterns"`
	LanguageIDs   []string `toml:"language_ids"`
	LSP           string   `toml:"lsp"`
	Formatters    []string `toml:"formatters"`
	FormatterMode string   `toml:"formatter_mode"`
	LSPFormat     string   `toml:"lsp_format"`
}

// EffectiveFormatterMode returns the configured formatter mode, defaulting
// to "chain" when unset.
func (c *Config) EffectiveFormatterMode() string {
	if c.FormatterMode == "" {
		return "chain"
	}
	return c.FormatterMode
}

// EffectiveLSPFormat returns the configured lsp_format policy, defaulting
// to "fallback" (use the LSP's own formatter only if no external formatter
// claimed the file) when unset.
func (c *Config) EffectiveLSPFormat() string {
	if c.LSPFormat == "" {
		return "fallback"
	}
	return c.LSPFormat
}

func globalDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mill", "filetype")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "mill", "filetype")
	}
	return filepath.Join(home, ".config", "mill", "filetype")
}

// GlobalDir returns the directory holding the user's global filetype
// configs.
func GlobalDir() string {
	return globalDir()
}

// LocalDir returns the directory holding the current project's filetype
// configs.
func LocalDir() string {
	return filepath.Join(".mill", "filetype")
}

// LoadMerged loads the global filetype configs and overlays any
// project-local ones with the same name, project winning on conflict —
// mirroring the global/local merge already used for LSPs and formatters.
func LoadMerged() ([]*Config, error) {
	global, err := LoadDir(globalDir())
	if err != nil {
		return nil, fmt.Errorf("loading global filetype configs: %w", err)
	}

	local, err := LoadDir(LocalDir())
	if err != nil {
		return nil, fmt.Errorf("loading local filetype configs: %w", err)
	}

	byName := make(map[string]*Config, len(global))
	var order []string
	for _, cfg := range global {
		byName[cfg.Name] = cfg
		order = append(order, cfg.Name)
	}
	for _, cfg := range local {
		if _, ok := byName[cfg.Name]; !ok {
			order = append(order, cfg.Name)
		}
		byName[cfg.Name] = cfg
	}

	merged := make([]*Config, 0, len(order))
	for _, name := range order {
		merged = append(merged, byName[name])
	}
	return merged, nil
}

// SaveTo writes cfg as "<dir>/<cfg.Name>.toml", creating dir if necessary.
func SaveTo(dir string, cfg *Config) error {
	if cfg.Name == "" {
		return fmt.Errorf("filetype config requires a name")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating filetype directory: %w", err)
	}

	path := filepath.Join(dir, cfg.Name+".toml")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating filetype config: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("encoding filetype config: %w", err)
	}

	return nil
}

func LoadDir(dir string) ([]*Config, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading filetype dir %s: %w", dir, err)
	}

	var configs []*Config
	var names []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		names = append(names, entry.Name())
	}

	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		var cfg Config
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}

		cfg.Name = strings.TrimSuffix(name, ".toml")
		configs = append(configs, &cfg)
	}

	return configs, nil
}
