package tsplugin

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

type tsconfig struct {
	dir     string
	baseURL string
	paths   map[string][]string
}

var lineCommentRe = regexp.MustCompile(`//[^\n]*`)

// loadTSConfig walks up from startDir looking for the nearest tsconfig.json
// and parses its baseUrl/paths, tolerating // line comments.
func loadTSConfig(startDir string) *tsconfig {
	dir := startDir
	for {
		path := filepath.Join(dir, "tsconfig.json")
		if data, err := os.ReadFile(path); err == nil {
			if cfg := parseTSConfig(dir, data); cfg != nil {
				return cfg
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}

func parseTSConfig(configDir string, data []byte) *tsconfig {
	stripped := lineCommentRe.ReplaceAll(data, nil)

	var raw struct {
		CompilerOptions struct {
			BaseURL string              `json:"baseUrl"`
			Paths   map[string][]string `json:"paths"`
		} `json:"compilerOptions"`
	}
	if err := json.Unmarshal(stripped, &raw); err != nil {
		return nil
	}

	baseURL := raw.CompilerOptions.BaseURL
	if baseURL == "" {
		baseURL = "."
	}
	return &tsconfig{
		dir:     configDir,
		baseURL: filepath.Join(configDir, baseURL),
		paths:   raw.CompilerOptions.Paths,
	}
}

// resolve implements the pattern/wildcard matching rule: "/*" patterns
// match a prefix and substitute the wildcard tail into the first
// replacement; exact patterns match literally. Multiple replacements use
// only the first.
func (c *tsconfig) resolve(specifier string) (string, bool) {
	for pattern, replacements := range c.paths {
		if len(replacements) == 0 {
			continue
		}
		repl := replacements[0]

		if strings.HasSuffix(pattern, "/*") {
			prefix := strings.TrimSuffix(pattern, "/*")
			if strings.HasPrefix(specifier, prefix+"/") {
				tail := strings.TrimPrefix(specifier, prefix+"/")
				target := strings.TrimSuffix(repl, "/*")
				return filepath.Join(c.baseURL, target, tail), true
			}
			continue
		}

		if specifier == pattern {
			return filepath.Join(c.baseURL, repl), true
		}
	}
	return "", false
}
