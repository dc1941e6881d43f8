package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// FileNames are the configuration files LoadFromWorkingDir looks for,
// in order.
var FileNames = []string{"inertia.json", "inertia.toml", "inertia.yaml", "inertia.yml"}

// ErrNoConfigFile is returned when no configuration file exists.
var ErrNoConfigFile = errors.New("config: no configuration file found")

// ErrUnknownFormat is returned for an unsupported file extension.
var ErrUnknownFormat = errors.New("config: unknown file format")

// ErrParse wraps decoder errors from Load.
var ErrParse = errors.New("config: parse failed")

// Load reads a Config from a JSON, TOML or YAML file.
// The format is chosen by extension. Defaults are not applied; pass the
// result to Resolve.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".toml":
		_, err = toml.Decode(string(data), &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("%w %q (%s)", ErrUnknownFormat, ext, path)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w (%s): %w", ErrParse, path, err)
	}
	return cfg, nil
}

// Find returns the first of FileNames present in dir.
func Find(dir string) (string, error) {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNoConfigFile, dir)
}

// LoadFromWorkingDir loads the configuration file from the working
// directory. A missing file yields a zero Config, which resolves to all
// defaults.
func LoadFromWorkingDir() (Config, string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, "", err
	}
	path, err := Find(cwd)
	if err != nil {
		if errors.Is(err, ErrNoConfigFile) {
			return Config{}, "", nil
		}
		return Config{}, "", err
	}
	cfg, err := Load(path)
	return cfg, path, err
}
