// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/odexpatch/lib/apk"
	"github.com/bureau-foundation/odexpatch/lib/odex"
)

// EnvironmentVariable names the configuration file for [Load].
const EnvironmentVariable = "ODEXPATCH_CONFIG"

// Config is the on-disk patcher configuration.
type Config struct {
	// SDKRoot is the Android source tree containing
	// art/compiler/dex2oat. Empty means resolve dex2oat through PATH.
	SDKRoot string `yaml:"sdk_root" json:"sdk_root"`

	// Workers is how many archives are processed at once.
	// Default: 4
	Workers int `yaml:"workers" json:"workers"`

	// ScratchDirectory holds extracted bytecode and compiler output
	// while runs are in flight.
	// Default: tmp_odex_patcher
	ScratchDirectory string `yaml:"scratch_directory" json:"scratch_directory"`

	// OutputDirectory receives the rewritten archives.
	// Default: .
	OutputDirectory string `yaml:"output_directory" json:"output_directory"`

	// BootClasspath is the ordered list of boot image jars passed to
	// dex2oat. Empty omits --boot-image.
	BootClasspath []string `yaml:"boot_classpath" json:"boot_classpath"`

	// CompileTimeout bounds each dex2oat run, as a Go duration string
	// ("90s", "5m"). Empty disables the deadline.
	CompileTimeout string `yaml:"compile_timeout" json:"compile_timeout"`

	// ArtifactCompression is the zip method for .oat and .vdex entries:
	// store, deflate, or zstd.
	// Default: deflate
	ArtifactCompression string `yaml:"artifact_compression" json:"artifact_compression"`
}

// Default returns the configuration used when no file is given, and
// the base that a loaded file is merged into.
func Default() *Config {
	return &Config{
		Workers:             odex.DefaultWorkers,
		ScratchDirectory:    odex.DefaultScratchDirectory,
		OutputDirectory:     odex.DefaultOutputDirectory,
		ArtifactCompression: apk.Deflate.String(),
	}
}

// Load loads configuration from the file named by ODEXPATCH_CONFIG.
// Unlike a missing --config flag, an unset variable is an error: Load
// is only called when the caller asked for file configuration.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path. ".json" and ".jsonc" files
// are parsed as JSON with comments and trailing commas; anything else
// as YAML. Fields absent from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), c); err != nil {
			return fmt.Errorf("parsing config %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.SDKRoot = expandVars(c.SDKRoot, vars)
	vars["SDK_ROOT"] = c.SDKRoot

	c.ScratchDirectory = expandVars(c.ScratchDirectory, vars)
	c.OutputDirectory = expandVars(c.OutputDirectory, vars)
	for index, jar := range c.BootClasspath {
		c.BootClasspath[index] = expandVars(jar, vars)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Provided vars first, then the environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.ScratchDirectory == "" {
		errs = append(errs, errors.New("scratch_directory is required"))
	}
	if _, err := c.compileTimeout(); err != nil {
		errs = append(errs, err)
	}
	if _, err := apk.ParseMethod(c.ArtifactCompression); err != nil {
		errs = append(errs, fmt.Errorf("artifact_compression: %w", err))
	}
	for index, jar := range c.BootClasspath {
		if jar == "" {
			errs = append(errs, fmt.Errorf("boot_classpath[%d] is empty", index))
		}
	}

	return errors.Join(errs...)
}

func (c *Config) compileTimeout() (time.Duration, error) {
	if c.CompileTimeout == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(c.CompileTimeout)
	if err != nil {
		return 0, fmt.Errorf("compile_timeout: %w", err)
	}
	if timeout < 0 {
		return 0, fmt.Errorf("compile_timeout must not be negative, got %s", c.CompileTimeout)
	}
	return timeout, nil
}

// Patcher validates c and converts it to the patcher's configuration.
func (c *Config) Patcher() (odex.Config, error) {
	if err := c.Validate(); err != nil {
		return odex.Config{}, err
	}
	timeout, _ := c.compileTimeout()
	method, _ := apk.ParseMethod(c.ArtifactCompression)
	return odex.Config{
		SDKRoot:          c.SDKRoot,
		Workers:          c.Workers,
		ScratchDirectory: c.ScratchDirectory,
		OutputDirectory:  c.OutputDirectory,
		BootClasspath:    c.BootClasspath,
		CompileTimeout:   timeout,
		ArtifactMethod:   method,
	}, nil
}
