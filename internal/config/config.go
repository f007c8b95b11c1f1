// Package config provides configuration management for assetforge using
// Viper, loading from YAML files and environment variables with the
// ASSETFORGE_ prefix.
//
// The configuration covers the static and output roots, the static URL
// prefix matched by the CSS image inliner, the locations of the external
// compiler tools, and build driver settings.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	StaticDir        string      `yaml:"static_dir" mapstructure:"static_dir"`
	OutputDir        string      `yaml:"output_dir" mapstructure:"output_dir"`
	StaticURLPrefix  string      `yaml:"static_url_prefix" mapstructure:"static_url_prefix"`
	SkipInlineImages bool        `yaml:"skip_inline_images" mapstructure:"skip_inline_images"`
	Tools            ToolsConfig `yaml:"tools" mapstructure:"tools"`
	Build            BuildConfig `yaml:"build" mapstructure:"build"`
}

// ToolsConfig locates the external compiler processes. The jar entries are
// run through the configured java binary; the rest are standalone
// executables.
type ToolsConfig struct {
	Java            string `yaml:"java" mapstructure:"java"`
	ClosureCompiler string `yaml:"closure_compiler" mapstructure:"closure_compiler"`
	CSSMinifier     string `yaml:"css_minifier" mapstructure:"css_minifier"`
	LessCompiler    string `yaml:"less_compiler" mapstructure:"less_compiler"`
	SassCompiler    string `yaml:"sass_compiler" mapstructure:"sass_compiler"`
}

type BuildConfig struct {
	Workers      int    `yaml:"workers" mapstructure:"workers"`
	ManifestPath string `yaml:"manifest_path" mapstructure:"manifest_path"`
	BlocksPath   string `yaml:"blocks_path" mapstructure:"blocks_path"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Handle skip_inline_images set via viper (workaround for viper bool handling)
	if viper.IsSet("skip_inline_images") {
		config.SkipInlineImages = viper.GetBool("skip_inline_images")
	}

	// Apply defaults
	if config.StaticDir == "" {
		config.StaticDir = "static"
	}
	if config.OutputDir == "" {
		config.OutputDir = "static/assets"
	}
	if config.StaticURLPrefix == "" {
		config.StaticURLPrefix = "/static/"
	}
	if config.Tools.Java == "" {
		config.Tools.Java = "java"
	}
	if config.Tools.LessCompiler == "" {
		config.Tools.LessCompiler = "lessc"
	}
	if config.Tools.SassCompiler == "" {
		config.Tools.SassCompiler = "sass"
	}
	if config.Build.Workers <= 0 {
		config.Build.Workers = runtime.NumCPU()
	}
	if config.Build.ManifestPath == "" {
		config.Build.ManifestPath = ".assetforge/manifest.json"
	}
	if config.Build.BlocksPath == "" {
		config.Build.BlocksPath = ".assetforge/blocks.json"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks invariants that would otherwise fail deep inside a build.
func (c *Config) Validate() error {
	if !strings.HasSuffix(c.StaticURLPrefix, "/") {
		return fmt.Errorf("static_url_prefix must end with '/', got %q", c.StaticURLPrefix)
	}
	if c.Build.Workers < 1 {
		return fmt.Errorf("build.workers must be at least 1, got %d", c.Build.Workers)
	}
	return nil
}
