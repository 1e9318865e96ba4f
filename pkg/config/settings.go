// Package config loads Stellar settings from project and user files.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	SettingsFormatTOML SettingsFormat = "toml"
	SettingsFormatJSON SettingsFormat = "json"
)

// Color values accepted by the color setting.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

type SettingsFormat string

// SettingsHandle records where settings were loaded from.
type SettingsHandle struct {
	Path   string
	Format SettingsFormat
}

// Settings holds user preferences for the CLI and REPL. Pointer fields are
// optional in files; Defaults fills them in.
type Settings struct {
	Prompt             string `json:"prompt"              toml:"prompt"`
	ContinuationPrompt string `json:"continuation_prompt" toml:"continuation_prompt"`
	HistoryFile        string `json:"history_file"        toml:"history_file"`
	Color              string `json:"color"               toml:"color"`
	Diagnostics        string `json:"diagnostics"         toml:"diagnostics"`
	Echo               *bool  `json:"echo"                toml:"echo"`
	Banner             *bool  `json:"banner"              toml:"banner"`
}

// Defaults returns the settings used when no file is found.
func Defaults() Settings {
	echo, banner := true, true
	return Settings{
		Prompt:             ">> ",
		ContinuationPrompt: ".. ",
		HistoryFile:        "~/.stellar_history",
		Color:              ColorAuto,
		Diagnostics:        "plain",
		Echo:               &echo,
		Banner:             &banner,
	}
}

// EchoEnabled reports whether the REPL echoes expression statement values.
func (s Settings) EchoEnabled() bool { return s.Echo == nil || *s.Echo }

// BannerEnabled reports whether the REPL prints its welcome banner.
func (s Settings) BannerEnabled() bool { return s.Banner == nil || *s.Banner }

// HistoryPath expands a leading ~ in the history file. An empty result
// disables history.
func (s Settings) HistoryPath() string {
	path := strings.TrimSpace(s.HistoryFile)
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}

// Dir returns the user configuration directory for stellar.
func Dir() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "stellar")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".stellar")
	}
	return filepath.Join(home, ".config", "stellar")
}

// LoadSettings looks for .stellar.toml and .stellar.json in projectDir, then
// settings.toml and settings.json in Dir(). The first file found wins and is
// merged over Defaults. Parse errors fail immediately; missing files are
// skipped.
func LoadSettings(projectDir string) (Settings, SettingsHandle, error) {
	userDir := Dir()
	candidates := []SettingsHandle{
		{Path: filepath.Join(projectDir, ".stellar.toml"), Format: SettingsFormatTOML},
		{Path: filepath.Join(projectDir, ".stellar.json"), Format: SettingsFormatJSON},
		{Path: filepath.Join(userDir, "settings.toml"), Format: SettingsFormatTOML},
		{Path: filepath.Join(userDir, "settings.json"), Format: SettingsFormatJSON},
	}
	return loadFirst(candidates)
}

func loadFirst(candidates []SettingsHandle) (Settings, SettingsHandle, error) {
	var accumulated error
	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate.Path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			accumulated = errors.Join(
				accumulated,
				fmt.Errorf("read settings %q: %w", candidate.Path, err),
			)
			continue
		}

		settings, err := decodeSettings(data, candidate.Format)
		if err != nil {
			return Settings{}, SettingsHandle{}, fmt.Errorf(
				"parse settings %q: %w",
				candidate.Path,
				err,
			)
		}
		settings = merge(Defaults(), settings)
		if err := settings.Validate(); err != nil {
			return Settings{}, SettingsHandle{}, fmt.Errorf("settings %q: %w", candidate.Path, err)
		}
		return settings, candidate, nil
	}

	if accumulated != nil {
		return Settings{}, SettingsHandle{}, accumulated
	}
	return Defaults(), SettingsHandle{}, nil
}

func decodeSettings(data []byte, format SettingsFormat) (Settings, error) {
	var settings Settings
	switch format {
	case SettingsFormatTOML:
		if err := toml.Unmarshal(data, &settings); err != nil {
			return Settings{}, err
		}
	case SettingsFormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&settings); err != nil {
			return Settings{}, err
		}
	default:
		return Settings{}, fmt.Errorf("unsupported settings format %q", format)
	}
	return settings, nil
}

// merge overlays the fields set in file onto base.
func merge(base, file Settings) Settings {
	if file.Prompt != "" {
		base.Prompt = file.Prompt
	}
	if file.ContinuationPrompt != "" {
		base.ContinuationPrompt = file.ContinuationPrompt
	}
	if file.HistoryFile != "" {
		base.HistoryFile = file.HistoryFile
	}
	if file.Color != "" {
		base.Color = strings.ToLower(file.Color)
	}
	if file.Diagnostics != "" {
		base.Diagnostics = strings.ToLower(file.Diagnostics)
	}
	if file.Echo != nil {
		base.Echo = file.Echo
	}
	if file.Banner != nil {
		base.Banner = file.Banner
	}
	return base
}

// Validate rejects unknown enum values.
func (s Settings) Validate() error {
	switch s.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color %q (want auto, always or never)", s.Color)
	}
	switch s.Diagnostics {
	case "plain", "pretty", "json":
	default:
		return fmt.Errorf("invalid diagnostics style %q (want plain, pretty or json)", s.Diagnostics)
	}
	return nil
}
