package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/handiism/bandcamp-converter/internal/model"
	"github.com/pelletier/go-toml/v2"
)

// Settings holds all configuration options. It is built once at startup and
// passed down to every component that needs it.
type Settings struct {
	// Layout
	UnpackDir        string `json:"unpack_dir" toml:"unpack_dir"`
	AlbumPathFormat  string `json:"album_path_format" toml:"album_path_format"`
	Descend          bool   `json:"descend" toml:"descend"`
	SourceExtension  string `json:"source_extension" toml:"source_extension"`
	OutputExtension  string `json:"output_extension" toml:"output_extension"`
	ArchiveExtension string `json:"archive_extension" toml:"archive_extension"`

	// External tools
	FlacCommand     string   `json:"flac_command" toml:"flac_command"`
	LameCommand     string   `json:"lame_command" toml:"lame_command"`
	MetaflacCommand string   `json:"metaflac_command" toml:"metaflac_command"`
	LameArgs        []string `json:"lame_args" toml:"lame_args"`

	// Concurrency. 0 runs every pipeline at once.
	MaxConcurrentConversions int `json:"max_concurrent_conversions" toml:"max_concurrent_conversions"`

	// Cover art settings
	SaveCoverArtInTags    bool `json:"save_cover_art_in_tags" toml:"save_cover_art_in_tags"`
	CoverArtInTagsResize  bool `json:"cover_art_in_tags_resize" toml:"cover_art_in_tags_resize"`
	CoverArtInTagsMaxSize int  `json:"cover_art_in_tags_max_size" toml:"cover_art_in_tags_max_size"`

	// Playlist settings
	CreatePlaylist         bool   `json:"create_playlist" toml:"create_playlist"`
	PlaylistFormat         string `json:"playlist_format" toml:"playlist_format"` // m3u, pls, wpl, zpl
	PlaylistFileNameFormat string `json:"playlist_file_name_format" toml:"playlist_file_name_format"`
	M3UExtended            bool   `json:"m3u_extended" toml:"m3u_extended"`

	// Runtime
	LogLevel      string `json:"log_level" toml:"log_level"` // debug, info, warn, error
	LockUnpackDir bool   `json:"lock_unpack_dir" toml:"lock_unpack_dir"`
	DryRun        bool   `json:"-" toml:"-"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		UnpackDir:        filepath.Join(homeDir, "Music", "extracted"),
		AlbumPathFormat:  "{artist}/{album}",
		Descend:          true,
		SourceExtension:  ".flac",
		OutputExtension:  ".mp3",
		ArchiveExtension: ".zip",

		FlacCommand:     "flac",
		LameCommand:     "lame",
		MetaflacCommand: "metaflac",
		LameArgs:        []string{"-V0"},

		MaxConcurrentConversions: 0,

		SaveCoverArtInTags:    true,
		CoverArtInTagsResize:  true,
		CoverArtInTagsMaxSize: 1000,

		CreatePlaylist:         false,
		PlaylistFormat:         "m3u",
		PlaylistFileNameFormat: "{album}",
		M3UExtended:            true,

		LogLevel:      "info",
		LockUnpackDir: true,
	}
}

// DefaultPath returns the default configuration file location.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "bcconvert", "config.toml")
}

// Load reads settings from a file. Files ending in .toml are parsed as TOML,
// anything else as JSON. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	settings := DefaultSettings()
	if isTOML(path) {
		err = toml.Unmarshal(data, settings)
	} else {
		err = json.Unmarshal(data, settings)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := settings.normalize(); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save writes settings to a file, in TOML or JSON depending on its extension.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate reports the first setting that cannot be used.
func (s *Settings) Validate() error {
	switch {
	case strings.TrimSpace(s.UnpackDir) == "":
		return errors.New("unpack_dir must be set")
	case !strings.HasPrefix(s.SourceExtension, "."):
		return fmt.Errorf("source_extension %q must start with a dot", s.SourceExtension)
	case !strings.HasPrefix(s.OutputExtension, "."):
		return fmt.Errorf("output_extension %q must start with a dot", s.OutputExtension)
	case !strings.HasPrefix(s.ArchiveExtension, "."):
		return fmt.Errorf("archive_extension %q must start with a dot", s.ArchiveExtension)
	case strings.EqualFold(s.SourceExtension, s.OutputExtension):
		return errors.New("source and output extensions must differ")
	case s.MaxConcurrentConversions < 0:
		return fmt.Errorf("max_concurrent_conversions must be >= 0, got %d", s.MaxConcurrentConversions)
	case s.CoverArtInTagsResize && s.CoverArtInTagsMaxSize <= 0:
		return fmt.Errorf("cover_art_in_tags_max_size must be positive, got %d", s.CoverArtInTagsMaxSize)
	}
	for _, cmd := range []string{s.FlacCommand, s.LameCommand, s.MetaflacCommand} {
		if strings.TrimSpace(cmd) == "" {
			return errors.New("flac_command, lame_command and metaflac_command must be set")
		}
	}
	return nil
}

// normalize expands a leading ~ in UnpackDir.
func (s *Settings) normalize() error {
	expanded, err := ExpandPath(s.UnpackDir)
	if err != nil {
		return err
	}
	s.UnpackDir = expanded
	return nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ToPathConfig converts settings to PathConfig.
func (s *Settings) ToPathConfig() *model.PathConfig {
	return &model.PathConfig{
		UnpackDir:              s.UnpackDir,
		AlbumPathFormat:        s.AlbumPathFormat,
		PlaylistFileNameFormat: s.PlaylistFileNameFormat,
		PlaylistFormat:         model.ParsePlaylistFormat(s.PlaylistFormat),
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
