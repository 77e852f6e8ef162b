// Package config provides configuration management for the converter.
//
// This package handles:
//   - Loading and saving settings from TOML or JSON files
//   - Default configuration values
//   - Validation and ~ expansion
//   - Conversion to PathConfig for the model package
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Expands archives to ~/Music/extracted/{artist}/{album}
//	// flac | lame -V0, tags from metaflac
//	// No cap on concurrent conversions
//
// # Loading from File
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    // Malformed or invalid file; a missing file yields defaults
//	}
//
// # Saving Settings
//
//	settings.UnpackDir = "/srv/music"
//	err := settings.Save("/path/to/config.toml")
//
// The file format follows the extension: .toml is TOML, anything else JSON.
package config
