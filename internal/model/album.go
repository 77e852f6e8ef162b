package model

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Album is one expanded archive: an artist/album directory holding lossless
// sources and, after conversion, their compressed outputs.
//
// Paths are computed when creating an album via NewAlbum, using the
// {artist} and {album} placeholders of PathConfig.AlbumPathFormat.
//
// Example:
//
//	cfg := &PathConfig{
//	    UnpackDir:       "/music/extracted",
//	    AlbumPathFormat: "{artist}/{album}",
//	    PlaylistFormat:  PlaylistFormatM3U,
//	}
//	album := NewAlbum("Boards of Canada", "Geogaddi", cfg)
//	// album.Path = "/music/extracted/Boards of Canada/Geogaddi"
type Album struct {
	// Artist is the artist component parsed from the archive name.
	Artist string

	// Title is the album component parsed from the archive name.
	Title string

	// Tracks holds the album's output files once conversion finished.
	Tracks []*Track

	// Path is the album directory.
	Path string

	// PlaylistPath is the computed playlist file path.
	PlaylistPath string
}

// NewAlbum creates an Album with paths computed from cfg.
//
// Invalid filename characters are replaced with underscores. Paths are
// truncated if they exceed Windows path length limits (248 for folders).
func NewAlbum(artist, title string, cfg *PathConfig) *Album {
	album := &Album{
		Artist: artist,
		Title:  title,
	}

	album.Path = album.parseFolderPath(cfg)
	album.PlaylistPath = album.parsePlaylistPath(cfg)

	return album
}

// AlbumFromDir wraps an already expanded directory. The artist and title are
// taken from the last two path components.
func AlbumFromDir(dir string, cfg *PathConfig) *Album {
	dir = filepath.Clean(dir)
	album := &Album{
		Artist: filepath.Base(filepath.Dir(dir)),
		Title:  filepath.Base(dir),
		Path:   dir,
	}
	album.PlaylistPath = album.parsePlaylistPath(cfg)
	return album
}

// PathConfig holds path formatting settings for albums.
type PathConfig struct {
	// UnpackDir is the root directory archives are expanded into.
	UnpackDir string

	// AlbumPathFormat is the album directory template relative to UnpackDir.
	// Example: "{artist}/{album}"
	AlbumPathFormat string

	// PlaylistFileNameFormat is the filename template for playlists (without extension).
	// Example: "{album}"
	PlaylistFileNameFormat string

	// PlaylistFormat determines the playlist file type and extension.
	PlaylistFormat PlaylistFormat
}

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// PlaylistFormatM3U creates .m3u playlist files (most widely supported).
	PlaylistFormatM3U PlaylistFormat = iota

	// PlaylistFormatPLS creates .pls playlist files (used by Winamp).
	PlaylistFormatPLS

	// PlaylistFormatWPL creates .wpl playlist files (Windows Media Player).
	PlaylistFormatWPL

	// PlaylistFormatZPL creates .zpl playlist files (Zune Media Player).
	PlaylistFormatZPL
)

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case PlaylistFormatM3U:
		return ".m3u"
	case PlaylistFormatPLS:
		return ".pls"
	case PlaylistFormatWPL:
		return ".wpl"
	case PlaylistFormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// ParsePlaylistFormat maps a config string to a PlaylistFormat, defaulting to M3U.
func ParsePlaylistFormat(s string) PlaylistFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pls":
		return PlaylistFormatPLS
	case "wpl":
		return PlaylistFormatWPL
	case "zpl":
		return PlaylistFormatZPL
	default:
		return PlaylistFormatM3U
	}
}

// parseFolderPath computes the album folder path from the config template.
func (a *Album) parseFolderPath(cfg *PathConfig) string {
	format := cfg.AlbumPathFormat
	if format == "" {
		format = "{artist}/{album}"
	}
	rel := strings.ReplaceAll(format, "{artist}", sanitizeFileName(a.Artist))
	rel = strings.ReplaceAll(rel, "{album}", sanitizeFileName(a.Title))
	path := filepath.Join(cfg.UnpackDir, filepath.FromSlash(rel))

	// Limit path length for cross-platform compatibility (Windows MAX_PATH)
	if len(path) >= 248 {
		path = path[:247]
	}

	return path
}

// parsePlaylistPath computes the full playlist file path.
func (a *Album) parsePlaylistPath(cfg *PathConfig) string {
	format := cfg.PlaylistFileNameFormat
	if format == "" {
		format = "{album}"
	}
	fileName := strings.ReplaceAll(format, "{album}", a.Title)
	fileName = strings.ReplaceAll(fileName, "{artist}", a.Artist)
	fileName = sanitizeFileName(fileName)

	ext := cfg.PlaylistFormat.Extension()
	filePath := filepath.Join(a.Path, fileName+ext)

	if len(filePath) >= 260 {
		maxLen := 11 - len(ext)
		if maxLen > 0 && maxLen < len(fileName) {
			filePath = filepath.Join(a.Path, fileName[:maxLen]+ext)
		}
	}

	return filePath
}

var (
	invalidNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots     = regexp.MustCompile(`\.+$`)
	repeatedSpace    = regexp.MustCompile(`\s+`)
)

// sanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars) are replaced with underscore
//   - Trailing dots are removed (Windows limitation)
//   - Multiple whitespace is collapsed to single space
//   - Trailing whitespace is removed
//
// Example:
//
//	sanitizeFileName("Song: Part 1/2") // Returns "Song_ Part 1_2"
func sanitizeFileName(name string) string {
	name = invalidNameChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}
