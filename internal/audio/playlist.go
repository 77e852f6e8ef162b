package audio

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/handiism/bandcamp-converter/internal/model"
)

// PlaylistFormat is the playlist file type. It is shared with the model
// package so album paths and playlist content agree on the extension.
type PlaylistFormat = model.PlaylistFormat

const (
	FormatM3U = model.PlaylistFormatM3U
	FormatPLS = model.PlaylistFormatPLS
	FormatWPL = model.PlaylistFormatWPL
	FormatZPL = model.PlaylistFormatZPL
)

// unknownLength is what M3U and PLS expect when a duration is not known.
// Outputs are never probed, so every entry carries it.
const unknownLength = -1

// entry is one playlist line, resolved once for every format.
type entry struct {
	file   string // relative to the album directory
	title  string
	artist string
}

type renderer func(album *model.Album, entries []entry, extended bool) string

var renderers = map[PlaylistFormat]renderer{
	FormatM3U: renderM3U,
	FormatPLS: renderPLS,
	FormatWPL: renderWPL,
	FormatZPL: renderZPL,
}

// PlaylistCreator renders the playlist of an album directory after its
// conversions finished. Entries are the album's outputs ordered by track
// number and named relative to the directory the playlist is written into.
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist(album)
//
//	// #EXTM3U
//	// #EXTINF:-1,Artist - Song Title
//	// 01 Song Title.mp3
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // M3U only: #EXTM3U header and #EXTINF lines
}

// NewPlaylistCreator creates a PlaylistCreator. Unknown formats render as M3U.
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// CreatePlaylist sorts album.Tracks and returns the playlist content.
func (p *PlaylistCreator) CreatePlaylist(album *model.Album) string {
	SortTracks(album.Tracks)

	entries := make([]entry, len(album.Tracks))
	for i, track := range album.Tracks {
		entries[i] = entry{
			file:   filepath.Base(track.Path),
			title:  track.Title,
			artist: album.Artist,
		}
	}

	render, ok := renderers[p.format]
	if !ok {
		render = renderM3U
	}
	return render(album, entries, p.extended)
}

func renderM3U(_ *model.Album, entries []entry, extended bool) string {
	var sb strings.Builder
	if extended {
		sb.WriteString("#EXTM3U\n")
	}
	for _, e := range entries {
		if extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s - %s\n", unknownLength, e.artist, e.title)
		}
		sb.WriteString(e.file + "\n")
	}
	return sb.String()
}

// renderPLS writes the INI-style PLS v2 format. Indices are 1-based.
func renderPLS(_ *model.Album, entries []entry, _ bool) string {
	var sb strings.Builder
	sb.WriteString("[playlist]\n")
	for i, e := range entries {
		n := i + 1
		fmt.Fprintf(&sb, "File%d=%s\nTitle%d=%s\nLength%d=%d\n", n, e.file, n, e.title, n, unknownLength)
	}
	fmt.Fprintf(&sb, "NumberOfEntries=%d\nVersion=2\n", len(entries))
	return sb.String()
}

func renderWPL(album *model.Album, entries []entry, _ bool) string {
	return renderSMIL(`<?wpl version="1.0"?>`, album, nil, entries, func(e entry) string {
		return fmt.Sprintf(`<media src="%s"/>`, escapeXML(e.file))
	})
}

// renderZPL is WPL with album and artist attributes per entry, as Zune and
// Groove Music read them.
func renderZPL(album *model.Album, entries []entry, _ bool) string {
	meta := []string{
		`<meta name="Generator" content="BandcampConverter"/>`,
		fmt.Sprintf(`<meta name="ItemCount" content="%d"/>`, len(entries)),
	}
	return renderSMIL(`<?zpl version="2.0"?>`, album, meta, entries, func(e entry) string {
		return fmt.Sprintf(`<media src="%s" albumTitle="%s" albumArtist="%s" trackTitle="%s" trackArtist="%s"/>`,
			escapeXML(e.file), escapeXML(album.Title), escapeXML(album.Artist), escapeXML(e.title), escapeXML(e.artist))
	})
}

func renderSMIL(decl string, album *model.Album, meta []string, entries []entry, media func(entry) string) string {
	var sb strings.Builder
	sb.WriteString(decl + "\n<smil>\n  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(album.Title))
	for _, m := range meta {
		sb.WriteString("    " + m + "\n")
	}
	sb.WriteString("  </head>\n  <body>\n    <seq>\n")
	for _, e := range entries {
		sb.WriteString("      " + media(e) + "\n")
	}
	sb.WriteString("    </seq>\n  </body>\n</smil>\n")
	return sb.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// SortTracks orders tracks by track number, unknown numbers last, then by path.
func SortTracks(tracks []*model.Track) {
	sort.SliceStable(tracks, func(i, j int) bool {
		a, b := tracks[i], tracks[j]
		if (a.Number == 0) != (b.Number == 0) {
			return a.Number != 0
		}
		if a.Number != b.Number {
			return a.Number < b.Number
		}
		return a.Path < b.Path
	})
}
