// Package audio writes ID3 tags into converted MP3 files and generates
// album playlists.
//
// # ID3 Tagging
//
// Use the Tagger to commit parsed tag assignments to an MP3:
//
//	tagger := audio.NewTagger()
//	err := tagger.Commit(outputPath, assignments, coverJPEG)
//
// Tags are always saved as ID3v2.4 with UTF-8 text frames. The tagger
// supports:
//   - Title, Artist, Album, Album Artist
//   - Track Number (with optional total)
//   - Recording date
//   - Cover Art (embedded in MP3)
//
// # Playlist Generation
//
// Generate playlists in various formats:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist(album)
//	os.WriteFile(album.PlaylistPath, []byte(content), 0644)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
