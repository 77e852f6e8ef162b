// Command bcconvert expands Bandcamp FLAC archives into an artist/album tree
// and converts every track to a tagged MP3.
//
// Usage:
//
//	bcconvert [flags] path...          expand archives under path and convert
//	bcconvert convert [flags] dir...   convert already expanded album directories
//	bcconvert check                    report whether flac, lame and metaflac are installed
//	bcconvert config init              write a default configuration file
//
// Settings are read from ~/.config/bcconvert/config.toml when present; flags
// override them.
package main
