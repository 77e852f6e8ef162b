// Package archive expands Bandcamp download archives and discovers files by
// extension.
//
// Archive names follow the "Artist - Album.zip" convention. ParseName splits
// them, Expander unpacks them into UnpackDir/Artist/Album, and FindMatching
// locates archives to expand as well as the lossless files inside expanded
// directories.
//
// Two conditions make an archive a skip rather than a failure:
//   - ErrNameMismatch: the name has no " - " separator
//   - ErrDestinationExists: the album directory is already there
package archive
