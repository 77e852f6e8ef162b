// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Streaming archive entries to disk
//   - Atomic file writes
//   - Existence checks and tolerant removal
//   - Directory creation
//   - Image resizing and format conversion
//
// # File Operations
//
//	// Stream a reader into a new file
//	err := ioutils.CopyToFile(ctx, rc, "/dst/01 Song.flac", 0644)
//
//	// Write data to file
//	err := ioutils.WriteFile(ctx, "/path/to/Album.m3u", []byte("content"))
//
//	// Remove a partial output, ignoring "not exist"
//	err := ioutils.RemoveIfExists("/path/to/01 Song.mp3")
//
// # Image Processing
//
// The ImageService handles cover art manipulation:
//
//	svc := ioutils.NewImageService()
//
//	// Resize image to fit within 500x500
//	resized, _ := svc.ResizeImage(ctx, imageData, 500, 500)
//
//	// Convert to JPEG
//	jpeg, _ := svc.ConvertToJPEG(ctx, pngData)
package ioutils
