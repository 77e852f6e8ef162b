// Package convert provides the conversion orchestration logic for turning
// Bandcamp FLAC archives into tagged MP3 files.
//
// # Manager
//
// The Manager coordinates the entire run:
//
//  1. Find archives under the input paths
//  2. Expand each into UnpackDir/Artist/Album
//  3. Discover FLAC files and load the album cover
//  4. Convert every file concurrently (see Pipeline)
//  5. Generate playlists (optional)
//
// # Basic Usage
//
//	manager := convert.NewManager(settings, func(event convert.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//	defer manager.Close()
//
//	results, err := manager.Run(ctx, []string{"/home/me/Downloads"})
//	if err != nil {
//	    // lock held by another run, or interrupted
//	}
//
// # Pipeline
//
// Each file goes through its own Pipeline: metaflac reads the tags while
// flac | lame transcodes, and the tags are committed as ID3v2.4 only after
// the encoder succeeded. The source is deleted last. Any failure removes
// the partial MP3 and leaves the FLAC in place, so a rerun retries it; an
// existing MP3 is skipped, so reruns never redo finished work.
//
// # Concurrency
//
// All pipelines are launched at once by default. MaxConcurrentConversions
// caps how many run at the same time. Cancelling the context kills running
// processes and rolls their outputs back.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	    Path    string
//	}
package convert
