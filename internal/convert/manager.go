package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/handiism/bandcamp-converter/internal/archive"
	"github.com/handiism/bandcamp-converter/internal/audio"
	"github.com/handiism/bandcamp-converter/internal/config"
	ioutils "github.com/handiism/bandcamp-converter/internal/io"
	"github.com/handiism/bandcamp-converter/internal/model"
	"golang.org/x/sync/errgroup"
)

// LockFileName is created in the unpack directory while a run holds it.
const LockFileName = ".bcconvert.lock"

// albumJob is one album directory and the sources discovered in it.
type albumJob struct {
	album   *model.Album
	sources []string
	artwork []byte
}

// Summary counts outcomes of a run.
type Summary struct {
	Total     int
	Converted int
	Skipped   int
	Failed    int
}

// Manager coordinates archive expansion and conversion.
type Manager struct {
	settings     *config.Settings
	expander     *archive.Expander
	pipeline     *Pipeline
	playlist     *audio.PlaylistCreator
	imageService *ioutils.ImageService

	jobs   []*albumJob
	queued map[string]struct{}
	lock   *flock.Flock

	totalFiles     int32
	processedFiles int32

	results    []model.Result
	onProgress func(ProgressEvent)
	mu         sync.Mutex
}

// NewManager creates a new conversion Manager. onProgress is called from
// the pipeline goroutines and must be safe for concurrent use.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent)) *Manager {
	pathCfg := settings.ToPathConfig()

	return &Manager{
		settings:     settings,
		expander:     archive.NewExpander(pathCfg, settings.ArchiveExtension),
		pipeline:     NewPipeline(settings),
		playlist:     audio.NewPlaylistCreator(pathCfg.PlaylistFormat, settings.M3UExtended),
		imageService: ioutils.NewImageService(),
		queued:       make(map[string]struct{}),
		onProgress:   onProgress,
	}
}

// Run expands the archives found under paths and converts their contents.
func (m *Manager) Run(ctx context.Context, paths []string) ([]model.Result, error) {
	if err := m.Initialize(ctx, paths); err != nil {
		return nil, err
	}
	return m.StartConversions(ctx)
}

// ConvertDirs converts already expanded album directories.
func (m *Manager) ConvertDirs(ctx context.Context, dirs []string) ([]model.Result, error) {
	if err := m.AddDirs(ctx, dirs); err != nil {
		return nil, err
	}
	return m.StartConversions(ctx)
}

// Initialize finds archives under paths and expands each into the unpack
// directory, queueing the lossless files inside for conversion.
//
// Archives are expanded one at a time. A mismatched name, an existing
// destination or a broken archive skips that archive only. The returned
// error is reserved for conditions that abort the run: the unpack
// directory lock or cancellation.
func (m *Manager) Initialize(ctx context.Context, paths []string) error {
	if err := m.acquireLock(); err != nil {
		return err
	}

	for _, root := range paths {
		// Unreadable subtrees are reported; archives found elsewhere still run.
		archives, err := archive.FindMatching(root, m.settings.ArchiveExtension, m.settings.Descend)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error searching %s: %v", root, err), Level: LevelError, Path: root})
		}

		for _, zipPath := range archives {
			if err := ctx.Err(); err != nil {
				return err
			}
			m.expandArchive(ctx, zipPath)
		}
	}

	return nil
}

// AddDirs queues the lossless files under already expanded album directories.
func (m *Manager) AddDirs(ctx context.Context, dirs []string) error {
	if err := m.acquireLock(); err != nil {
		return err
	}

	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return err
		}
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Not a directory: %s", dir), Level: LevelError, Path: dir})
			continue
		}
		m.addAlbum(ctx, model.AlbumFromDir(dir, m.settings.ToPathConfig()))
	}

	return nil
}

func (m *Manager) expandArchive(ctx context.Context, zipPath string) {
	var (
		album *model.Album
		name  archive.Name
		err   error
	)
	if m.settings.DryRun {
		album, name, err = m.expander.Destination(zipPath)
		if err == nil {
			if exists, _ := ioutils.Exists(album.Path); exists {
				err = fmt.Errorf("%s: %w", album.Path, archive.ErrDestinationExists)
			}
		}
	} else {
		album, name, err = m.expander.Expand(ctx, zipPath)
	}

	if name.Kind == archive.MatchLoose {
		m.progress(ProgressEvent{
			Message: fmt.Sprintf("Did not match the strict name pattern for %s, check names (artist %q, album %q)", filepath.Base(zipPath), name.Artist, name.Album),
			Level:   LevelWarning,
			Path:    zipPath,
		})
	}

	switch {
	case errors.Is(err, archive.ErrNameMismatch):
		m.progress(ProgressEvent{Message: fmt.Sprintf("Archive %s does not match the expected pattern", zipPath), Level: LevelError, Path: zipPath})
		return
	case errors.Is(err, archive.ErrDestinationExists):
		m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping unzip of %s: %v", filepath.Base(zipPath), err), Level: LevelWarning, Path: zipPath})
		return
	case err != nil:
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error expanding %s: %v", zipPath, err), Level: LevelError, Path: zipPath})
		return
	}

	if m.settings.DryRun {
		entries, err := archive.Entries(zipPath, m.settings.SourceExtension)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error reading %s: %v", zipPath, err), Level: LevelError, Path: zipPath})
			return
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Would unzip to %s", album.Path), Level: LevelInfo, Path: zipPath})
		job := &albumJob{album: album}
		for _, e := range entries {
			job.sources = append(job.sources, filepath.Join(album.Path, e))
		}
		m.queue(job)
		return
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Unzipped to %s", album.Path), Level: LevelInfo, Path: zipPath})
	m.addAlbum(ctx, album)
}

// addAlbum discovers the sources of an album directory and loads its cover.
// Discovery always descends: multi-disc archives nest their tracks.
func (m *Manager) addAlbum(ctx context.Context, album *model.Album) {
	sources, err := archive.FindMatching(album.Path, m.settings.SourceExtension, true)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error searching %s: %v", album.Path, err), Level: LevelError, Path: album.Path})
	}
	if len(sources) == 0 {
		if err == nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("No %s files in %s", m.settings.SourceExtension, album.Path), Level: LevelWarning, Path: album.Path})
		}
		return
	}

	job := &albumJob{album: album, sources: sources}
	kept := m.queue(job)
	if dup := len(sources) - kept; dup > 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("%d files in %s are already queued", dup, album.Path), Level: LevelVerbose, Path: album.Path})
	}
	if kept == 0 {
		return
	}

	if !m.settings.DryRun {
		job.artwork, err = m.loadArtwork(ctx, album.Path)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error loading cover art for %s: %v", album.Title, err), Level: LevelWarning, Path: album.Path})
		}
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Found album: %s - %s (%d files)", album.Artist, album.Title, kept), Level: LevelVerbose, Path: album.Path})
}

// queue adds job, dropping sources an earlier job already holds so that no
// file gets two pipelines. Overlapping or repeated input directories are the
// usual cause. Jobs left without sources are not queued. It returns the
// number of sources kept.
func (m *Manager) queue(job *albumJob) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := job.sources[:0]
	for _, source := range job.sources {
		key := sourceKey(source)
		if _, dup := m.queued[key]; dup {
			continue
		}
		m.queued[key] = struct{}{}
		kept = append(kept, source)
	}
	job.sources = kept
	if len(kept) == 0 {
		return 0
	}

	m.jobs = append(m.jobs, job)
	m.totalFiles += int32(len(kept))
	return len(kept)
}

// sourceKey identifies a source file independent of how its path was spelled.
func sourceKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}

// StartConversions runs one pipeline per queued source and waits for all of
// them.
//
// Pipelines are launched eagerly with no ordering between files; with
// MaxConcurrentConversions > 0 at most that many run at once. A failed file
// never cancels its siblings. After cancellation no new pipeline starts and
// the remaining sources are reported as failed without being touched.
//
// Results are returned in completion order.
func (m *Manager) StartConversions(ctx context.Context) ([]model.Result, error) {
	if m.settings.DryRun {
		return m.dryRun(), nil
	}

	var g errgroup.Group
	if n := m.settings.MaxConcurrentConversions; n > 0 {
		g.SetLimit(n)
	}

	albumResults := make([][]model.Result, len(m.jobs))
	var albumMu sync.Mutex

	for i, job := range m.jobs {
		for _, source := range job.sources {
			if err := ctx.Err(); err != nil {
				res := notStarted(source, m.settings.OutputExtension, err)
				m.finish(res)
				continue
			}
			g.Go(func() error {
				res := m.ConvertFile(ctx, source, job.artwork)
				albumMu.Lock()
				albumResults[i] = append(albumResults[i], res)
				albumMu.Unlock()
				// Returning nil keeps one failure from affecting other files.
				return nil
			})
		}
	}

	_ = g.Wait()

	if m.settings.CreatePlaylist {
		for i, job := range m.jobs {
			m.writePlaylist(ctx, job, albumResults[i])
		}
	}

	s := m.Summary()
	level := LevelSuccess
	if s.Failed > 0 {
		level = LevelWarning
	}
	m.progress(ProgressEvent{
		Message: fmt.Sprintf("Done: %d converted, %d skipped, %d failed", s.Converted, s.Skipped, s.Failed),
		Level:   level,
	})

	return m.Results(), ctx.Err()
}

// ConvertFile runs the pipeline for one source and reports its outcome.
func (m *Manager) ConvertFile(ctx context.Context, source string, artwork []byte) model.Result {
	var res model.Result
	if err := ctx.Err(); err != nil {
		res = notStarted(source, m.settings.OutputExtension, err)
	} else {
		res = m.pipeline.Run(ctx, source, artwork)
	}
	m.finish(res)
	return res
}

func notStarted(source, ext string, reason error) model.Result {
	return model.Result{
		Source:  source,
		Output:  model.OutputPath(source, ext),
		Outcome: model.OutcomeFailed,
		Reason:  fmt.Errorf("not started: %w", reason),
	}
}

// finish records a result and emits the matching progress events.
func (m *Manager) finish(res model.Result) {
	m.mu.Lock()
	m.results = append(m.results, res)
	m.mu.Unlock()
	atomic.AddInt32(&m.processedFiles, 1)

	switch res.Outcome {
	case model.OutcomeConverted:
		m.progress(ProgressEvent{Message: fmt.Sprintf("Converted: %s", filepath.Base(res.Output)), Level: LevelSuccess, Path: res.Output})
	case model.OutcomeSkipped:
		m.progress(ProgressEvent{Message: fmt.Sprintf("File already exists at %s, skipping", res.Output), Level: LevelInfo, Path: res.Source})
	case model.OutcomeFailed:
		m.progress(ProgressEvent{Message: fmt.Sprintf("Failed %s: %v", filepath.Base(res.Source), res.Reason), Level: LevelError, Path: res.Source})
	}
	for _, w := range res.Warnings {
		m.progress(ProgressEvent{Message: fmt.Sprintf("%s: %s", filepath.Base(res.Source), w), Level: LevelWarning, Path: res.Source})
	}
}

func (m *Manager) dryRun() []model.Result {
	for _, job := range m.jobs {
		for _, source := range job.sources {
			output := model.OutputPath(source, m.settings.OutputExtension)
			res := model.Result{Source: source, Output: output, Outcome: model.OutcomePending}
			if exists, _ := ioutils.Exists(output); exists {
				res.Outcome = model.OutcomeSkipped
				res.Reason = ErrOutputExists
				m.progress(ProgressEvent{Message: fmt.Sprintf("Would skip %s, output exists", source), Level: LevelInfo, Path: source})
			} else {
				m.progress(ProgressEvent{Message: fmt.Sprintf("Would convert %s", source), Level: LevelInfo, Path: source})
			}
			m.mu.Lock()
			m.results = append(m.results, res)
			m.mu.Unlock()
			atomic.AddInt32(&m.processedFiles, 1)
		}
	}
	return m.Results()
}

// writePlaylist lists the album's outputs that exist after the run.
func (m *Manager) writePlaylist(ctx context.Context, job *albumJob, results []model.Result) {
	album := job.album
	album.Tracks = album.Tracks[:0]
	for _, res := range results {
		if res.Outcome == model.OutcomeConverted || res.Outcome == model.OutcomeSkipped {
			album.Tracks = append(album.Tracks, model.NewTrack(album, res.Output, res.Tags))
		}
	}
	if len(album.Tracks) == 0 {
		return
	}

	content := m.playlist.CreatePlaylist(album)
	if err := ioutils.WriteFile(ctx, album.PlaylistPath, []byte(content)); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning, Path: album.PlaylistPath})
		return
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist for %s", album.Title), Level: LevelSuccess, Path: album.PlaylistPath})
}

// GetProgress returns processed and total file counts.
func (m *Manager) GetProgress() (processed, total int32) {
	m.mu.Lock()
	total = m.totalFiles
	m.mu.Unlock()
	return atomic.LoadInt32(&m.processedFiles), total
}

// GetAlbumNames returns the names of all queued albums.
func (m *Manager) GetAlbumNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, len(m.jobs))
	for i, job := range m.jobs {
		names[i] = fmt.Sprintf("%s - %s (%d files)", job.album.Artist, job.album.Title, len(job.sources))
	}
	return names
}

// Results returns a copy of the results recorded so far.
func (m *Manager) Results() []model.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Result(nil), m.results...)
}

// Summary counts the results recorded so far.
func (m *Manager) Summary() Summary {
	var s Summary
	for _, res := range m.Results() {
		s.Total++
		switch res.Outcome {
		case model.OutcomeConverted:
			s.Converted++
		case model.OutcomeSkipped:
			s.Skipped++
		case model.OutcomeFailed:
			s.Failed++
		}
	}
	return s
}

// acquireLock takes the unpack directory lock once per Manager. Dry runs
// write nothing and do not lock.
func (m *Manager) acquireLock() error {
	if !m.settings.LockUnpackDir || m.settings.DryRun || m.lock != nil {
		return nil
	}
	if err := ioutils.EnsureDir(m.settings.UnpackDir); err != nil {
		return fmt.Errorf("create unpack directory: %w", err)
	}

	lock := flock.New(filepath.Join(m.settings.UnpackDir, LockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", m.settings.UnpackDir, ErrLocked)
	}
	m.lock = lock
	return nil
}

// Close releases the unpack directory lock, if held.
func (m *Manager) Close() error {
	if m.lock == nil {
		return nil
	}
	err := m.lock.Unlock()
	m.lock = nil
	return err
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
