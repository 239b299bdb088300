package source

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"

	"lazypager/internal/domain"
	"lazypager/internal/eventbus"
	"lazypager/internal/logging"
)

// sniffLen is how much of a file is inspected to tell text from binary
const sniffLen = 512

// Options controls which files a DirSource exposes
type Options struct {
	// BatchSize is the number of files revealed per LoadMore
	BatchSize     int
	IncludeHidden bool
	// Extensions limits the source to these suffixes, matched case-insensitively
	Extensions   []string
	PreviewLines int
	CacheSize    int
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{
		BatchSize:    50,
		PreviewLines: 200,
		CacheSize:    64,
	}
}

type fileEntry struct {
	path    string
	name    string
	size    int64
	modTime time.Time
}

func (e fileEntry) sameAs(o fileEntry) bool {
	return e.path == o.path && e.size == o.size && e.modTime.Equal(o.modTime)
}

type preview struct {
	modTime time.Time
	lines   []string
	binary  bool
}

// Change describes the effect of a rescan
type Change struct {
	Before int
	Length int
	// Replaced is set when an already revealed index now holds different content
	Replaced bool
}

// Changed reports whether the pager has anything to react to
func (c Change) Changed() bool {
	return c.Replaced || c.Before != c.Length
}

// DirSource exposes the files of one directory as a sequence of items.
// Files are revealed in batches, so the sequence grows as the pager asks for
// more. It is safe for concurrent use.
type DirSource struct {
	dir    string
	opts   Options
	bus    eventbus.EventBus
	logger *slog.Logger

	mu       sync.RWMutex
	entries  []fileEntry
	revealed int

	previews *lru.Cache[string, preview]
}

// NewDirSource reads dir and reveals the first batch
func NewDirSource(dir string, opts Options, bus eventbus.EventBus, logger *slog.Logger) (*DirSource, error) {
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", opts.BatchSize)
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultOptions().CacheSize
	}
	cache, err := lru.New[string, preview](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create preview cache: %w", err)
	}

	s := &DirSource{
		dir:      dir,
		opts:     opts,
		bus:      bus,
		logger:   logging.Default(logger).With("component", "source", "dir", dir),
		previews: cache,
	}

	entries, err := s.scan()
	if err != nil {
		return nil, err
	}
	s.entries = entries
	s.revealed = min(opts.BatchSize, len(entries))
	s.logger.Info("directory scanned", "files", len(entries), "revealed", s.revealed)

	if bus != nil {
		bus.Publish(eventbus.ScanCompletedEvent{Dir: dir, Total: len(entries)})
	}
	return s, nil
}

// Dir returns the directory the source reads
func (s *DirSource) Dir() string {
	return s.dir
}

// Len implements pager.SequenceSource
func (s *DirSource) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revealed
}

// ElementAt implements pager.SequenceSource. An index that is no longer
// revealed, or a file that vanished since the last scan, is a miss.
func (s *DirSource) ElementAt(index int) (domain.Item, bool) {
	s.mu.RLock()
	if index < 0 || index >= s.revealed {
		s.mu.RUnlock()
		return domain.Item{}, false
	}
	e := s.entries[index]
	s.mu.RUnlock()

	p, err := s.preview(e)
	if err != nil {
		s.logger.Warn("failed to read file", "path", e.path, "error", err)
		return domain.Item{}, false
	}
	return domain.Item{
		Path:    e.path,
		Name:    e.name,
		Size:    e.size,
		ModTime: e.modTime,
		Preview: p.lines,
		Binary:  p.binary,
	}, true
}

// Progress reports how much of the directory is revealed
func (s *DirSource) Progress() domain.ScanProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ScanProgress{Dir: s.dir, Total: len(s.entries), Revealed: s.revealed}
}

// LoadMore reveals the next batch of files and returns how many were added.
// Once everything is revealed it does nothing.
func (s *DirSource) LoadMore() int {
	s.mu.Lock()
	before := s.revealed
	s.revealed = min(s.revealed+s.opts.BatchSize, len(s.entries))
	added, length := s.revealed-before, s.revealed
	s.mu.Unlock()

	if added == 0 {
		return 0
	}
	s.logger.Debug("revealed files", "added", added, "length", length)
	if s.bus != nil {
		s.bus.Publish(eventbus.ItemsRevealedEvent{Added: added, Length: length})
	}
	return added
}

// Rescan re-reads the directory. Removed files shrink the sequence; when
// everything was revealed before, new files are revealed right away.
func (s *DirSource) Rescan() (Change, error) {
	entries, err := s.scan()
	if err != nil {
		return Change{}, err
	}

	s.mu.Lock()
	old, oldRevealed := s.entries, s.revealed
	s.entries = entries
	if oldRevealed >= len(old) {
		s.revealed = len(entries)
	} else {
		s.revealed = min(oldRevealed, len(entries))
	}
	change := Change{Before: oldRevealed, Length: s.revealed}
	for i := 0; i < min(oldRevealed, s.revealed); i++ {
		if !old[i].sameAs(entries[i]) {
			change.Replaced = true
			break
		}
	}
	s.mu.Unlock()

	s.logger.Debug("directory rescanned",
		"files", len(entries), "before", change.Before,
		"length", change.Length, "replaced", change.Replaced)
	return change, nil
}

func (s *DirSource) scan() ([]fileEntry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", s.dir, err)
	}

	entries := make([]fileEntry, 0, len(dirEntries))
	for _, d := range dirEntries {
		if !d.Type().IsRegular() {
			continue
		}
		if !s.opts.IncludeHidden && strings.HasPrefix(d.Name(), ".") {
			continue
		}
		if !s.matchesExtension(d.Name()) {
			continue
		}
		info, err := d.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		entries = append(entries, fileEntry{
			path:    filepath.Join(s.dir, d.Name()),
			name:    d.Name(),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}
	// ReadDir sorts by name already; keep the order explicit
	slices.SortFunc(entries, func(a, b fileEntry) int {
		return strings.Compare(a.name, b.name)
	})
	return entries, nil
}

func (s *DirSource) matchesExtension(name string) bool {
	if len(s.opts.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range s.opts.Extensions {
		want = strings.ToLower(want)
		if !strings.HasPrefix(want, ".") {
			want = "." + want
		}
		if ext == want {
			return true
		}
	}
	return false
}

func (s *DirSource) preview(e fileEntry) (preview, error) {
	if p, ok := s.previews.Get(e.path); ok && p.modTime.Equal(e.modTime) {
		return p, nil
	}

	f, err := os.Open(e.path)
	if err != nil {
		return preview{}, err
	}
	defer f.Close()

	p, err := readPreview(f, s.opts.PreviewLines)
	if err != nil {
		return preview{}, err
	}
	p.modTime = e.modTime
	s.previews.Add(e.path, p)
	return p, nil
}

func readPreview(r io.Reader, maxLines int) (preview, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return preview{}, err
	}
	if isBinary(head) {
		return preview{binary: true}, nil
	}

	var lines []string
	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for len(lines) < maxLines && sc.Scan() {
		lines = append(lines, strings.ReplaceAll(sc.Text(), "\t", "    "))
	}
	if err := sc.Err(); err != nil && err != bufio.ErrTooLong {
		return preview{}, err
	}
	return preview{lines: lines}, nil
}

func isBinary(head []byte) bool {
	if bytes.IndexByte(head, 0) >= 0 {
		return true
	}
	// a multi-byte rune may be cut at the end of the sniffed block
	for len(head) > 0 && !utf8.Valid(head) {
		if len(head) < sniffLen-utf8.UTFMax {
			return true
		}
		head = head[:len(head)-1]
	}
	return false
}
