package domain

import "time"

// Item is one file shown as a page
type Item struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	// Preview holds the first lines of text files; empty for binary files
	Preview []string
	Binary  bool
}

// ScanProgress represents the current loading state of the source
type ScanProgress struct {
	Dir      string
	Total    int // files found on disk
	Revealed int // files handed to the pager so far
}

// Done reports whether every file has been revealed
func (p ScanProgress) Done() bool {
	return p.Revealed >= p.Total
}
