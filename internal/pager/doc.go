// Package pager implements a virtualized paging window over a randomly
// addressable sequence.
//
// Only a narrow band of indices around the current index is materialized at
// any time. The Pager decides which indices must be loaded, keeps their
// positions stable while the user pages, evicts entries that fall out of the
// preload radius and reconciles against a backing sequence that may grow,
// shrink or be replaced between calls.
//
// Rendering, gestures and layout belong to the host. The engine talks to it
// through two ports:
//
//   - SequenceSource: length and random access to the backing data
//   - ViewHost: materializes, releases and positions page views
//
// A Pager is not safe for concurrent use. Every call, including the work
// handed to its Scheduler, must run on one timeline; integrations marshal
// their inputs onto that timeline before calling in.
package pager
