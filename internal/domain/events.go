package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventCurrentIndexChanged EventType = "CurrentIndexChanged"
	EventLoadMoreRequested   EventType = "LoadMoreRequested"
	EventSettled             EventType = "Settled"
	EventWindowEmptied       EventType = "WindowEmptied"
	EventSourceChanged       EventType = "SourceChanged"
	EventItemsRevealed       EventType = "ItemsRevealed"
	EventScanCompleted       EventType = "ScanCompleted"
	EventError               EventType = "Error"
	EventConfigLoaded        EventType = "ConfigLoaded"
	EventConfigSaved         EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// CurrentIndexChangedEvent is emitted when the pager moves to another page
type CurrentIndexChangedEvent struct {
	Index  int
	Length int
}

func (e CurrentIndexChangedEvent) Type() EventType { return EventCurrentIndexChanged }

// LoadMoreRequestedEvent is emitted when the pager nears the end of the sequence
type LoadMoreRequestedEvent struct {
	Length int
}

func (e LoadMoreRequestedEvent) Type() EventType { return EventLoadMoreRequested }

// SettledEvent is emitted once scrolling has come to rest
type SettledEvent struct {
	Index int
}

func (e SettledEvent) Type() EventType { return EventSettled }

// WindowEmptiedEvent is emitted when the sequence shrinks to nothing
type WindowEmptiedEvent struct{}

func (e WindowEmptiedEvent) Type() EventType { return EventWindowEmptied }

// SourceChangedEvent is emitted when the backing directory changed on disk
type SourceChangedEvent struct {
	Length int
	// Replaced is set when existing items may have new content
	Replaced bool
}

func (e SourceChangedEvent) Type() EventType { return EventSourceChanged }

// ItemsRevealedEvent is emitted when another batch of items becomes visible
type ItemsRevealedEvent struct {
	Added  int
	Length int
}

func (e ItemsRevealedEvent) Type() EventType { return EventItemsRevealed }

// ScanCompletedEvent is emitted when the directory has been read
type ScanCompletedEvent struct {
	Dir   string
	Total int
}

func (e ScanCompletedEvent) Type() EventType { return EventScanCompleted }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path    string
	BaseDir string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
