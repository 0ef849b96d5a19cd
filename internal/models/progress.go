package models

// EventKind classifies a ProgressEvent.
type EventKind int

const (
	KindStatus EventKind = iota
	KindPercent
	KindError
	KindComplete
)

// ProgressEvent is the single normalized progress representation. The wire
// shape matches what the browser consumes; Kind gives downstream code a
// tagged view so nothing ever branches on payload shape.
type ProgressEvent struct {
	Percent  *float64 `json:"progress,omitempty"`
	Status   string   `json:"status,omitempty"`
	Error    string   `json:"error,omitempty"`
	Details  string   `json:"details,omitempty"`
	Complete bool     `json:"complete,omitempty"`
	File     string   `json:"file,omitempty"`
}

// Kind reports the event's tag. Terminal tags win over incidental fields.
func (e ProgressEvent) Kind() EventKind {
	switch {
	case e.Complete:
		return KindComplete
	case e.Error != "":
		return KindError
	case e.Percent != nil:
		return KindPercent
	default:
		return KindStatus
	}
}

// Terminal reports whether the event ends its session's stream.
func (e ProgressEvent) Terminal() bool {
	k := e.Kind()
	return k == KindComplete || k == KindError
}

// PercentEvent builds a percentage event with an accompanying status phrase.
func PercentEvent(pct float64, status string) ProgressEvent {
	return ProgressEvent{Percent: &pct, Status: status}
}

// StatusEvent builds a plain status event.
func StatusEvent(status string) ProgressEvent {
	return ProgressEvent{Status: status}
}

// ErrorEvent builds a terminal error event.
func ErrorEvent(msg, details string) ProgressEvent {
	return ProgressEvent{Error: msg, Details: details}
}

// CompleteEvent builds the terminal success event for an artifact.
func CompleteEvent(file string) ProgressEvent {
	return ProgressEvent{Complete: true, File: file}
}
