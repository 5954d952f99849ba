package bot

import (
	"time"
)

// MessageKind identifies the semantic category of an inbound event the
// router branches on.
type MessageKind string

const (
	// KindText is a plain text message.
	KindText MessageKind = "text"
	// KindImage is an image message whose content must be fetched and
	// classified.
	KindImage MessageKind = "image"
	// KindOther is any event the pipeline does not handle. It yields no
	// reply and no side effects.
	KindOther MessageKind = "other"
)

// Event is one unit of a webhook delivery, already decoupled from the
// platform SDK's event types by the platform adapter.
type Event struct {
	Kind       MessageKind
	ReplyToken string
	UserID     string
	MessageID  string
	Text       string
	Timestamp  time.Time
}

// Status describes what happened to one event's pipeline.
type Status string

const (
	// StatusReplied means a reply was dispatched for the event.
	StatusReplied Status = "replied"
	// StatusSkipped means the event produced no reply by design
	// (unsupported kind or stale reply token).
	StatusSkipped Status = "skipped"
	// StatusFailed means reply dispatch failed.
	StatusFailed Status = "failed"
)

// Outcome is the per-event processing result collected by the router for
// observability. The router never retries.
type Outcome struct {
	Status Status
	Kind   MessageKind
	Reason string
	Err    error
}

// Interpretation is the derived semantic classification of an image's
// content. Labels and Objects preserve the order returned by the
// classification service.
type Interpretation struct {
	IsFood   bool
	IsPerson bool
	Labels   []string
	Objects  []string
}
