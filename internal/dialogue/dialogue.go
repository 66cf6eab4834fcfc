// Package dialogue holds the in-memory recipe-submission conversation: a
// per-chat session advancing photo -> title -> description. Sessions live
// only in process memory; a restart drops in-flight submissions.
package dialogue

import "time"

// Stage is the step a session is waiting on.
type Stage int

const (
	// StageIdle means no session exists for the identity.
	StageIdle Stage = iota
	StagePhoto
	StageTitle
	StageDescription
)

// EventKind tags an inbound dialogue event.
type EventKind int

const (
	EventStart EventKind = iota
	EventCancel
	EventPhoto
	EventText
)

// Event is the tagged union of things a chat identity can send.
type Event struct {
	Kind EventKind

	// Photo payload. URL may be empty when the transport could not resolve
	// one; the file id alone is kept.
	FileID string
	URL    string

	// Text payload.
	Text string
}

// Outcome describes how an event landed against the session stage.
type Outcome int

const (
	// OutcomeNone: the event had no session to act on. The caller decides
	// what the input means outside the dialogue.
	OutcomeNone Outcome = iota
	OutcomeStarted
	OutcomeCancelled
	// OutcomeRepromptPhoto: input other than a photo while one is expected.
	OutcomeRepromptPhoto
	// OutcomePhotoAccepted: waiting for the title now.
	OutcomePhotoAccepted
	OutcomeRepromptTitle
	// OutcomeTitleAccepted: waiting for the description now.
	OutcomeTitleAccepted
	OutcomeRepromptDescription
	// OutcomeCompleted: the session finished; Result.Draft holds the fields.
	OutcomeCompleted
)

// Draft carries the collected fields of a completed submission.
type Draft struct {
	PhotoFileID string
	PhotoURL    string
	Title       string
	Description string
}

// Result of advancing a session by one event.
type Result struct {
	Outcome Outcome
	// Expired is set when a stale session was dropped before the event was
	// evaluated; the event itself was then judged against the idle state.
	Expired bool
	Draft   Draft
}

type session struct {
	stage     Stage
	startedAt time.Time
	draft     Draft
}
