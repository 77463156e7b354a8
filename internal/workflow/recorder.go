package workflow

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/johnnyphung-laccd/calricula/internal/models"
)

// Recorder builds history entries for accepted transitions.
type Recorder struct {
	now   func() time.Time
	newID func() string
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides the identifier source.
func WithIDGenerator(newID func() string) RecorderOption {
	return func(r *Recorder) {
		if newID != nil {
			r.newID = newID
		}
	}
}

// NewRecorder constructs a recorder using uuid identifiers and UTC time.
func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Record returns a new, uniquely identified history entry.
func (r *Recorder) Record(recordType models.RecordType, recordID string, from, to models.RecordStatus, actorID, comment string) models.TransitionRecord {
	rec := models.TransitionRecord{
		ID:         r.newID(),
		RecordType: recordType,
		RecordID:   recordID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actorID,
		CreatedAt:  r.now(),
	}
	if trimmed := strings.TrimSpace(comment); trimmed != "" {
		rec.Comment = &trimmed
	}
	return rec
}
