package events

import "sync"

// Event names understood by the UI layer
const (
	DownloadCancel = "sys:downloadCancel"
	DownloadBack   = "sys:downloadBack"
	DownloadError  = "sys:downloadError"
)

// Emitter delivers a named event with a JSON-serialisable payload
type Emitter interface {
	Emit(event string, payload any)
}

// Func adapts a plain function to Emitter
type Func func(event string, payload any)

// Emit calls f
func (f Func) Emit(event string, payload any) {
	f(event, payload)
}

// Discard drops every event
var Discard Emitter = Func(func(string, any) {})

// Multi forwards each event to every emitter in order
type Multi []Emitter

// Emit fans the event out
func (m Multi) Emit(event string, payload any) {
	for _, e := range m {
		if e != nil {
			e.Emit(event, payload)
		}
	}
}

// Record is a captured event
type Record struct {
	Event   string
	Payload any
}

// Recorder keeps every event in memory. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

// Emit appends the event
func (r *Recorder) Emit(event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, Record{Event: event, Payload: payload})
}

// Records returns a copy of everything emitted so far
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Named returns the payloads of all events with the given name
func (r *Recorder) Named(event string) []any {
	var out []any
	for _, rec := range r.Records() {
		if rec.Event == event {
			out = append(out, rec.Payload)
		}
	}
	return out
}
