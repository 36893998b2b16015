package importer

import (
	"sync"
	"time"
)

// progressBuffer is the channel capacity before old updates are dropped.
const progressBuffer = 16

// Update is one progress notification of a running import.
type Update struct {
	Phase   string    `json:"phase"`
	Message string    `json:"message,omitempty"`
	Percent float64   `json:"percent"`
	At      time.Time `json:"at"`

	// Result carries the final outcome on the terminal update.
	Result *Result `json:"result,omitempty"`

	// Error carries the failure reason when Phase is PhaseError.
	Error string `json:"error,omitempty"`
}

// Progress is a non-blocking progress sink with a single consumer. A slow
// or absent consumer loses intermediate updates, never stalls the import;
// the newest update always wins over the oldest buffered one. A nil
// *Progress is valid and drops everything.
type Progress struct {
	mu     sync.Mutex
	ch     chan Update
	latest Update
	seen   bool
	closed bool
}

func NewProgress() *Progress {
	return &Progress{ch: make(chan Update, progressBuffer)}
}

// Publish records a phase update.
func (p *Progress) Publish(phase, message string, percent float64) {
	p.push(Update{Phase: phase, Message: message, Percent: percent})
}

// Complete records the terminal success update.
func (p *Progress) Complete(result *Result) {
	p.push(Update{Phase: PhaseCompleted, Percent: 100, Result: result})
}

// Fail records the terminal failure update.
func (p *Progress) Fail(err error) {
	p.push(Update{Phase: PhaseError, Error: err.Error()})
}

func (p *Progress) push(u Update) {
	if p == nil {
		return
	}
	u.At = time.Now().UTC()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.latest = u
	p.seen = true
	if p.closed {
		return
	}
	for {
		select {
		case p.ch <- u:
			return
		default:
			// Full: drop the oldest buffered update and retry.
			select {
			case <-p.ch:
			default:
			}
		}
	}
}

// Updates returns the consumer channel. Intended for a single consumer.
func (p *Progress) Updates() <-chan Update {
	if p == nil {
		return nil
	}
	return p.ch
}

// Latest returns the most recent update, for polling callers that do not
// hold the channel.
func (p *Progress) Latest() (Update, bool) {
	if p == nil {
		return Update{}, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latest, p.seen
}

// Close ends the update stream. Further publishes still refresh Latest.
func (p *Progress) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.ch)
	}
}
