package workflow

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// NotesPanel renders the canonical summary for one conversation. It
// observes the session's SummarySignal and refreshes once per raised
// signal, however many times Sync is called in between. It can also
// refresh on its own initiative, independent of the chat session.
type NotesPanel struct {
	mu        sync.Mutex
	transport Transport
	ownerKey  string
	signal    *SummarySignal
	text      string
	md        goldmark.Markdown
}

func NewNotesPanel(t Transport, ownerKey string, signal *SummarySignal) *NotesPanel {
	return &NotesPanel{
		transport: t,
		ownerKey:  ownerKey,
		signal:    signal,
		md:        goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Sync fetches the summary if and only if the signal has a pending,
// unclaimed raise. Callers invoke it on every render; only the first call
// after a Raise reaches the network.
func (p *NotesPanel) Sync(ctx context.Context) error {
	if p.ownerKey == "" || p.signal == nil || !p.signal.TryBegin() {
		return nil
	}
	if err := p.fetch(ctx); err != nil {
		// Leave the signal claimed-and-done; the user can retry via
		// Refresh rather than every render retrying implicitly.
		p.signal.Acknowledge()
		return err
	}
	p.signal.Acknowledge()
	return nil
}

// Refresh fetches the summary unconditionally.
func (p *NotesPanel) Refresh(ctx context.Context) error {
	return p.fetch(ctx)
}

// Text returns the currently rendered summary.
func (p *NotesPanel) Text() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text
}

// HTML renders the summary markdown as HTML, for export.
func (p *NotesPanel) HTML() (string, error) {
	p.mu.Lock()
	text := p.text
	p.mu.Unlock()

	var buf bytes.Buffer
	if err := p.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}
	return buf.String(), nil
}

func (p *NotesPanel) fetch(ctx context.Context) error {
	var summary string
	var err error
	if p.ownerKey == GeneralOwnerKey {
		summary, err = p.transport.GeneralSummary(ctx)
	} else {
		summary, err = p.transport.Summary(ctx, p.ownerKey)
	}
	if err != nil {
		return fmt.Errorf("fetch summary: %w", err)
	}
	if strings.HasPrefix(summary, errorSentinel) {
		// A refusal is not a summary; keep whatever was shown before.
		return nil
	}

	p.mu.Lock()
	p.text = summary
	p.mu.Unlock()
	return nil
}
