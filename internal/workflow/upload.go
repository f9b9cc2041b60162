package workflow

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kbility/taxassist/internal/document"
)

// ErrUploadInFlight rejects a submission while another one is running.
var ErrUploadInFlight = errors.New("an upload is already in progress")

// Pipeline drives document submission. On success the extraction result is
// written to the handoff cell and the restart hook fires, so the process
// re-enters on the Results view with a clean slate. On failure nothing is
// written and the Upload view stays active.
type Pipeline struct {
	mu        sync.Mutex
	transport Transport
	handoff   *Handoff
	restart   func()
	inFlight  bool
}

func NewPipeline(t Transport, handoff *Handoff, restart func()) *Pipeline {
	return &Pipeline{transport: t, handoff: handoff, restart: restart}
}

// InFlight reports whether a submission is running.
func (p *Pipeline) InFlight() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}

// SubmitSingle uploads one document.
func (p *Pipeline) SubmitSingle(ctx context.Context, up document.Upload) error {
	return p.submit(ctx, []document.Upload{up}, func(ctx context.Context) (document.Result, error) {
		return p.transport.Upload(ctx, up)
	})
}

// SubmitMultiple uploads a batch; result rows come back in input order.
func (p *Pipeline) SubmitMultiple(ctx context.Context, ups []document.Upload) error {
	return p.submit(ctx, ups, func(ctx context.Context) (document.Result, error) {
		return p.transport.UploadMulti(ctx, ups)
	})
}

func (p *Pipeline) submit(ctx context.Context, ups []document.Upload, do func(context.Context) (document.Result, error)) error {
	if len(ups) == 0 {
		return errors.New("no file selected")
	}
	for _, up := range ups {
		if !acceptable(up) {
			return fmt.Errorf("unsupported file type: %s (PDF or image required)", up.Name)
		}
	}

	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return ErrUploadInFlight
	}
	p.inFlight = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.inFlight = false
		p.mu.Unlock()
	}()

	res, err := do(ctx)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	if err := res.Validate(); err != nil {
		return fmt.Errorf("malformed extraction result: %w", err)
	}
	if err := p.handoff.Put(res); err != nil {
		return err
	}
	if p.restart != nil {
		p.restart()
	}
	return nil
}

func acceptable(up document.Upload) bool {
	if strings.HasPrefix(up.MIME, "image/") || up.MIME == "application/pdf" {
		return true
	}
	return strings.EqualFold(filepath.Ext(up.Name), ".pdf")
}
