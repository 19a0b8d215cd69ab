package present

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// PreviewJob renders one memo body. Run may be called on any goroutine.
type PreviewJob struct {
	Seq    uint64
	MemoID string

	ctx    context.Context
	source string
	r      Renderer
}

type PreviewResult struct {
	Seq    uint64
	MemoID string
	Output string
	Err    error
}

func (j PreviewJob) Run() PreviewResult {
	res := PreviewResult{Seq: j.Seq, MemoID: j.MemoID}
	if j.r == nil {
		res.Err = errors.New("preview: no renderer")
		return res
	}
	if err := j.ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	out, err := j.r.Render(j.ctx, j.source)
	if err == nil {
		err = j.ctx.Err()
	}
	res.Output = out
	res.Err = err
	return res
}

// Previewer tracks the latest preview job. Starting a job cancels the previous
// one, and only the latest job's result for the still-active memo is accepted.
type Previewer struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	log    *zap.Logger
}

func NewPreviewer(log *zap.Logger) *Previewer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Previewer{log: log}
}

func (p *Previewer) Start(parent context.Context, r Renderer, memoID, source string) PreviewJob {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	p.cancel = cancel
	p.seq++
	return PreviewJob{Seq: p.seq, MemoID: memoID, ctx: ctx, source: source, r: r}
}

// Accept reports whether res should replace the preview currently shown.
// Render failures are logged and rejected so the previous preview stays.
func (p *Previewer) Accept(res PreviewResult, activeID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if res.Seq != p.seq {
		return false
	}
	if res.MemoID != activeID {
		p.log.Debug("preview: memo no longer active; dropping", zap.String("memoId", res.MemoID), zap.String("activeId", activeID))
		return false
	}
	if res.Err != nil {
		if !errors.Is(res.Err, context.Canceled) {
			p.log.Warn("preview: render failed; keeping previous preview", zap.String("memoId", res.MemoID), zap.Error(res.Err))
		}
		return false
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	return true
}

// Cancel stops the in-flight job, if any.
func (p *Previewer) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}
