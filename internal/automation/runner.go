package automation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"go-excelproc/internal/jobs"
	"go-excelproc/internal/sheet"
)

// optionalWait bounds how long an optional step waits for its element.
const optionalWait = 3 * time.Second

// Runner drives a Chrome instance through a Script, one record at a time.
type Runner struct {
	script   *Script
	headless bool
	log      *zap.Logger
}

func NewRunner(script *Script, headless bool, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{script: script, headless: headless, log: log}
}

// Begin launches a browser for one job.
func (r *Runner) Begin(ctx context.Context) (jobs.Run, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-popup-blocking", true),
	)
	if r.headless {
		opts = append(opts, chromedp.Headless)
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &browserRun{
		script: r.script,
		log:    r.log,
		ctx:    browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
	}, nil
}

type browserRun struct {
	script *Script
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func (b *browserRun) Process(ctx context.Context, rec sheet.Record) error {
	return b.steps(ctx, b.script.Steps, rec)
}

func (b *browserRun) Recover(ctx context.Context, rec sheet.Record) {
	if len(b.script.Recover) == 0 {
		return
	}
	if err := b.steps(ctx, b.script.Recover, rec); err != nil {
		b.log.Warn("recover steps failed", zap.String("user", rec.Label()), zap.Error(err))
	}
}

func (b *browserRun) Close() {
	b.once.Do(b.cancel)
}

func (b *browserRun) steps(ctx context.Context, steps []Step, rec sheet.Record) error {
	tctx, cancel := context.WithTimeout(b.ctx, b.script.Timeout)
	defer cancel()
	// Stop the record early when the job itself is cancelled.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	for i := range steps {
		step := &steps[i]
		action, err := step.browserAction(rec.Fields)
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
		}
		if err := b.run(tctx, step, action); err != nil {
			if step.Optional && tctx.Err() == nil {
				b.log.Debug("optional step skipped",
					zap.String("user", rec.Label()),
					zap.Int("step", i+1),
					zap.String("action", step.Action),
					zap.Error(err))
				continue
			}
			return fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
		}
	}
	return nil
}

func (b *browserRun) run(ctx context.Context, step *Step, action chromedp.Action) error {
	if !step.Optional {
		return chromedp.Run(ctx, action)
	}
	octx, cancel := context.WithTimeout(ctx, optionalWait)
	defer cancel()
	return chromedp.Run(octx, action)
}

func (s *Step) browserAction(fields map[string]string) (chromedp.Action, error) {
	value, url, err := s.Expand(fields)
	if err != nil {
		return nil, err
	}
	switch s.Action {
	case ActionNavigate:
		return chromedp.Navigate(url), nil
	case ActionWaitVisible:
		return chromedp.WaitVisible(s.Selector, chromedp.ByQuery), nil
	case ActionClick:
		return chromedp.Click(s.Selector, chromedp.ByQuery), nil
	case ActionSendKeys:
		return chromedp.SendKeys(s.Selector, value, chromedp.ByQuery), nil
	case ActionSetValue:
		return chromedp.SetValue(s.Selector, value, chromedp.ByQuery), nil
	case ActionSleep:
		return chromedp.Sleep(s.Duration), nil
	case ActionEval:
		return chromedp.Evaluate(s.Script, nil), nil
	case ActionScrollIntoView:
		return chromedp.ScrollIntoView(s.Selector, chromedp.ByQuery), nil
	}
	return nil, fmt.Errorf("unknown action %q", s.Action)
}
