// Package jobs runs uploaded spreadsheets through a record processor in the
// background.
//
// Types:
//   - Job: Tracks one upload (or one data-form submission): its records,
//     counters, status and the stored file to remove when done.
//   - Manager: Starts jobs, keeps them for lookup and expires old ones.
//
// Expected outputs:
// - Job IDs are unique (UUID)
// - Records of a job are processed one after another; a failed record is
//   counted, recovered from, and skipped
// - The stored upload is removed once its job finishes
package jobs

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-excelproc/internal/sheet"
	"go-excelproc/internal/utils"

	"go.uber.org/zap"
)

type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Processor opens one Run per job.
type Processor interface {
	Begin(ctx context.Context) (Run, error)
}

// Run processes the records of a single job.
type Run interface {
	Process(ctx context.Context, rec sheet.Record) error
	// Recover brings the run back to a usable state after a failed record.
	Recover(ctx context.Context, rec sheet.Record)
	Close()
}

type Job struct {
	ID         string
	Source     string
	Records    []sheet.Record
	Processed  int
	Failed     int
	Status     Status
	Error      string
	CreatedAt  time.Time
	FinishedAt time.Time
	Mutex      sync.Mutex
	cleanup    func()
}

// View is the JSON shape of a job.
type View struct {
	ID         string     `json:"id"`
	Source     string     `json:"source"`
	Status     Status     `json:"status"`
	Total      int        `json:"total"`
	Processed  int        `json:"processed"`
	Failed     int        `json:"failed"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

func (j *Job) View() View {
	j.Mutex.Lock()
	defer j.Mutex.Unlock()
	v := View{
		ID:        j.ID,
		Source:    j.Source,
		Status:    j.Status,
		Total:     len(j.Records),
		Processed: j.Processed,
		Failed:    j.Failed,
		Error:     j.Error,
		CreatedAt: j.CreatedAt,
	}
	if !j.FinishedAt.IsZero() {
		t := j.FinishedAt
		v.FinishedAt = &t
	}
	return v
}

// finishedBefore reports whether the job has finished and did so more than
// ttl ago.
func (j *Job) finishedBefore(ttl time.Duration) bool {
	j.Mutex.Lock()
	defer j.Mutex.Unlock()
	if j.Status != StatusDone && j.Status != StatusFailed {
		return false
	}
	return time.Since(j.FinishedAt) > ttl
}

type Manager struct {
	Jobs      map[string]*Job
	Mutex     sync.RWMutex
	processor Processor
	log       *zap.Logger
	ctx       context.Context
	wg        sync.WaitGroup
}

// NewManager returns a manager whose jobs run under ctx; cancelling ctx
// aborts running jobs between records.
func NewManager(ctx context.Context, p Processor, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		Jobs:      make(map[string]*Job),
		processor: p,
		log:       log,
		ctx:       ctx,
	}
}

// Start registers a job and processes its records on a new goroutine.
// cleanup, if not nil, runs once the job has finished.
func (m *Manager) Start(source string, records []sheet.Record, cleanup func()) *Job {
	job := &Job{
		ID:        utils.GenerateUUID(),
		Source:    source,
		Records:   records,
		Status:    StatusQueued,
		CreatedAt: time.Now(),
		cleanup:   cleanup,
	}

	m.Mutex.Lock()
	m.Jobs[job.ID] = job
	m.Mutex.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run(job)
	}()
	return job
}

func (m *Manager) run(job *Job) {
	log := m.log.With(zap.String("job", job.ID), zap.String("source", job.Source))
	defer func() {
		if job.cleanup != nil {
			job.cleanup()
		}
	}()

	job.Mutex.Lock()
	job.Status = StatusRunning
	job.Mutex.Unlock()
	log.Info("job started", zap.Int("records", len(job.Records)))

	run, err := m.processor.Begin(m.ctx)
	if err != nil {
		log.Error("job could not start", zap.Error(err))
		m.finish(job, StatusFailed, err.Error())
		return
	}
	defer run.Close()

	for _, rec := range job.Records {
		if err := m.ctx.Err(); err != nil {
			log.Warn("job aborted", zap.Error(err))
			m.finish(job, StatusFailed, err.Error())
			return
		}
		if err := run.Process(m.ctx, rec); err != nil {
			log.Warn("record failed", zap.String("user", rec.Label()), zap.Int("row", rec.Row), zap.Error(err))
			run.Recover(m.ctx, rec)
			job.Mutex.Lock()
			job.Failed++
			job.Mutex.Unlock()
			continue
		}
		log.Info("record processed", zap.String("user", rec.Label()), zap.Int("row", rec.Row))
		job.Mutex.Lock()
		job.Processed++
		job.Mutex.Unlock()
	}

	v := job.View()
	log.Info("job completed", zap.Int("processed", v.Processed), zap.Int("failed", v.Failed))
	m.finish(job, StatusDone, "")
}

func (m *Manager) finish(job *Job, status Status, msg string) {
	job.Mutex.Lock()
	defer job.Mutex.Unlock()
	job.Status = status
	job.Error = msg
	job.FinishedAt = time.Now()
}

func (m *Manager) GetJob(id string) (*Job, bool) {
	m.Mutex.RLock()
	defer m.Mutex.RUnlock()
	job, exists := m.Jobs[id]
	return job, exists
}

// List returns every job, newest first.
func (m *Manager) List() []View {
	m.Mutex.RLock()
	views := make([]View, 0, len(m.Jobs))
	for _, j := range m.Jobs {
		views = append(views, j.View())
	}
	m.Mutex.RUnlock()

	sort.Slice(views, func(i, k int) bool {
		return views[i].CreatedAt.After(views[k].CreatedAt)
	})
	return views
}

func (m *Manager) DeleteJob(id string) {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()
	delete(m.Jobs, id)
}

// Expire drops jobs that finished more than ttl ago and returns how many it
// dropped.
func (m *Manager) Expire(ttl time.Duration) int {
	m.Mutex.Lock()
	defer m.Mutex.Unlock()
	n := 0
	for id, job := range m.Jobs {
		if job.finishedBefore(ttl) {
			delete(m.Jobs, id)
			n++
		}
	}
	return n
}

// RunJanitor calls Expire every interval until ctx is done.
func (m *Manager) RunJanitor(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Expire(ttl); n > 0 {
				m.log.Debug("expired jobs", zap.Int("count", n))
			}
		}
	}
}

// Wait blocks until every started job has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}
