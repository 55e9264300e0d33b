// Package jobs runs invoice extraction asynchronously: an in-memory job store
// with TTL eviction, a bounded queue, and a worker pool.
package jobs

import (
	"cmp"
	"crypto/sha256"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dgallion1/invoicegest/internal/invoice"
	"github.com/google/uuid"
)

// Status represents the state of an extraction job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusReading    Status = "reading"
	StatusExtracting Status = "extracting"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job tracks the state of a single uploaded invoice.
type Job struct {
	mu sync.Mutex

	ID       string
	DocID    string
	Filename string

	Status Status
	Phase  string

	CreatedAt time.Time
	UpdatedAt time.Time

	fileData []byte
	result   *invoice.Result
	errors   []string
}

// NewJob creates a queued job for an uploaded file. DocID is derived from the
// content, so re-uploads of the same bytes share it.
func NewJob(filename string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		DocID:     ContentHashHex(data)[:16],
		Filename:  filename,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status Status, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// Finish stores the extraction result, releases the upload bytes, and moves
// the job to its terminal status.
func (j *Job) Finish(res invoice.Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = &res
	j.fileData = nil
	if res.Failed() {
		j.Status = StatusFailed
		if res.Failure != nil {
			j.errors = append(j.errors, res.Failure.Error())
		}
	} else {
		j.Status = StatusCompleted
	}
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// Snapshot is a read-only, JSON-safe copy of job state.
type Snapshot struct {
	ID        string          `json:"job_id"`
	DocID     string          `json:"doc_id"`
	Status    Status          `json:"status"`
	Phase     string          `json:"phase"`
	Filename  string          `json:"filename"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Errors    []string        `json:"errors"`
	Result    *invoice.Result `json:"-"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := slices.Clone(j.errors)
	if errs == nil {
		errs = []string{}
	}
	var res *invoice.Result
	if j.result != nil {
		r := *j.result
		r.Fields = slices.Clone(r.Fields)
		res = &r
	}
	return Snapshot{
		ID:        j.ID,
		DocID:     j.DocID,
		Status:    j.Status,
		Phase:     j.Phase,
		Filename:  j.Filename,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
		Errors:    errs,
		Result:    res,
	}
}

// Store is a thread-safe in-memory job registry with TTL eviction.
type Store struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *Store) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *Store) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *Store) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// Completed returns snapshots of jobs whose extraction succeeded, oldest
// first.
func (s *Store) Completed() []Snapshot {
	s.mu.Lock()
	jobs := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()

	out := make([]Snapshot, 0, len(jobs))
	for _, j := range jobs {
		snap := j.Snapshot()
		if snap.Status == StatusCompleted && snap.Result != nil {
			out = append(out, snap)
		}
	}
	slices.SortFunc(out, func(a, b Snapshot) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
