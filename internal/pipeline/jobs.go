package pipeline

import (
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/dgallion1/affigen/internal/casefile"
	"github.com/dgallion1/affigen/internal/doctree"
)

// JobStatus represents the state of a generation job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusGenerating JobStatus = "generating"
	StatusAssembling JobStatus = "assembling"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Affidavit kinds a generated body can be assembled into.
const (
	KindPoseurBuyer      = "poseur-buyer"
	KindArrestingOfficer = "arresting-officer"
)

// Failure codes reported on failed jobs.
const (
	CodeQueueFull     = "queue_full"
	CodeTimeout       = "timeout"
	CodeUnavailable   = "unavailable"
	CodeInvalidOutput = "invalid_output"
	CodeFailed        = "generation_failed"
)

// Job tracks the state of a single affidavit generation.
type Job struct {
	mu sync.Mutex

	ID   string `json:"job_id"`
	Kind string `json:"kind"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`
	Code   string    `json:"code,omitempty"`

	Model    string `json:"model,omitempty"`
	Attempts int    `json:"attempts"`

	CaseHash  string    `json:"case_hash"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	caseDetails *casefile.CaseDetails
	station     *casefile.PoliceStation
	result      doctree.Document
	errors      []string
}

// NewJob creates a queued job for c. An empty kind means poseur-buyer.
func NewJob(kind string, c *casefile.CaseDetails, station *casefile.PoliceStation) *Job {
	if kind == "" {
		kind = KindPoseurBuyer
	}
	now := time.Now()
	return &Job{
		ID:          uuid.New().String(),
		Kind:        kind,
		Status:      StatusQueued,
		Phase:       "queued",
		CaseHash:    CaseHash(kind, c),
		CreatedAt:   now,
		UpdatedAt:   now,
		caseDetails: c,
		station:     station,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// FindCompleted returns a completed job other than exclude with the given
// case hash, or nil.
func (s *JobStore) FindCompleted(hash, exclude string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, job := range s.jobs {
		if id == exclude {
			continue
		}
		job.mu.Lock()
		done := job.Status == StatusCompleted && job.CaseHash == hash
		job.mu.Unlock()
		if done {
			return job
		}
	}
	return nil
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
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

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Fail marks the job failed with a code and message.
func (j *Job) Fail(code, msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusFailed
	j.Code = code
	if msg != "" {
		j.errors = append(j.errors, msg)
	}
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// IncrAttempts counts one call to the generator.
func (j *Job) IncrAttempts() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Attempts++
	j.UpdatedAt = time.Now()
}

// Complete stores the assembled document.
func (j *Job) Complete(doc doctree.Document, model, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = doc
	j.Model = model
	j.Status = StatusCompleted
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Result returns a copy of the assembled document, nil until completed.
func (j *Job) Result() doctree.Document {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.result == nil {
		return nil
	}
	return j.result.Clone()
}

// Case returns the case record the job generates from.
func (j *Job) Case() *casefile.CaseDetails { return j.caseDetails }

// Station returns the station the affidavit is sworn at.
func (j *Job) Station() *casefile.PoliceStation { return j.station }

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string           `json:"job_id"`
	Kind      string           `json:"kind"`
	Status    JobStatus        `json:"status"`
	Phase     string           `json:"phase"`
	Code      string           `json:"code,omitempty"`
	Model     string           `json:"model,omitempty"`
	Attempts  int              `json:"attempts"`
	CaseHash  string           `json:"case_hash"`
	Errors    []string         `json:"errors"`
	Document  doctree.Document `json:"document,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.errors...)
	var doc doctree.Document
	if j.result != nil {
		doc = j.result.Clone()
	}
	return JobSnapshot{
		ID:        j.ID,
		Kind:      j.Kind,
		Status:    j.Status,
		Phase:     j.Phase,
		Code:      j.Code,
		Model:     j.Model,
		Attempts:  j.Attempts,
		CaseHash:  j.CaseHash,
		Errors:    errs,
		Document:  doc,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}

// CaseHash is the BLAKE3 hex digest of the affidavit kind and the case
// record's JSON. Identical requests hash alike.
func CaseHash(kind string, c *casefile.CaseDetails) string {
	data, err := json.Marshal(c)
	if err != nil {
		data = nil
	}
	h := blake3.New()
	h.Write([]byte(kind))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
