package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current status of a download job
type JobStatus string

const (
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// TerminalState classifies how a job ended
type TerminalState string

const (
	TerminalCompleted TerminalState = "completed"
	TerminalFailed    TerminalState = "failed"
	TerminalCancelled TerminalState = "cancelled"
)

// TerminalResult is the final outcome of a supervised download process.
// For Failed results the exit code and full captured stderr are attached,
// never discarded. Cancelled is a normal outcome, not an error.
type TerminalResult struct {
	State    TerminalState `json:"state"`
	ExitCode int           `json:"exit_code,omitempty"`
	Stderr   string        `json:"stderr,omitempty"`
	Err      error         `json:"-"`
}

// Completed builds a successful terminal result
func Completed() TerminalResult {
	return TerminalResult{State: TerminalCompleted}
}

// Cancelled builds a user-cancelled terminal result
func Cancelled() TerminalResult {
	return TerminalResult{State: TerminalCancelled}
}

// Failed builds a failed terminal result with diagnostics attached
func Failed(exitCode int, stderr string, err error) TerminalResult {
	return TerminalResult{State: TerminalFailed, ExitCode: exitCode, Stderr: stderr, Err: err}
}

// Job is a single download run. Exactly one job may be running per process;
// a job reaching any terminal state releases the slot.
type Job struct {
	ID           string       `json:"id" gorm:"primaryKey"`
	URL          string       `json:"url" gorm:"not null"`
	Format       OutputFormat `json:"format" gorm:"not null"`
	Status       JobStatus    `json:"status" gorm:"not null;index"`
	ErrorMessage string       `json:"error_message,omitempty"`
	ExitCode     int          `json:"exit_code,omitempty"`
	Destination  string       `json:"destination,omitempty"`
	CreatedAt    time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
	StartedAt    *time.Time   `json:"started_at,omitempty"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
}

// NewJob creates a running job for the given settings
func NewJob(settings DownloadSettings) *Job {
	now := time.Now()
	return &Job{
		ID:          uuid.New().String(),
		URL:         settings.URL,
		Format:      settings.OutputFormat,
		Status:      StatusRunning,
		Destination: settings.DestinationDir,
		CreatedAt:   now,
		UpdatedAt:   now,
		StartedAt:   &now,
	}
}

// ApplyResult transitions the job to the terminal state carried by result
func (j *Job) ApplyResult(result TerminalResult) {
	now := time.Now()
	j.UpdatedAt = now
	j.CompletedAt = &now

	switch result.State {
	case TerminalCompleted:
		j.Status = StatusCompleted
	case TerminalCancelled:
		j.Status = StatusCancelled
	case TerminalFailed:
		j.Status = StatusFailed
		j.ExitCode = result.ExitCode
		if result.Err != nil {
			j.ErrorMessage = result.Err.Error()
		}
		if j.ErrorMessage == "" && result.Stderr != "" {
			j.ErrorMessage = result.Stderr
		}
	}
}

// IsTerminal checks if the job has finished
func (j *Job) IsTerminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed || j.Status == StatusCancelled
}

// IsRunning checks if the job is currently running
func (j *Job) IsRunning() bool {
	return j.Status == StatusRunning
}
