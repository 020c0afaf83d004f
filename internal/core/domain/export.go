package domain

import "time"

// JobStatus is the lifecycle state of an export job.
type JobStatus string

// Job statuses. JobNotFound is reported by status queries only; it is
// never stored.
const (
	JobStarted   JobStatus = "started"
	JobCancelled JobStatus = "cancelled"
	JobCompleted JobStatus = "completed"
	JobNotFound  JobStatus = "not_found"
)

// TypeCount is a content type scheduled for export and its stored total.
type TypeCount struct {
	Type  string `json:"type"`
	Total int    `json:"total"`
}

// Pages returns how many batches of size batchSize the type needs.
func (t TypeCount) Pages(batchSize int) int {
	if batchSize <= 0 || t.Total == 0 {
		return 0
	}
	return (t.Total + batchSize - 1) / batchSize
}

// ExportJob is the persisted cursor of a bulk export. Every batch re-reads
// it; nothing else carries state between batches.
type ExportJob struct {
	ID           string      `json:"id"`
	Status       JobStatus   `json:"status"`
	Types        []TypeCount `json:"types"`
	BatchSize    int         `json:"batch_size"`
	OutputDir    string      `json:"output_dir"`
	PushToRemote bool        `json:"push_to_remote"`

	// TypeIndex and Page form the cursor: the next batch exports page Page
	// (1-based) of Types[TypeIndex].
	TypeIndex int `json:"type_index"`
	Page      int `json:"page"`

	Processed  int `json:"processed"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Batches    int `json:"batches"`

	LastMessage string    `json:"last_message,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Total returns the number of posts across all scheduled types.
func (j *ExportJob) Total() int {
	total := 0
	for _, t := range j.Types {
		total += t.Total
	}
	return total
}

// CurrentType returns the type under the cursor, or "" when exhausted.
func (j *ExportJob) CurrentType() string {
	if j.TypeIndex < 0 || j.TypeIndex >= len(j.Types) {
		return ""
	}
	return j.Types[j.TypeIndex].Type
}

// Progress projects the job onto the polled status surface.
func (j *ExportJob) Progress() JobProgress {
	p := JobProgress{
		JobID:       j.ID,
		Status:      j.Status,
		Processed:   j.Processed,
		Total:       j.Total(),
		Successful:  j.Successful,
		Failed:      j.Failed,
		CurrentType: j.CurrentType(),
		Message:     j.LastMessage,
		UpdatedAt:   j.UpdatedAt,
	}
	switch {
	case j.Status == JobCompleted:
		p.ProgressPercent = 100
	case p.Total > 0:
		p.ProgressPercent = float64(j.Processed) * 100 / float64(p.Total)
	}
	return p
}

// JobProgress is the status object polled by clients.
type JobProgress struct {
	JobID           string    `json:"job_id"`
	Status          JobStatus `json:"status"`
	ProgressPercent float64   `json:"progress_percent"`
	Processed       int       `json:"processed"`
	Total           int       `json:"total"`
	Successful      int       `json:"successful"`
	Failed          int       `json:"failed"`
	CurrentType     string    `json:"current_type"`
	Message         string    `json:"message,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Terminal reports whether polling can stop.
func (p JobProgress) Terminal() bool {
	return p.Status == JobCompleted || p.Status == JobCancelled || p.Status == JobNotFound
}

// ExportRequest starts a bulk export.
type ExportRequest struct {
	// Types to export. Empty means every public type with stored posts.
	Types        []string
	OutputDir    string
	BatchSize    int
	PushToRemote bool
}
