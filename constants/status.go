package constants

// JobStatus is the canonical status for rows in generation_jobs.
type JobStatus string

// Stable values (store these exact strings in DB and on the wire).
const (
	JobStatusPending    JobStatus = "pending"    // accepted, waiting for a worker
	JobStatusProcessing JobStatus = "processing" // pipeline running
	JobStatusCompleted  JobStatus = "completed"  // terminal success
	JobStatusFailed     JobStatus = "failed"     // terminal failure
)

// JobStatuses holds every status a generation job may carry.
var JobStatuses = []string{
	string(JobStatusPending),
	string(JobStatusProcessing),
	string(JobStatusCompleted),
	string(JobStatusFailed),
}

// Terminal reports whether s ends the job's lifecycle. Only completed and
// failed are terminal; any other value means generation is still underway.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}
