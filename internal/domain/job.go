package domain

// JobStatus enumerates job lifecycle states as reported to clients.
type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusSucceeded  JobStatus = "succeeded"
	JobStatusFailed     JobStatus = "failed"
	JobStatusNotFound   JobStatus = "not_found"
)

// Reusable reports whether an identical request should be served from this job
// instead of submitting a new one.
func (s JobStatus) Reusable() bool {
	return s == JobStatusProcessing || s == JobStatusSucceeded
}

// Recognized JobRecord.Meta keys.
const (
	// MetaUpstreamOutputURL holds the provider-hosted location of the video.
	MetaUpstreamOutputURL = "upstream_output_url"
	// MetaError holds the last error message reported by the provider.
	MetaError = "error"
)

// JobRecord is the tracked state of one generation request.
type JobRecord struct {
	ID         string            `json:"id"`
	Status     JobStatus         `json:"status"`
	VideoPath  string            `json:"video_path,omitempty"`
	Provider   string            `json:"provider"`
	PromptHash string            `json:"prompt_hash"`
	Cached     bool              `json:"cached,omitempty"`
	Meta       map[string]string `json:"meta,omitempty"`
}

// Clone returns a deep copy so callers never share the Meta map with a store.
func (r JobRecord) Clone() JobRecord {
	out := r
	if r.Meta != nil {
		out.Meta = make(map[string]string, len(r.Meta))
		for k, v := range r.Meta {
			out.Meta[k] = v
		}
	}
	return out
}

// UpstreamURL returns the provider output location, if known.
func (r JobRecord) UpstreamURL() string {
	return r.Meta[MetaUpstreamOutputURL]
}
