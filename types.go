package rdmc

// IngestRequest is the payload for creating or updating an RDMC entry.
// The manifest is the full document; the service extracts the derived
// fields from it and stores the raw manifest alongside them.
type IngestRequest struct {
	ExternalID       string   `json:"external_id"`
	ExternalIDScheme *string  `json:"external_id_scheme,omitempty"`
	Pid              *string  `json:"pid,omitempty"`
	PidScheme        *string  `json:"pid_scheme,omitempty"`
	Manifest         Manifest `json:"manifest"`
}

// IngestEvent is broadcast on the signal channel after a successful ingest.
type IngestEvent struct {
	ExternalID string `json:"external_id"`
	Title      string `json:"title"`
	Updated    bool   `json:"updated"`
}
