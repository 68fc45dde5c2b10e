package redmine

import "github.com/spec-kit/helpdesk-gateway/internal/domain"

// Upstream endpoint paths. Each carries its own leading slash and is appended
// verbatim to the configured base URL.
const (
	EndpointProjects   = "/projects.json"
	EndpointTrackers   = "/trackers.json"
	EndpointPriorities = "/enumerations/issue_priorities.json"
	EndpointIssues     = "/issues.json"
	EndpointUploads    = "/uploads.json"
)

// IssuePayload is the wire shape of a new issue. Uploads is omitted entirely
// when empty: some upstream versions treat an empty list differently from an
// absent field.
type IssuePayload struct {
	ProjectID   int                      `json:"project_id"`
	Subject     string                   `json:"subject"`
	Description string                   `json:"description"`
	TrackerID   int                      `json:"tracker_id"`
	PriorityID  int                      `json:"priority_id"`
	Uploads     []domain.UploadReference `json:"uploads,omitempty"`
}

// CreateIssueRequest wraps the payload in the envelope the upstream expects.
type CreateIssueRequest struct {
	Issue IssuePayload `json:"issue"`
}

// CreatedIssue is the subset of the creation response the gateway reads back.
type CreatedIssue struct {
	Issue struct {
		ID int `json:"id"`
	} `json:"issue"`
}

// ProjectList is the decoded shape of the project listing response.
type ProjectList struct {
	Projects   []domain.Project `json:"projects"`
	TotalCount int              `json:"total_count"`
}

type uploadResponse struct {
	Upload struct {
		Token string `json:"token"`
	} `json:"upload"`
}
