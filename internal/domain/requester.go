package domain

// Requester is the authenticated end-user metadata attached to an inbound
// request by the upstream identity layer. The gateway trusts it as-is.
type Requester struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Username  string `json:"username,omitempty"`
	SubjectID string `json:"subject_id,omitempty"`
}

// Valid reports whether the requester carries enough identity to satisfy the
// mandatory-identity variant. Email is the anchor field.
func (r *Requester) Valid() bool {
	return r != nil && r.Email != ""
}
