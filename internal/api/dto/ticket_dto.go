package dto

// CreateTicketForm captures the multipart fields of a ticket creation
// request. Files arrive separately under the "attachments" field.
type CreateTicketForm struct {
	ProjectID              int    `form:"project_id"`
	Subject                string `form:"subject"`
	Description            string `form:"description"`
	TrackerID              int    `form:"tracker_id"`
	PriorityID             int    `form:"priority_id"`
	Modulo                 string `form:"modulo"`
	NumeroTramite          string `form:"numero_tramite"`
	IdentificadorOperacion string `form:"identificador_operacion"`
	// UserInfo is the serialized requester identity blob attached by the
	// upstream identity layer.
	UserInfo string `form:"user_info"`
}

// TicketInfo identifies the created upstream issue.
type TicketInfo struct {
	ID      int    `json:"id"`
	Subject string `json:"subject"`
}

// TicketCreatedResponse is returned on successful creation.
type TicketCreatedResponse struct {
	Message             string     `json:"message"`
	Ticket              TicketInfo `json:"ticket"`
	AttachmentsUploaded int        `json:"attachmentsUploaded"`
}

// HealthResponse reports service status.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Service string `json:"service"`
	Version string `json:"version"`
}
