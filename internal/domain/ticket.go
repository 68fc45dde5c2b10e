package domain

// CustomFields are the optional business annotations appended to a ticket
// description. Order is significant when rendered: Modulo, NumeroTramite,
// IdentificadorOperacion.
type CustomFields struct {
	Modulo                 string
	NumeroTramite          string
	IdentificadorOperacion string
}

// Empty reports whether no custom field is present.
func (f CustomFields) Empty() bool {
	return f.Modulo == "" && f.NumeroTramite == "" && f.IdentificadorOperacion == ""
}

// TicketRequest is the parsed ticket creation input, scoped to one HTTP request.
type TicketRequest struct {
	ProjectID    int
	Subject      string
	Description  string
	TrackerID    int
	PriorityID   int
	CustomFields CustomFields
	Requester    *Requester
	Attachments  []Attachment
}

// TicketResult is the outcome of a successful ticket creation.
type TicketResult struct {
	TicketID            int
	AttachmentsUploaded int
}
