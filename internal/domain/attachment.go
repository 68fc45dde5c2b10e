package domain

// Attachment is a raw file received with a ticket creation request. Content is
// held in memory for the duration of one request only.
type Attachment struct {
	FileName string
	MimeType string
	Content  []byte
}

// UploadReference is the opaque handle issued by the upstream service for an
// uploaded attachment. FileName and MimeType are preserved from the input
// because the upstream does not echo them back reliably.
type UploadReference struct {
	Token    string `json:"token"`
	FileName string `json:"filename"`
	MimeType string `json:"content_type"`
}
