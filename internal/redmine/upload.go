package redmine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-gateway/internal/domain"
	"github.com/spec-kit/helpdesk-gateway/pkg/util"
)

// Upload streams the raw bytes of one attachment to the upstream upload
// endpoint and returns the issued reference token. The original filename and
// mime type are preserved from the input; the upstream does not echo them
// back reliably.
func (c *Client) Upload(ctx context.Context, att domain.Attachment) (domain.UploadReference, error) {
	headers := map[string]string{"Content-Type": "application/octet-stream"}
	raw, err := c.do(ctx, http.MethodPost, EndpointUploads, bytes.NewReader(att.Content), headers)
	if err != nil {
		var domainErr *util.DomainError
		if errors.As(err, &domainErr) {
			return domain.UploadReference{}, util.NewUploadError(att.FileName, domainErr.Details)
		}
		return domain.UploadReference{}, util.NewUploadError(att.FileName, nil)
	}

	var decoded uploadResponse
	if err := json.Unmarshal(raw, &decoded); err != nil || decoded.Upload.Token == "" {
		c.logger.Error("upload response missing token",
			zap.String("filename", att.FileName),
			zap.ByteString("body", raw))
		return domain.UploadReference{}, util.NewUploadError(att.FileName, raw)
	}

	return domain.UploadReference{
		Token:    decoded.Upload.Token,
		FileName: att.FileName,
		MimeType: att.MimeType,
	}, nil
}
