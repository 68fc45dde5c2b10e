package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-gateway/internal/api/dto"
	"github.com/spec-kit/helpdesk-gateway/internal/config"
	"github.com/spec-kit/helpdesk-gateway/internal/domain"
	"github.com/spec-kit/helpdesk-gateway/internal/identity"
	"github.com/spec-kit/helpdesk-gateway/internal/service"
	"github.com/spec-kit/helpdesk-gateway/pkg/util"
)

// Header carrying the gateway-issued identity token, when the identity layer
// forwards one instead of the form blob.
const identityTokenHeader = "X-Forwarded-User-Token"

// attachmentField is the multipart field holding uploaded files.
const attachmentField = "attachments"

// TicketsHandler manages ticket creation and lookup endpoints.
type TicketsHandler struct {
	tickets     *service.TicketService
	catalog     *service.CatalogService
	attachments config.AttachmentConfig
	logger      *zap.Logger
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, catalog *service.CatalogService, attachments config.AttachmentConfig, logger *zap.Logger) *TicketsHandler {
	return &TicketsHandler{
		tickets:     tickets,
		catalog:     catalog,
		attachments: attachments,
		logger:      logger,
	}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var form dto.CreateTicketForm
	if err := c.BodyParser(&form); err != nil {
		return util.NewValidationError("invalid payload")
	}

	attachments, err := h.readAttachments(c)
	if err != nil {
		return err
	}

	requester := identity.ParseBlob(form.UserInfo, h.logger)
	if requester == nil {
		requester = identity.ParseToken(c.Get(identityTokenHeader), h.logger)
	}

	req := domain.TicketRequest{
		ProjectID:   form.ProjectID,
		Subject:     form.Subject,
		Description: form.Description,
		TrackerID:   form.TrackerID,
		PriorityID:  form.PriorityID,
		CustomFields: domain.CustomFields{
			Modulo:                 form.Modulo,
			NumeroTramite:          form.NumeroTramite,
			IdentificadorOperacion: form.IdentificadorOperacion,
		},
		Requester:   requester,
		Attachments: attachments,
	}

	result, err := h.tickets.CreateTicket(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.TicketCreatedResponse{
		Message:             "ticket created",
		Ticket:              dto.TicketInfo{ID: result.TicketID, Subject: form.Subject},
		AttachmentsUploaded: result.AttachmentsUploaded,
	})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return util.NewValidationError("invalid ticket id")
	}
	raw, err := h.catalog.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return rawJSON(c, raw)
}

// readAttachments pulls uploaded files out of the multipart form, enforcing
// the count and per-file size limits.
func (h *TicketsHandler) readAttachments(c *fiber.Ctx) ([]domain.Attachment, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// Not multipart: a ticket without files is still valid.
		return nil, nil
	}

	files := form.File[attachmentField]
	if len(files) == 0 {
		return nil, nil
	}
	if h.attachments.MaxCount > 0 && len(files) > h.attachments.MaxCount {
		return nil, util.NewValidationError(fmt.Sprintf("at most %d attachments allowed", h.attachments.MaxCount))
	}

	attachments := make([]domain.Attachment, 0, len(files))
	for _, fileHeader := range files {
		if h.attachments.MaxSizeBytes > 0 && fileHeader.Size > h.attachments.MaxSizeBytes {
			return nil, util.NewDomainError("PAYLOAD_TOO_LARGE",
				fmt.Sprintf("attachment %q exceeds the %d byte limit", fileHeader.Filename, h.attachments.MaxSizeBytes),
				http.StatusRequestEntityTooLarge, nil)
		}
		content, err := readFile(fileHeader)
		if err != nil {
			h.logger.Error("failed to read uploaded file", zap.String("filename", fileHeader.Filename), zap.Error(err))
			return nil, util.NewInternalError(err)
		}
		mimeType := fileHeader.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		attachments = append(attachments, domain.Attachment{
			FileName: fileHeader.Filename,
			MimeType: mimeType,
			Content:  content,
		})
	}
	return attachments, nil
}

func readFile(fileHeader *multipart.FileHeader) ([]byte, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close() //nolint:errcheck
	return io.ReadAll(file)
}
