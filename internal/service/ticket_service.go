package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-gateway/internal/audit"
	"github.com/spec-kit/helpdesk-gateway/internal/config"
	"github.com/spec-kit/helpdesk-gateway/internal/domain"
	"github.com/spec-kit/helpdesk-gateway/internal/observability"
	"github.com/spec-kit/helpdesk-gateway/internal/redmine"
	"github.com/spec-kit/helpdesk-gateway/pkg/util"
)

// Upstream issue defaults applied when the request does not specify them.
const (
	defaultTrackerID  = 1 // Bug/Support
	defaultPriorityID = 2 // Normal
)

// UpstreamCaller issues raw calls against the upstream API.
type UpstreamCaller interface {
	Call(ctx context.Context, method, endpoint string, payload any, headers map[string]string) (json.RawMessage, error)
}

// UpstreamAPI is the full upstream surface the ticket workflow needs.
type UpstreamAPI interface {
	UpstreamCaller
	Upload(ctx context.Context, att domain.Attachment) (domain.UploadReference, error)
}

// TicketService sequences the ticket creation workflow: validate, resolve
// identity, upload attachments, compose the description, create the issue
// upstream, emit an audit record.
type TicketService struct {
	upstream UpstreamAPI
	recorder audit.Recorder
	logger   *zap.Logger
	metrics  *observability.Metrics
	cfg      config.UpstreamConfig
	features config.FeatureConfig
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	Upstream UpstreamAPI
	Recorder audit.Recorder
	Logger   *zap.Logger
	Metrics  *observability.Metrics
}

// NewTicketService constructs the service.
func NewTicketService(cfg config.UpstreamConfig, features config.FeatureConfig, deps TicketDependencies) *TicketService {
	return &TicketService{
		upstream: deps.Upstream,
		recorder: deps.Recorder,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		cfg:      cfg,
		features: features,
	}
}

// CreateTicket runs the creation workflow. The first hard failure
// short-circuits the remaining steps; attachment upload failures are soft
// and only shrink the uploads list.
func (s *TicketService) CreateTicket(ctx context.Context, req domain.TicketRequest) (*domain.TicketResult, error) {
	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Description) == "" {
		s.metrics.RecordTicketFailed("validation")
		return nil, util.NewValidationError("subject and description are required")
	}

	if s.features.RequireRequesterIdentity && !req.Requester.Valid() {
		s.metrics.RecordTicketFailed("missing_identity")
		return nil, util.NewMissingIdentity("requester identity with email is required")
	}

	uploads := s.uploadAttachments(ctx, req.Attachments)

	payload := redmine.IssuePayload{
		ProjectID:   req.ProjectID,
		Subject:     req.Subject,
		Description: s.composeDescription(req),
		TrackerID:   req.TrackerID,
		PriorityID:  req.PriorityID,
		Uploads:     uploads,
	}
	if payload.ProjectID == 0 {
		payload.ProjectID = s.cfg.DefaultProjectID
	}
	if payload.TrackerID == 0 {
		payload.TrackerID = defaultTrackerID
	}
	if payload.PriorityID == 0 {
		payload.PriorityID = defaultPriorityID
	}

	raw, err := s.upstream.Call(ctx, http.MethodPost, redmine.EndpointIssues, redmine.CreateIssueRequest{Issue: payload}, nil)
	if err != nil {
		s.metrics.RecordTicketFailed("upstream")
		s.auditFailure(ctx, req, len(uploads), err)
		return nil, err
	}

	var created redmine.CreatedIssue
	if err := json.Unmarshal(raw, &created); err != nil || created.Issue.ID == 0 {
		s.logger.Error("upstream create response missing issue id", zap.ByteString("body", raw))
		s.metrics.RecordTicketFailed("upstream")
		s.auditFailure(ctx, req, len(uploads), fmt.Errorf("create response missing issue id"))
		return nil, util.NewUpstreamError("upstream create response missing issue id", 0, raw)
	}

	s.metrics.RecordTicketCreated()
	s.auditSuccess(ctx, req, created.Issue.ID, len(uploads))

	return &domain.TicketResult{
		TicketID:            created.Issue.ID,
		AttachmentsUploaded: len(uploads),
	}, nil
}

// uploadAttachments uploads files strictly sequentially, in input order.
// Failures and filtered files are logged and dropped; partial success is an
// accepted terminal state.
func (s *TicketService) uploadAttachments(ctx context.Context, attachments []domain.Attachment) []domain.UploadReference {
	uploads := make([]domain.UploadReference, 0, len(attachments))
	for _, att := range attachments {
		if s.features.RestrictAttachmentsToImages && !strings.HasPrefix(att.MimeType, "image/") {
			s.logger.Warn("skipping non-image attachment",
				zap.String("filename", att.FileName),
				zap.String("mime_type", att.MimeType))
			s.metrics.RecordUpload("filtered")
			continue
		}
		ref, err := s.upstream.Upload(ctx, att)
		if err != nil {
			s.logger.Warn("attachment upload failed, skipping",
				zap.String("filename", att.FileName),
				zap.Error(err))
			s.metrics.RecordUpload("failure")
			continue
		}
		s.metrics.RecordUpload("success")
		uploads = append(uploads, ref)
	}
	return uploads
}

// composeDescription appends the requester and custom-field sections to the
// base description. Custom fields keep a fixed order.
func (s *TicketService) composeDescription(req domain.TicketRequest) string {
	var b strings.Builder
	b.WriteString(req.Description)

	if req.Requester != nil {
		b.WriteString("\n\n---\nRequester Information:\n")
		fmt.Fprintf(&b, "Name: %s\n", req.Requester.Name)
		fmt.Fprintf(&b, "Email: %s\n", req.Requester.Email)
		if req.Requester.Username != "" {
			fmt.Fprintf(&b, "Username: %s\n", req.Requester.Username)
		}
	}

	if !req.CustomFields.Empty() {
		b.WriteString("\n\n---\nAdditional Information:\n")
		if req.CustomFields.Modulo != "" {
			fmt.Fprintf(&b, "Módulo: %s\n", req.CustomFields.Modulo)
		}
		if req.CustomFields.NumeroTramite != "" {
			fmt.Fprintf(&b, "Número de trámite: %s\n", req.CustomFields.NumeroTramite)
		}
		if req.CustomFields.IdentificadorOperacion != "" {
			fmt.Fprintf(&b, "Identificador de operación: %s\n", req.CustomFields.IdentificadorOperacion)
		}
	}

	return b.String()
}

func (s *TicketService) auditSuccess(ctx context.Context, req domain.TicketRequest, ticketID, uploaded int) {
	if s.recorder == nil {
		return
	}
	record := auditRecord(req, uploaded)
	record.TicketID = ticketID
	s.recorder.Success(ctx, record)
}

// auditFailure emits a failure record when the requester identity is known.
func (s *TicketService) auditFailure(ctx context.Context, req domain.TicketRequest, uploaded int, err error) {
	if s.recorder == nil || !req.Requester.Valid() {
		return
	}
	record := auditRecord(req, uploaded)
	record.Error = err.Error()
	s.recorder.Failure(ctx, record)
}

func auditRecord(req domain.TicketRequest, uploaded int) audit.Record {
	record := audit.Record{
		Subject:         req.Subject,
		AttachmentCount: uploaded,
	}
	if req.Requester != nil {
		record.RequesterName = req.Requester.Name
		record.RequesterEmail = req.Requester.Email
		record.RequesterUsername = req.Requester.Username
	}
	return record
}
