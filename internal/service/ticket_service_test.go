package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-gateway/internal/audit"
	"github.com/spec-kit/helpdesk-gateway/internal/config"
	"github.com/spec-kit/helpdesk-gateway/internal/domain"
	"github.com/spec-kit/helpdesk-gateway/internal/observability"
	"github.com/spec-kit/helpdesk-gateway/internal/redmine"
	"github.com/spec-kit/helpdesk-gateway/pkg/util"
)

// fakeUpstream counts calls and lets tests script per-file upload outcomes.
type fakeUpstream struct {
	callCount   int
	lastPayload any
	callErr     error
	callResp    json.RawMessage

	uploadCount int
	failUploads map[string]bool
}

func (f *fakeUpstream) Call(ctx context.Context, method, endpoint string, payload any, headers map[string]string) (json.RawMessage, error) {
	f.callCount++
	f.lastPayload = payload
	if f.callErr != nil {
		return nil, f.callErr
	}
	if f.callResp != nil {
		return f.callResp, nil
	}
	return json.RawMessage(`{"issue":{"id":4242}}`), nil
}

func (f *fakeUpstream) Upload(ctx context.Context, att domain.Attachment) (domain.UploadReference, error) {
	f.uploadCount++
	if f.failUploads[att.FileName] {
		return domain.UploadReference{}, util.NewUploadError(att.FileName, nil)
	}
	return domain.UploadReference{Token: "token-" + att.FileName, FileName: att.FileName, MimeType: att.MimeType}, nil
}

// fakeRecorder captures audit emissions.
type fakeRecorder struct {
	successes []audit.Record
	failures  []audit.Record
}

func (f *fakeRecorder) Success(ctx context.Context, record audit.Record) {
	f.successes = append(f.successes, record)
}

func (f *fakeRecorder) Failure(ctx context.Context, record audit.Record) {
	f.failures = append(f.failures, record)
}

func newTicketService(upstream *fakeUpstream, recorder audit.Recorder, features config.FeatureConfig) *TicketService {
	return NewTicketService(
		config.UpstreamConfig{BaseURL: "http://redmine.local", APIKey: "key", DefaultProjectID: 7},
		features,
		TicketDependencies{
			Upstream: upstream,
			Recorder: recorder,
			Logger:   zap.NewNop(),
			Metrics:  observability.NewMetrics(),
		},
	)
}

func issuePayload(t *testing.T, upstream *fakeUpstream) redmine.IssuePayload {
	t.Helper()
	req, ok := upstream.lastPayload.(redmine.CreateIssueRequest)
	require.True(t, ok, "create payload should be a CreateIssueRequest")
	return req.Issue
}

func TestCreateTicketWithoutAttachments(t *testing.T) {
	upstream := &fakeUpstream{}
	svc := newTicketService(upstream, &fakeRecorder{}, config.FeatureConfig{})

	result, err := svc.CreateTicket(context.Background(), domain.TicketRequest{
		Subject:     "Printer broken",
		Description: "No enciende",
	})
	require.NoError(t, err)

	assert.Equal(t, 4242, result.TicketID)
	assert.Equal(t, 0, result.AttachmentsUploaded)
	assert.Equal(t, 1, upstream.callCount)
	assert.Equal(t, 0, upstream.uploadCount)

	payload := issuePayload(t, upstream)
	assert.Nil(t, payload.Uploads)

	// The uploads field must be absent from the wire body, not an empty list.
	encoded, err := json.Marshal(redmine.CreateIssueRequest{Issue: payload})
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "uploads")
}

func TestCreateTicketAppliesDefaults(t *testing.T) {
	upstream := &fakeUpstream{}
	svc := newTicketService(upstream, &fakeRecorder{}, config.FeatureConfig{})

	_, err := svc.CreateTicket(context.Background(), domain.TicketRequest{
		Subject:     "Broken",
		Description: "Detail",
	})
	require.NoError(t, err)

	payload := issuePayload(t, upstream)
	assert.Equal(t, 7, payload.ProjectID, "falls back to configured default project")
	assert.Equal(t, 1, payload.TrackerID)
	assert.Equal(t, 2, payload.PriorityID)
}

func TestCreateTicketKeepsExplicitFields(t *testing.T) {
	upstream := &fakeUpstream{}
	svc := newTicketService(upstream, &fakeRecorder{}, config.FeatureConfig{})

	_, err := svc.CreateTicket(context.Background(), domain.TicketRequest{
		ProjectID:   12,
		Subject:     "Broken",
		Description: "Detail",
		TrackerID:   3,
		PriorityID:  5,
	})
	require.NoError(t, err)

	payload := issuePayload(t, upstream)
	assert.Equal(t, 12, payload.ProjectID)
	assert.Equal(t, 3, payload.TrackerID)
	assert.Equal(t, 5, payload.PriorityID)
}

func TestCreateTicketValidation(t *testing.T) {
	upstream := &fakeUpstream{}
	svc := newTicketService(upstream, &fakeRecorder{}, config.FeatureConfig{})

	cases := []struct {
		name        string
		subject     string
		description string
	}{
		{"missing subject", "", "desc"},
		{"missing description", "subject", ""},
		{"whitespace subject", "   ", "desc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateTicket(context.Background(), domain.TicketRequest{
				Subject:     tc.subject,
				Description: tc.description,
			})
			require.Error(t, err)
			var domainErr *util.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
			assert.Equal(t, 0, upstream.callCount, "no upstream call on validation failure")
		})
	}
}

func TestCreateTicketRequiresIdentityWhenConfigured(t *testing.T) {
	upstream := &fakeUpstream{}
	svc := newTicketService(upstream, &fakeRecorder{}, config.FeatureConfig{RequireRequesterIdentity: true})

	_, err := svc.CreateTicket(context.Background(), domain.TicketRequest{
		Subject:     "Broken",
		Description: "Detail",
	})
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "MISSING_IDENTITY", domainErr.Code)
	assert.Equal(t, 0, upstream.callCount)

	// A requester without email is just as invalid.
	_, err = svc.CreateTicket(context.Background(), domain.TicketRequest{
		Subject:     "Broken",
		Description: "Detail",
		Requester:   &domain.Requester{Name: "Ana"},
	})
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "MISSING_IDENTITY", domainErr.Code)

	_, err = svc.CreateTicket(context.Background(), domain.TicketRequest{
		Subject:     "Broken",
		Description: "Detail",
		Requester:   &domain.Requester{Name: "Ana", Email: "ana@example.com"},
	})
	require.NoError(t, err)
}

func TestCreateTicketPartialUploads(t *testing.T) {
	upstream := &fakeUpstream{failUploads: map[string]bool{"b.log": true}}
	svc := newTicketService(upstream, &fakeRecorder{}, config.FeatureConfig{})

	result, err := svc.CreateTicket(context.Background(), domain.TicketRequest{
		Subject:     "Broken",
		Description: "Detail",
		Attachments: []domain.Attachment{
			{FileName: "a.png", MimeType: "image/png", Content: []byte("a")},
			{FileName: "b.log", MimeType: "text/plain", Content: []byte("b")},
			{FileName: "c.png", MimeType: "image/png", Content: []byte("c")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.AttachmentsUploaded)
	assert.Equal(t, 3, upstream.uploadCount, "every attachment is attempted")

	payload := issuePayload(t, upstream)
	require.Len(t, payload.Uploads, 2)
	assert.Equal(t, "a.png", payload.Uploads[0].FileName, "input order preserved")
	assert.Equal(t, "c.png", payload.Uploads[1].FileName)
	assert.Equal(t, "token-a.png", payload.Uploads[0].Token)
}

func TestCreateTicketAllUploadsFailOmitsField(t *testing.T) {
	upstream := &fakeUpstream{failUploads: map[string]bool{"a.log": true}}
	svc := newTicketService(upstream, &fakeRecorder{}, config.FeatureConfig{})

	result, err := svc.CreateTicket(context.Background(), domain.TicketRequest{
		Subject:     "Broken",
		Description: "Detail",
		Attachments: []domain.Attachment{{FileName: "a.log", MimeType: "text/plain", Content: []byte("a")}},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.AttachmentsUploaded)
	payload := issuePayload(t, upstream)
	encoded, err := json.Marshal(redmine.CreateIssueRequest{Issue: payload})
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "uploads")
}

func TestCreateTicketImageRestriction(t *testing.T) {
	upstream := &fakeUpstream{}
	svc := newTicketService(upstream, &fakeRecorder{}, config.FeatureConfig{RestrictAttachmentsToImages: true})

	result, err := svc.CreateTicket(context.Background(), domain.TicketRequest{
		Subject:     "Broken",
		Description: "Detail",
		Attachments: []domain.Attachment{
			{FileName: "shot.png", MimeType: "image/png", Content: []byte("x")},
			{FileName: "trace.log", MimeType: "text/plain", Content: []byte("y")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.AttachmentsUploaded)
	assert.Equal(t, 1, upstream.uploadCount, "filtered file is never sent upstream")
}

func TestCreateTicketDescriptionSections(t *testing.T) {
	upstream := &fakeUpstream{}
	svc := newTicketService(upstream, &fakeRecorder{}, config.FeatureConfig{})

	_, err := svc.CreateTicket(context.Background(), domain.TicketRequest{
		Subject:     "Broken",
		Description: "Base text",
		Requester:   &domain.Requester{Name: "Ana López", Email: "ana@example.com", Username: "alopez"},
		CustomFields: domain.CustomFields{
			Modulo:                 "Facturación",
			IdentificadorOperacion: "OP-33",
		},
	})
	require.NoError(t, err)

	desc := issuePayload(t, upstream).Description
	assert.Contains(t, desc, "Base text")
	assert.Contains(t, desc, "Requester Information:")
	assert.Contains(t, desc, "Name: Ana López")
	assert.Contains(t, desc, "Email: ana@example.com")
	assert.Contains(t, desc, "Username: alopez")
	assert.Contains(t, desc, "Additional Information:")
	assert.Contains(t, desc, "Módulo: Facturación")
	assert.Contains(t, desc, "Identificador de operación: OP-33")
	assert.NotContains(t, desc, "Número de trámite", "absent fields are omitted")
	assert.Less(t, strings.Index(desc, "Módulo"), strings.Index(desc, "Identificador de operación"), "fixed field order")
}

func TestCreateTicketNoSectionsWithoutMetadata(t *testing.T) {
	upstream := &fakeUpstream{}
	svc := newTicketService(upstream, &fakeRecorder{}, config.FeatureConfig{})

	_, err := svc.CreateTicket(context.Background(), domain.TicketRequest{
		Subject:     "Broken",
		Description: "Just this",
	})
	require.NoError(t, err)

	desc := issuePayload(t, upstream).Description
	assert.Equal(t, "Just this", desc)
}

func TestCreateTicketUpstreamFailurePropagates(t *testing.T) {
	body := json.RawMessage(`{"errors":["Subject cannot be blank"]}`)
	upstream := &fakeUpstream{callErr: util.NewUpstreamError("upstream request failed", 422, body)}
	recorder := &fakeRecorder{}
	svc := newTicketService(upstream, recorder, config.FeatureConfig{})

	_, err := svc.CreateTicket(context.Background(), domain.TicketRequest{
		Subject:     "Broken",
		Description: "Detail",
		Requester:   &domain.Requester{Name: "Ana", Email: "ana@example.com"},
	})

	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, 422, domainErr.HTTPStatus)
	assert.JSONEq(t, string(body), string(domainErr.Details))

	require.Len(t, recorder.failures, 1)
	assert.Empty(t, recorder.successes)
	assert.Equal(t, "ana@example.com", recorder.failures[0].RequesterEmail)
}

func TestCreateTicketNoFailureAuditWithoutIdentity(t *testing.T) {
	upstream := &fakeUpstream{callErr: util.NewUpstreamError("boom", 500, nil)}
	recorder := &fakeRecorder{}
	svc := newTicketService(upstream, recorder, config.FeatureConfig{})

	_, err := svc.CreateTicket(context.Background(), domain.TicketRequest{
		Subject:     "Broken",
		Description: "Detail",
	})
	require.Error(t, err)
	assert.Empty(t, recorder.failures)
}

func TestCreateTicketSuccessAudit(t *testing.T) {
	upstream := &fakeUpstream{}
	recorder := &fakeRecorder{}
	svc := newTicketService(upstream, recorder, config.FeatureConfig{})

	_, err := svc.CreateTicket(context.Background(), domain.TicketRequest{
		Subject:     "Broken",
		Description: "Detail",
		Requester:   &domain.Requester{Name: "Ana", Email: "ana@example.com"},
		Attachments: []domain.Attachment{{FileName: "a.png", MimeType: "image/png", Content: []byte("a")}},
	})
	require.NoError(t, err)

	require.Len(t, recorder.successes, 1)
	record := recorder.successes[0]
	assert.Equal(t, 4242, record.TicketID)
	assert.Equal(t, "Broken", record.Subject)
	assert.Equal(t, 1, record.AttachmentCount)
}

func TestCreateTicketUnreadableCreateResponse(t *testing.T) {
	upstream := &fakeUpstream{callResp: json.RawMessage(`{"unexpected":true}`)}
	svc := newTicketService(upstream, &fakeRecorder{}, config.FeatureConfig{})

	_, err := svc.CreateTicket(context.Background(), domain.TicketRequest{
		Subject:     "Broken",
		Description: "Detail",
	})
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "UPSTREAM_ERROR", domainErr.Code)
	assert.Equal(t, 500, domainErr.HTTPStatus)
}

func TestCreateTicketConfigurationErrorShortCircuits(t *testing.T) {
	upstream := &fakeUpstream{callErr: util.NewConfigurationError("upstream base URL or API key not configured")}
	svc := newTicketService(upstream, &fakeRecorder{}, config.FeatureConfig{})

	_, err := svc.CreateTicket(context.Background(), domain.TicketRequest{
		Subject:     "Broken",
		Description: "Detail",
	})
	var domainErr *util.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFIGURATION_ERROR", domainErr.Code)
}
