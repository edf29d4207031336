package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/quickprintz/storefront/internal/config"
	"github.com/quickprintz/storefront/internal/constants"
	"github.com/quickprintz/storefront/internal/models"
	"github.com/quickprintz/storefront/internal/queue"
	"github.com/quickprintz/storefront/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupContactRepo(t *testing.T) repository.ContactRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:storefront_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return repository.NewContactRepository(db)
}

type fakeContactQueue struct {
	enabled  bool
	err      error
	payloads []queue.ContactForwardPayload
}

func (f *fakeContactQueue) Enabled() bool { return f.enabled }

func (f *fakeContactQueue) EnqueueContactForward(payload queue.ContactForwardPayload, _ ...asynq.Option) error {
	f.payloads = append(f.payloads, payload)
	return f.err
}

type formRecorder struct {
	mu     sync.Mutex
	forms  []map[string]string
	accept string
	status int
}

func (r *formRecorder) handler(w http.ResponseWriter, req *http.Request) {
	if err := req.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	r.mu.Lock()
	r.accept = req.Header.Get("Accept")
	r.forms = append(r.forms, map[string]string{
		"name":    req.PostForm.Get("name"),
		"email":   req.PostForm.Get("email"),
		"message": req.PostForm.Get("message"),
	})
	status := r.status
	r.mu.Unlock()
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"ok":true}`))
}

func validContact() ContactInput {
	return ContactInput{
		Name:    " Ada Lovelace ",
		Email:   "ada@example.com",
		Message: "Need 500 mylar bags",
	}
}

func TestContactSubmitValidates(t *testing.T) {
	svc := NewContactService(setupContactRepo(t), nil, nil, config.ContactConfig{})
	ctx := context.Background()

	cases := []struct {
		name  string
		input ContactInput
	}{
		{name: "missing_name", input: ContactInput{Email: "a@b.co", Message: "hi"}},
		{name: "bad_email", input: ContactInput{Name: "A", Email: "not-an-email", Message: "hi"}},
		{name: "blank_message", input: ContactInput{Name: "A", Email: "a@b.co", Message: "   "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Submit(ctx, tc.input, "127.0.0.1"); !errors.Is(err, ErrContactInvalid) {
				t.Fatalf("want ErrContactInvalid got %v", err)
			}
		})
	}
}

func TestContactSubmitWithoutForwardURLIsSkipped(t *testing.T) {
	svc := NewContactService(setupContactRepo(t), nil, nil, config.ContactConfig{})
	submission, err := svc.Submit(context.Background(), validContact(), "10.0.0.1")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if submission.Status != constants.ContactStatusSkipped {
		t.Fatalf("want skipped got %s", submission.Status)
	}
	if submission.Name != "Ada Lovelace" || submission.ClientIP != "10.0.0.1" {
		t.Fatalf("unexpected submission: %+v", submission)
	}
}

func TestContactSubmitForwardsInlineWhenQueueDisabled(t *testing.T) {
	rec := &formRecorder{}
	server := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer server.Close()

	repo := setupContactRepo(t)
	svc := NewContactService(repo, &fakeContactQueue{}, nil, config.ContactConfig{ForwardURL: server.URL})
	ctx := context.Background()

	submission, err := svc.Submit(ctx, validContact(), "")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	stored, err := repo.GetByID(ctx, submission.ID)
	if err != nil || stored == nil {
		t.Fatalf("load failed: %v", err)
	}
	if stored.Status != constants.ContactStatusForwarded || stored.ForwardedAt == nil {
		t.Fatalf("want forwarded got %+v", stored)
	}
	if len(rec.forms) != 1 || rec.forms[0]["email"] != "ada@example.com" || rec.accept != "application/json" {
		t.Fatalf("unexpected forwarded form: %+v accept=%s", rec.forms, rec.accept)
	}
}

func TestContactSubmitEnqueuesWhenQueueEnabled(t *testing.T) {
	rec := &formRecorder{}
	server := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer server.Close()

	q := &fakeContactQueue{enabled: true}
	svc := NewContactService(setupContactRepo(t), q, nil, config.ContactConfig{ForwardURL: server.URL})
	submission, err := svc.Submit(context.Background(), validContact(), "")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if len(q.payloads) != 1 || q.payloads[0].SubmissionID != submission.ID {
		t.Fatalf("expected forward task got %+v", q.payloads)
	}
	if len(rec.forms) != 0 {
		t.Fatalf("queued submission must not be forwarded inline")
	}
}

func TestContactForwardFailureIsRecorded(t *testing.T) {
	rec := &formRecorder{status: http.StatusUnprocessableEntity}
	server := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer server.Close()

	repo := setupContactRepo(t)
	svc := NewContactService(repo, nil, nil, config.ContactConfig{ForwardURL: server.URL})
	ctx := context.Background()

	submission, err := svc.Submit(ctx, validContact(), "")
	if err != nil {
		t.Fatalf("forward failure must not surface, got %v", err)
	}
	stored, _ := repo.GetByID(ctx, submission.ID)
	if stored == nil || stored.Status != constants.ContactStatusFailed || stored.LastError == "" {
		t.Fatalf("want failed with reason got %+v", stored)
	}

	if err := svc.Forward(ctx, submission.ID); !errors.Is(err, ErrContactForward) {
		t.Fatalf("retry want ErrContactForward got %v", err)
	}
	if err := svc.Forward(ctx, 9999); !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("missing id want ErrContactNotFound got %v", err)
	}
}

func TestContactForwardIsIdempotent(t *testing.T) {
	rec := &formRecorder{}
	server := httptest.NewServer(http.HandlerFunc(rec.handler))
	defer server.Close()

	svc := NewContactService(setupContactRepo(t), nil, nil, config.ContactConfig{ForwardURL: server.URL})
	ctx := context.Background()
	submission, err := svc.Submit(ctx, validContact(), "")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := svc.Forward(ctx, submission.ID); err != nil {
		t.Fatalf("second forward failed: %v", err)
	}
	if len(rec.forms) != 1 {
		t.Fatalf("forwarded submission must not be resent, got %d posts", len(rec.forms))
	}
}

func TestContactSubmitRequiresCaptchaWhenEnabled(t *testing.T) {
	captcha := NewCaptchaService(config.CaptchaConfig{Enabled: true})
	svc := NewContactService(setupContactRepo(t), nil, captcha, config.ContactConfig{})
	ctx := context.Background()

	if _, err := svc.Submit(ctx, validContact(), ""); !errors.Is(err, ErrCaptchaRequired) {
		t.Fatalf("want ErrCaptchaRequired got %v", err)
	}
	input := validContact()
	input.CaptchaID = "nope"
	input.CaptchaCode = "abcde"
	if _, err := svc.Submit(ctx, input, ""); !errors.Is(err, ErrCaptchaInvalid) {
		t.Fatalf("want ErrCaptchaInvalid got %v", err)
	}
}
