package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/quickprintz/storefront/internal/config"

	"github.com/mojocn/base64Captcha"
)

func TestCaptchaDisabledAllowsEverything(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{})
	if err := svc.Verify(CaptchaVerifyPayload{}); err != nil {
		t.Fatalf("disabled captcha must pass, got %v", err)
	}
	if _, err := svc.GenerateImageChallenge(); !errors.Is(err, ErrCaptchaConfigInvalid) {
		t.Fatalf("disabled captcha challenge want ErrCaptchaConfigInvalid got %v", err)
	}
	var nilSvc *CaptchaService
	if err := nilSvc.Verify(CaptchaVerifyPayload{}); err != nil {
		t.Fatalf("nil service must pass, got %v", err)
	}
}

func TestCaptchaGenerateImageChallenge(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{Enabled: true})
	challenge, err := svc.GenerateImageChallenge()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if challenge.CaptchaID == "" || !strings.HasPrefix(challenge.ImageBase64, "data:image/") {
		t.Fatalf("unexpected challenge: %+v", challenge)
	}
}

func TestCaptchaVerifyConsumesCode(t *testing.T) {
	svc := NewCaptchaService(config.CaptchaConfig{Enabled: true})
	store := base64Captcha.NewMemoryStore(16, time.Minute)
	svc.useStore(store)
	if err := store.Set("cid", "k7Pq2"); err != nil {
		t.Fatalf("seed store failed: %v", err)
	}

	if err := svc.Verify(CaptchaVerifyPayload{CaptchaID: "cid"}); !errors.Is(err, ErrCaptchaRequired) {
		t.Fatalf("missing code want ErrCaptchaRequired got %v", err)
	}
	if err := svc.Verify(CaptchaVerifyPayload{CaptchaID: "cid", CaptchaCode: " k7Pq2 "}); err != nil {
		t.Fatalf("valid code failed: %v", err)
	}
	if err := svc.Verify(CaptchaVerifyPayload{CaptchaID: "cid", CaptchaCode: "k7Pq2"}); !errors.Is(err, ErrCaptchaInvalid) {
		t.Fatalf("reused code want ErrCaptchaInvalid got %v", err)
	}
}
