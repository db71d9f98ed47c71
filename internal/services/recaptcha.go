package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RecaptchaVerifier checks reCAPTCHA v2 tokens on report intake, keeping
// automated report spam out of the moderation queue.
type RecaptchaVerifier struct {
	Secret     string
	HTTPClient *http.Client
	Endpoint   string
}

func NewRecaptchaVerifier(secret string) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		Secret:   strings.TrimSpace(secret),
		Endpoint: "https://www.google.com/recaptcha/api/siteverify",
		HTTPClient: &http.Client{
			Timeout: 8 * time.Second,
		},
	}
}

// Verify validates a v2 checkbox token. Returns (ok, reason, error); reason
// is only set when verification was performed and failed.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token string, remoteIP string) (bool, string, error) {
	if v == nil {
		return false, "verifier_not_configured", nil
	}
	if v.Secret == "" {
		return false, "missing_secret", nil
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return false, "missing_token", nil
	}

	form := url.Values{}
	form.Set("secret", v.Secret)
	form.Set("response", token)
	if ip := strings.TrimSpace(remoteIP); ip != "" {
		form.Set("remoteip", ip)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return false, "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := v.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 8 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, "", fmt.Errorf("recaptcha verify http %d", resp.StatusCode)
	}

	var out struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, "", err
	}
	if out.Success {
		return true, "", nil
	}
	if len(out.ErrorCodes) > 0 {
		return false, strings.Join(out.ErrorCodes, ","), nil
	}
	return false, "verification_failed", nil
}
