// Package captcha verifies client challenge tokens with Google reCAPTCHA.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

type RecaptchaVerifier struct {
	verifyURL  string
	secret     string
	httpClient *http.Client
}

func NewRecaptchaVerifier(verifyURL, secret string) *RecaptchaVerifier {
	if verifyURL == "" {
		verifyURL = defaultVerifyURL
	}
	return &RecaptchaVerifier{
		verifyURL: verifyURL,
		secret:    secret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("call siteverify: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(raw))
	}

	var vr verifyResponse
	if err := json.Unmarshal(raw, &vr); err != nil {
		return false, fmt.Errorf("unmarshal response: %w", err)
	}
	return vr.Success, nil
}
