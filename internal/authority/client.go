package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	registerPath = "/v1/auth/register"
	sendOTPPath  = "/v1/auth/send-otp"
)

// Error is a non-success response from the identity authority. Message is
// the authority's own wording; transport failures never take this form.
type Error struct {
	Code    Code
	Message string
	Status  int
}

func (e *Error) Error() string {
	if e.Code == CodeUnknown {
		return fmt.Sprintf("authority: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("authority: %s: %s", e.Code, e.Message)
}

// RegisterPayload is the normalized registration request forwarded to the
// authority. Email is omitted from the wire payload when blank.
type RegisterPayload struct {
	Username    string `json:"username"`
	DisplayName string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email,omitempty"`
}

// Client talks to the remote identity authority over its documented HTTP
// contract. Every call is single-attempt with a bounded timeout;
// registration in particular must never be replayed blindly.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient builds an authority client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Register forwards a new-account registration. On success the authority
// has dispatched an OTP to the given phone.
func (c *Client) Register(ctx context.Context, payload RegisterPayload) error {
	return c.post(ctx, registerPath, payload)
}

// SendOTP asks the authority to dispatch a sign-in OTP for the phone.
func (c *Client) SendOTP(ctx context.Context, phone string) error {
	return c.post(ctx, sendOTPPath, map[string]string{"phone": phone})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode authority payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build authority request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("authority request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	return decodeError(resp)
}

func decodeError(resp *http.Response) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: resp.Status}
	}

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || body.Message == "" && body.Code == "" {
		return &Error{Status: resp.StatusCode, Message: resp.Status}
	}

	return &Error{
		Code:    ParseCode(body.Code),
		Message: body.Message,
		Status:  resp.StatusCode,
	}
}
