package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// MailSender delivers notifications through a template-based transactional
// mail REST API using stdlib net/http only — no SDK dependency. The API
// uses OAuth client-credentials: a short-lived bearer token is fetched from
// the token endpoint and cached until close to expiry.
type MailSender struct {
	apiURL       string
	tokenURL     string
	clientID     string
	clientSecret string
	templateID   int
	fromName     string
	fromEmail    string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// MailConfig carries the mail API settings.
type MailConfig struct {
	APIURL       string
	TokenURL     string
	ClientID     string
	ClientSecret string
	TemplateID   int
	FromName     string
	FromEmail    string
}

// NewMailSender creates a MailSender ready to use.
func NewMailSender(cfg MailConfig) *MailSender {
	return &MailSender{
		apiURL:       cfg.APIURL,
		tokenURL:     cfg.TokenURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		templateID:   cfg.TemplateID,
		fromName:     cfg.FromName,
		fromEmail:    cfg.FromEmail,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// token returns a cached access token, fetching a fresh one when the cache
// is empty or about to expire.
func (s *MailSender) token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && time.Now().Before(s.tokenExpiry) {
		return s.accessToken, nil
	}

	body, err := json.Marshal(map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     s.clientID,
		"client_secret": s.clientSecret,
	})
	if err != nil {
		return "", fmt.Errorf("marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(respBody))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned empty access_token")
	}

	s.accessToken = tok.AccessToken
	// Refresh a minute early so an in-flight send never carries a token
	// that expires mid-request.
	s.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - time.Minute)
	return s.accessToken, nil
}

// mailRequest is the JSON body sent to the mail API.
type mailRequest struct {
	Email mailEnvelope `json:"email"`
}

type mailEnvelope struct {
	From     mailAddress   `json:"from"`
	To       []mailAddress `json:"to"`
	Template mailTemplate  `json:"template"`
}

type mailAddress struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type mailTemplate struct {
	ID        int               `json:"id"`
	Variables map[string]string `json:"variables"`
}

// Send dispatches one notification to the mail API. It returns a non-nil
// error if the HTTP request fails or the API returns a non-2xx status. The
// caller (Kafka consumer) decides whether to retry or route to the DLQ.
func (s *MailSender) Send(ctx context.Context, n Notification) error {
	if s.templateID == 0 {
		return fmt.Errorf("mail template id not configured")
	}
	if s.fromEmail == "" {
		return fmt.Errorf("mail from address not configured")
	}

	token, err := s.token(ctx)
	if err != nil {
		return err
	}

	variables := map[string]string{
		"participant_name": n.GiverName,
		"receiver_name":    n.ReceiverName,
	}
	if n.ReceiverAddress != "" {
		variables["receiver_address"] = n.ReceiverAddress
	}
	if n.ReceiverPhone != "" {
		variables["receiver_phone"] = n.ReceiverPhone
	}

	body, err := json.Marshal(mailRequest{
		Email: mailEnvelope{
			From: mailAddress{Name: s.fromName, Email: s.fromEmail},
			To:   []mailAddress{{Name: n.GiverName, Email: n.GiverEmail}},
			Template: mailTemplate{
				ID:        s.templateID,
				Variables: variables,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail api returned %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
