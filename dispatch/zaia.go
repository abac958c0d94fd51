package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/BrunoSalvador97/zaia-distribuidor/types"
)

const notProvided = "not provided"

// ZaiaConfig configures a ZaiaClient.
type ZaiaConfig struct {
	// BaseURL is the API base, e.g. "https://api.zaia.app/v1".
	BaseURL string

	// Token is the bearer token sent on every request.
	Token string

	// Timeout is the per-request timeout of the underlying HTTP client.
	// Default: 15s. Ignored when HTTPClient is set.
	Timeout time.Duration

	// HTTPClient overrides the HTTP client, mainly for tests.
	HTTPClient *http.Client
}

// ZaiaClient talks to the Zaia messaging platform API.
//
// It implements types.NotificationDispatcher (owner notification and contact
// tagging) and serves as a contact source for the bulk importer.
type ZaiaClient struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ types.NotificationDispatcher = (*ZaiaClient)(nil)

// NewZaiaClient creates a ZaiaClient.
//
// Parameters:
//   - cfg: API endpoint and credentials
//
// Returns:
//   - *ZaiaClient: Ready client
//   - error: ErrInvalidConfig when BaseURL or Token is empty
func NewZaiaClient(cfg ZaiaConfig) (*ZaiaClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: zaia baseURL is required", types.ErrInvalidConfig)
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: zaia token is required", types.ErrInvalidConfig)
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &ZaiaClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		client:  client,
	}, nil
}

// NotifyAssignment sends the assignment summary text to the owner's handle.
func (z *ZaiaClient) NotifyAssignment(ctx context.Context, result *types.AssignmentResult, lead *types.Lead) error {
	body := map[string]string{
		"to":   result.OwnerContactHandle,
		"type": "text",
		"text": SummaryText(result, lead),
	}

	return z.post(ctx, "/messages/send", body, nil)
}

// TagContact applies a routing tag to a contact on the platform.
func (z *ZaiaClient) TagContact(ctx context.Context, contactID, tag string) error {
	body := map[string]string{
		"phone": contactID,
		"tag":   tag,
	}

	return z.post(ctx, "/contacts/tag", body, nil)
}

// Contacts lists all contacts known to the platform. Used by the bulk
// importer to backfill pre-existing conversations.
//
// Returns:
//   - []types.PlatformContact: Contacts in platform order
//   - error: Request or decode failure
func (z *ZaiaClient) Contacts(ctx context.Context) ([]types.PlatformContact, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, z.baseURL+"/contacts", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build contacts request: %w", err)
	}
	z.setHeaders(req)

	resp, err := z.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zaia contacts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, z.apiError("/contacts", resp)
	}

	var payload struct {
		Contacts []types.PlatformContact `json:"contacts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode contacts response: %w", err)
	}
	if payload.Contacts == nil {
		return nil, fmt.Errorf("unexpected contacts response shape from zaia")
	}

	return payload.Contacts, nil
}

// SummaryText renders the notification text delivered to the owner.
//
// New leads get the full qualification summary; returning contacts get a
// shorter heads-up with their latest message context.
func SummaryText(result *types.AssignmentResult, lead *types.Lead) string {
	attr := func(key string) string {
		if v := lead.Attributes[key]; v != "" {
			return v
		}
		return notProvided
	}

	if !result.IsNew {
		return fmt.Sprintf(
			"Lead returned to the conversation!\n\n"+
				"Name: %s\nCompany: %s\nPhone: %s\nCity: %s",
			attr(types.AttrName),
			attr(types.AttrCompany),
			lead.ContactID,
			attr(types.AttrCity),
		)
	}

	return fmt.Sprintf(
		"New qualified lead!\n\n"+
			"Owner: %s\nName: %s\nCompany: %s\n"+
			"Conversation summary:\n- City: %s\n- Phone: %s\n- Media type: %s\n- Period: %s\n- Budget: %s",
		result.OwnerDisplayName,
		attr(types.AttrName),
		attr(types.AttrCompany),
		attr(types.AttrCity),
		lead.ContactID,
		attr(types.AttrMediaType),
		attr(types.AttrPeriod),
		attr(types.AttrBudget),
	)
}

func (z *ZaiaClient) post(ctx context.Context, endpoint string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request for %s: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, z.baseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	z.setHeaders(req)

	resp, err := z.client.Do(req)
	if err != nil {
		return fmt.Errorf("zaia request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return z.apiError(endpoint, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
		}
	}

	return nil
}

func (z *ZaiaClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+z.token)
	req.Header.Set("Content-Type", "application/json")
}

func (z *ZaiaClient) apiError(endpoint string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	return fmt.Errorf("zaia API error on %s (status %d): %s",
		endpoint, resp.StatusCode, strings.TrimSpace(string(snippet)))
}
