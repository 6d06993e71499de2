package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"ledgerchat/internal/domain"
)

const (
	readAttempts = 3
	readBackoff  = 150 * time.Millisecond
)

// HTTPClient talks to a ledger node over JSON/HTTP.
type HTTPClient struct {
	base string
	http *http.Client
}

// NewHTTP returns a client for the node at base. A nil httpClient falls back
// to http.DefaultClient.
func NewHTTP(base string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{base: base, http: httpClient}
}

var _ domain.LedgerClient = (*HTTPClient)(nil)

type receiptResponse struct {
	Receipt domain.Receipt `json:"receipt"`
}

type sequenceResponse struct {
	Sequence uint64 `json:"sequence"`
}

func (c *HTTPClient) RegisterIdentity(ctx context.Context, rec domain.IdentityRecord) (domain.Receipt, error) {
	var out receiptResponse
	status, err := c.post(ctx, "/identity", rec, &out)
	if err != nil {
		return "", err
	}
	switch {
	case status == http.StatusConflict:
		return "", domain.ErrAlreadyRegistered
	case status/100 != 2:
		return "", fmt.Errorf("%w: POST /identity: status %d", domain.ErrLedgerRejected, status)
	}
	return out.Receipt, nil
}

func (c *HTTPClient) FetchIdentity(ctx context.Context, account domain.Account) (domain.IdentityRecord, error) {
	var rec domain.IdentityRecord
	status, err := c.get(ctx, "/identity/"+url.PathEscape(account.String()), &rec)
	if err != nil {
		return domain.IdentityRecord{}, err
	}
	switch {
	case status == http.StatusNotFound:
		return domain.IdentityRecord{Account: account}, nil
	case status/100 != 2:
		return domain.IdentityRecord{}, fmt.Errorf("%w: GET /identity: status %d", domain.ErrLedgerUnavailable, status)
	}
	return rec, nil
}

func (c *HTTPClient) IsSessionEstablished(ctx context.Context, a, b domain.Account) (bool, error) {
	_, ok, err := c.FetchSession(ctx, a, b)
	return ok, err
}

func (c *HTTPClient) EstablishSession(ctx context.Context, rec domain.SessionRecord) (domain.Receipt, error) {
	var out receiptResponse
	status, err := c.post(ctx, "/session", rec, &out)
	if err != nil {
		return "", err
	}
	switch {
	case status == http.StatusConflict:
		return "", domain.ErrSessionExists
	case status/100 != 2:
		return "", fmt.Errorf("%w: POST /session: status %d", domain.ErrLedgerRejected, status)
	}
	return out.Receipt, nil
}

func (c *HTTPClient) FetchSession(ctx context.Context, a, b domain.Account) (domain.SessionRecord, bool, error) {
	var rec domain.SessionRecord
	path := "/session/" + url.PathEscape(a.String()) + "/" + url.PathEscape(b.String())
	status, err := c.get(ctx, path, &rec)
	if err != nil {
		return domain.SessionRecord{}, false, err
	}
	switch {
	case status == http.StatusNotFound:
		return domain.SessionRecord{}, false, nil
	case status/100 != 2:
		return domain.SessionRecord{}, false, fmt.Errorf("%w: GET /session: status %d", domain.ErrLedgerUnavailable, status)
	}
	return rec, true, nil
}

func (c *HTTPClient) SendMessage(ctx context.Context, rec domain.MessageRecord) (uint64, error) {
	var out sequenceResponse
	status, err := c.post(ctx, "/message", rec, &out)
	if err != nil {
		return 0, err
	}
	if status/100 != 2 {
		return 0, fmt.Errorf("%w: POST /message: status %d", domain.ErrLedgerRejected, status)
	}
	return out.Sequence, nil
}

func (c *HTTPClient) FetchMessages(ctx context.Context, a, b domain.Account) ([]domain.MessageRecord, error) {
	var recs []domain.MessageRecord
	path := "/messages/" + url.PathEscape(a.String()) + "/" + url.PathEscape(b.String())
	status, err := c.get(ctx, path, &recs)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		return nil, fmt.Errorf("%w: GET /messages: status %d", domain.ErrLedgerUnavailable, status)
	}
	return recs, nil
}

func (c *HTTPClient) FetchPeers(ctx context.Context, account domain.Account) ([]domain.Account, error) {
	var peers []domain.Account
	status, err := c.get(ctx, "/sessions/"+url.PathEscape(account.String()), &peers)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		return nil, fmt.Errorf("%w: GET /sessions: status %d", domain.ErrLedgerUnavailable, status)
	}
	return peers, nil
}

// get performs an idempotent read with bounded retries on transport errors.
// Non-2xx statuses are returned to the caller, not retried.
func (c *HTTPClient) get(ctx context.Context, path string, out any) (int, error) {
	var lastErr error
	for attempt := 0; attempt < readAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, ctx.Err())
			case <-time.After(time.Duration(attempt) * readBackoff):
			}
		}
		status, err := c.do(ctx, http.MethodGet, path, nil, out)
		if err == nil {
			return status, nil
		}
		lastErr = err
	}
	return 0, lastErr
}

// post performs a single write attempt. Writes are guarded by the caller's
// query-before-write checks and must not be blindly retried here.
func (c *HTTPClient) post(ctx context.Context, path string, in, out any) (int, error) {
	return c.do(ctx, http.MethodPost, path, in, out)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var body *bytes.Buffer
	if in != nil {
		body = new(bytes.Buffer)
		if err := json.NewEncoder(body).Encode(in); err != nil {
			return 0, err
		}
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return 0, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %s: %v", domain.ErrLedgerUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode/100 == 2 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return 0, fmt.Errorf("%w: decode %s %s: %v", domain.ErrLedgerUnavailable, method, path, err)
		}
	}
	return resp.StatusCode, nil
}
