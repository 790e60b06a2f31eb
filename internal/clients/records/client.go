// Package records is the HTTP client for the remote record service, a
// mockapi-style REST backend with two collections, users and expenses.
package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"max.ks1230/expenses-app/internal/entity/entry"
	"max.ks1230/expenses-app/internal/entity/identity"
)

const (
	usersPath    = "/users"
	expensesPath = "/expenses"

	usernameParam = "username"

	defaultTimeoutSeconds = 10
)

type config interface {
	BaseUrl() string
	Timeout() int64
}

type Client struct {
	baseUrl string
	client  *http.Client
}

func New(config config) *Client {
	timeout := config.Timeout()
	if timeout <= 0 {
		timeout = defaultTimeoutSeconds
	}
	return &Client{
		baseUrl: config.BaseUrl(),
		client:  &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

// userPayload is the wire shape of an identity record.
type userPayload struct {
	ID        string `json:"id,omitempty"`
	Username  string `json:"username"`
	Name      string `json:"name,omitempty"`
	Password  string `json:"password"`
	CreatedAt string `json:"createdAt"`
}

// entryPayload is the wire shape of an expense record. The hosted mock
// stores amounts as decimal strings with two digits.
type entryPayload struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	Type        string `json:"type,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description"`
	Username    string `json:"username"`
	CreatedAt   string `json:"createdAt"`
}

func (c *Client) ListUsers(ctx context.Context, username string) ([]identity.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseUrl+usersPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "list users")
	}
	q := req.URL.Query()
	q.Add(usernameParam, username)
	req.URL.RawQuery = q.Encode()

	var payload []userPayload
	if err = c.do(req, &payload); err != nil {
		return nil, errors.Wrap(err, "list users")
	}

	res := make([]identity.Record, 0, len(payload))
	for _, p := range payload {
		res = append(res, p.toRecord())
	}
	return res, nil
}

func (c *Client) CreateUser(ctx context.Context, rec identity.Record) (identity.Record, error) {
	body, err := json.Marshal(userPayload{
		Username:  rec.Username,
		Name:      rec.Name,
		Password:  rec.Password,
		CreatedAt: rec.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return identity.Record{}, errors.Wrap(err, "create user")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+usersPath, bytes.NewReader(body))
	if err != nil {
		return identity.Record{}, errors.Wrap(err, "create user")
	}
	req.Header.Set("Content-Type", "application/json")

	var payload userPayload
	if err = c.do(req, &payload); err != nil {
		return identity.Record{}, errors.Wrap(err, "create user")
	}
	return payload.toRecord(), nil
}

func (c *Client) ListEntries(ctx context.Context) ([]entry.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseUrl+expensesPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "list entries")
	}

	var payload []entryPayload
	if err = c.do(req, &payload); err != nil {
		return nil, errors.Wrap(err, "list entries")
	}

	res := make([]entry.Record, 0, len(payload))
	for _, p := range payload {
		res = append(res, p.toRecord())
	}
	return res, nil
}

func (c *Client) CreateEntry(ctx context.Context, rec entry.Record) (entry.Record, error) {
	body, err := json.Marshal(newEntryPayload(rec))
	if err != nil {
		return entry.Record{}, errors.Wrap(err, "create entry")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+expensesPath, bytes.NewReader(body))
	if err != nil {
		return entry.Record{}, errors.Wrap(err, "create entry")
	}
	req.Header.Set("Content-Type", "application/json")

	var payload entryPayload
	if err = c.do(req, &payload); err != nil {
		return entry.Record{}, errors.Wrap(err, "create entry")
	}
	return payload.toRecord(), nil
}

func (c *Client) UpdateEntry(ctx context.Context, rec entry.Record) (entry.Record, error) {
	payload := newEntryPayload(rec)
	payload.ID = rec.ID
	body, err := json.Marshal(payload)
	if err != nil {
		return entry.Record{}, errors.Wrap(err, "update entry")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseUrl+expensesPath+"/"+rec.ID, bytes.NewReader(body))
	if err != nil {
		return entry.Record{}, errors.Wrap(err, "update entry")
	}
	req.Header.Set("Content-Type", "application/json")

	var updated entryPayload
	if err = c.do(req, &updated); err != nil {
		return entry.Record{}, errors.Wrap(err, "update entry")
	}
	return updated.toRecord(), nil
}

func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseUrl+expensesPath+"/"+id, nil)
	if err != nil {
		return errors.Wrap(err, "delete entry")
	}
	return errors.Wrap(c.do(req, nil), "delete entry")
}

func (c *Client) do(req *http.Request, out interface{}) error {
	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d from record service: %s", res.StatusCode, string(body))
	}
	if out == nil {
		return nil
	}
	return errors.Wrap(json.Unmarshal(body, out), "unmarshalling response")
}

func (p userPayload) toRecord() identity.Record {
	created, _ := time.Parse(time.RFC3339, p.CreatedAt)
	return identity.Record{
		ID:        p.ID,
		Username:  p.Username,
		Name:      p.Name,
		Password:  p.Password,
		CreatedAt: created,
	}
}

func newEntryPayload(rec entry.Record) entryPayload {
	return entryPayload{
		Name:        rec.Title,
		Amount:      strconv.FormatFloat(rec.Amount, 'f', 2, 64),
		Type:        string(rec.Type),
		Category:    string(rec.Category),
		Description: rec.Notes,
		Username:    rec.Username,
		CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
	}
}

func (p entryPayload) toRecord() entry.Record {
	amount, _ := strconv.ParseFloat(p.Amount, 64)
	created, _ := time.Parse(time.RFC3339, p.CreatedAt)

	typ := entry.Type(p.Type)
	if typ != entry.TypeIncome && typ != entry.TypeExpense {
		typ = entry.TypeExpense
	}

	return entry.Record{
		ID:        p.ID,
		Title:     p.Name,
		Amount:    amount,
		Type:      typ,
		Category:  entry.NormalizeCategory(p.Category),
		Notes:     p.Description,
		Username:  p.Username,
		CreatedAt: created,
	}
}
