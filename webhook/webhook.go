// Package webhook posts import notifications to the outreach automation
// endpoint as a multipart form.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/phbpx/outreach/leadimport"
)

// Form field names understood by the automation endpoint.
const (
	FieldUserID   = "user_id"
	FieldCampaign = "campaign"
	FieldFile     = "file"
)

// maxErrorBody bounds how much of a failed response ends up in the error.
const maxErrorBody = 512

// Client calls one automation webhook URL.
type Client struct {
	url  string
	http *http.Client
}

// NewClient returns a Client. A nil httpClient means http.DefaultClient.
func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		url:  url,
		http: httpClient,
	}
}

// Notify posts the user id, the JSON encoded campaign and the raw file. Any
// non-2xx answer is an error.
func (c *Client) Notify(ctx context.Context, n leadimport.Notification) error {
	body, contentType, err := encode(n)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}

func encode(n leadimport.Notification) (io.Reader, string, error) {
	campaign, err := json.Marshal(n.Campaign)
	if err != nil {
		return nil, "", fmt.Errorf("encoding campaign: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField(FieldUserID, n.OwnerID); err != nil {
		return nil, "", err
	}
	if err := w.WriteField(FieldCampaign, string(campaign)); err != nil {
		return nil, "", err
	}

	part, err := w.CreateFormFile(FieldFile, n.FileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(n.Content); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}
