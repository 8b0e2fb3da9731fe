// Package collaborators implements the HTTP clients for the two external
// systems the RAG core treats as opaque collaborators: the upload context
// (document text, vision JSON, title) and the permission service
// (can_index/can_ask). Both follow the teacher's plain net/http.Client with
// a short timeout, rather than pulling in a generated client.
package collaborators

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultClientTimeout = 10 * time.Second

// UploadSourceClient implements ports.UploadSource against the upload
// context service's REST API.
type UploadSourceClient struct {
	baseURL string
	client  *http.Client
}

// NewUploadSourceClient builds an UploadSourceClient targeting baseURL.
func NewUploadSourceClient(baseURL string) *UploadSourceClient {
	return &UploadSourceClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultClientTimeout},
	}
}

type documentTextResponse struct {
	Text string `json:"text"`
}

type documentVisionResponse struct {
	VisionJSON string `json:"vision_json"`
}

type documentTitleResponse struct {
	Title string `json:"title"`
}

func (c *UploadSourceClient) GetDocumentText(ctx context.Context, uploadID int64) (string, error) {
	var out documentTextResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/uploads/%d/text", uploadID), &out); err != nil {
		return "", err
	}
	return out.Text, nil
}

func (c *UploadSourceClient) GetDocumentVisionJSON(ctx context.Context, uploadID int64) (string, error) {
	var out documentVisionResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/uploads/%d/vision", uploadID), &out); err != nil {
		return "", err
	}
	return out.VisionJSON, nil
}

func (c *UploadSourceClient) GetDocumentTitle(ctx context.Context, uploadID int64) (string, error) {
	var out documentTitleResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/uploads/%d/title", uploadID), &out); err != nil {
		return "", err
	}
	return out.Title, nil
}

func (c *UploadSourceClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("upload not found")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload source returned %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// escapeQuery is a small helper kept for callers that build query strings
// from user-controlled numeric ids.
func escapeQuery(v int64) string {
	return url.QueryEscape(strconv.FormatInt(v, 10))
}
