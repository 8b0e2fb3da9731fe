package collaborators

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// PermissionServiceClient implements ports.PermissionService against the
// access-control service. The RAG core only ever asks two yes/no
// questions; it never evaluates policy itself.
type PermissionServiceClient struct {
	baseURL string
	client  *http.Client
}

// NewPermissionServiceClient builds a PermissionServiceClient targeting
// baseURL.
func NewPermissionServiceClient(baseURL string) *PermissionServiceClient {
	return &PermissionServiceClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultClientTimeout},
	}
}

type permissionResponse struct {
	Allowed bool `json:"allowed"`
}

func (c *PermissionServiceClient) CanIndex(ctx context.Context, userID, uploadID int64) (bool, error) {
	path := fmt.Sprintf("/permissions/can-index?user_id=%s&upload_id=%s", escapeQuery(userID), escapeQuery(uploadID))
	return c.ask(ctx, path)
}

func (c *PermissionServiceClient) CanAsk(ctx context.Context, userID int64, documentID *int64) (bool, error) {
	path := fmt.Sprintf("/permissions/can-ask?user_id=%s", escapeQuery(userID))
	if documentID != nil {
		path += "&document_id=" + escapeQuery(*documentID)
	}
	return c.ask(ctx, path)
}

func (c *PermissionServiceClient) ask(ctx context.Context, path string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("permission service returned %d", resp.StatusCode)
	}
	var out permissionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, err
	}
	return out.Allowed, nil
}
