package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"skillsync/models"
)

// HTTPClient is the real Client backed by the platform API. The token
// function is called per request so a login that happens after construction
// is picked up without rewiring.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	token   func() string
}

// NewHTTPClient builds a client for the given base URL, e.g.
// "http://localhost:8081/api". token may be nil for anonymous access.
func NewHTTPClient(baseURL string, timeout time.Duration, token func() string) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		token:   token,
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != nil {
		if t := c.token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, models.NewNetworkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewNetworkError(err)
	}

	if resp.StatusCode >= 400 {
		return nil, statusError(resp.StatusCode, data)
	}
	return data, nil
}

// statusError maps HTTP failure statuses onto the core error taxonomy.
func statusError(status int, body []byte) error {
	var er models.ErrorResponse
	_ = json.Unmarshal(body, &er)
	msg := er.Error
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	switch status {
	case http.StatusUnauthorized:
		return models.NewAuthRequiredError(msg)
	case http.StatusForbidden:
		return models.NewForbiddenError(msg)
	case http.StatusNotFound:
		return &models.AppError{Code: models.CodeNotFound, Message: msg}
	case http.StatusBadRequest, http.StatusConflict:
		return models.NewValidationError(msg)
	default:
		return &models.AppError{Code: models.CodeInternal, Message: msg}
	}
}

func (c *HTTPClient) IsFollowing(ctx context.Context, viewerID, subjectID string) (FollowStatus, error) {
	raw, err := c.do(ctx, http.MethodGet,
		fmt.Sprintf("/users/%s/is-following?viewerId=%s", subjectID, viewerID), nil)
	if err != nil {
		return FollowStatus{}, err
	}
	var st FollowStatus
	if err := json.Unmarshal(raw, &st); err != nil {
		return FollowStatus{}, models.NewInternalError(err)
	}
	return st, nil
}

func (c *HTTPClient) GetFollowers(ctx context.Context, userID string) (models.FollowList, error) {
	raw, err := c.do(ctx, http.MethodGet, "/users/"+userID+"/followers", nil)
	if err != nil {
		return models.FollowList{}, err
	}
	return normalizeFollowList(raw)
}

func (c *HTTPClient) GetFollowing(ctx context.Context, userID string) (models.FollowList, error) {
	raw, err := c.do(ctx, http.MethodGet, "/users/"+userID+"/following", nil)
	if err != nil {
		return models.FollowList{}, err
	}
	return normalizeFollowList(raw)
}

func (c *HTTPClient) FollowUser(ctx context.Context, subjectID string) (ActionResult, error) {
	raw, err := c.do(ctx, http.MethodPost, "/users/"+subjectID+"/follow", nil)
	if err != nil {
		return ActionResult{}, err
	}
	var res ActionResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return ActionResult{}, models.NewInternalError(err)
	}
	return res, nil
}

func (c *HTTPClient) UnfollowUser(ctx context.Context, subjectID string) (ActionResult, error) {
	raw, err := c.do(ctx, http.MethodDelete, "/users/"+subjectID+"/follow", nil)
	if err != nil {
		return ActionResult{}, err
	}
	var res ActionResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return ActionResult{}, models.NewInternalError(err)
	}
	return res, nil
}

func (c *HTTPClient) GetComments(ctx context.Context, itemID string) ([]models.Comment, error) {
	raw, err := c.do(ctx, http.MethodGet, "/progress/"+itemID+"/comments", nil)
	if err != nil {
		return nil, err
	}
	return normalizeCommentList(raw)
}

func (c *HTTPClient) AddComment(ctx context.Context, itemID, content string) (models.Comment, error) {
	raw, err := c.do(ctx, http.MethodPost, "/progress/"+itemID+"/comments",
		map[string]string{"content": content})
	if err != nil {
		return models.Comment{}, err
	}
	return normalizeComment(raw)
}

func (c *HTTPClient) UpdateComment(ctx context.Context, commentID, content string) error {
	_, err := c.do(ctx, http.MethodPut, "/comments/"+commentID,
		map[string]string{"content": content})
	return err
}

func (c *HTTPClient) DeleteComment(ctx context.Context, commentID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/comments/"+commentID, nil)
	return err
}

func (c *HTTPClient) GetReplies(ctx context.Context, commentID string) ([]models.Reply, error) {
	raw, err := c.do(ctx, http.MethodGet, "/comments/"+commentID+"/replies", nil)
	if err != nil {
		return nil, err
	}
	return normalizeReplyList(raw)
}

func (c *HTTPClient) AddReply(ctx context.Context, commentID, content string) (models.Reply, error) {
	raw, err := c.do(ctx, http.MethodPost, "/comments/"+commentID+"/replies",
		map[string]string{"content": content})
	if err != nil {
		return models.Reply{}, err
	}
	return normalizeReply(raw)
}

func (c *HTTPClient) UpdateReply(ctx context.Context, replyID, content string) error {
	_, err := c.do(ctx, http.MethodPut, "/replies/"+replyID,
		map[string]string{"content": content})
	return err
}

func (c *HTTPClient) DeleteReply(ctx context.Context, replyID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/replies/"+replyID, nil)
	return err
}

func (c *HTTPClient) LikeItem(ctx context.Context, itemID string) error {
	_, err := c.do(ctx, http.MethodPost, "/progress/"+itemID+"/like", nil)
	return err
}

func (c *HTTPClient) UnlikeItem(ctx context.Context, itemID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/progress/"+itemID+"/like", nil)
	return err
}

var _ Client = (*HTTPClient)(nil)
