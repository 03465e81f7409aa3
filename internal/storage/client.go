// Package storage talks to the hosted object-storage service holding
// checklist photos. Writes are idempotent: an upload to an existing path
// overwrites it, so retries of the same logical upload are safe.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const publicMarker = "/object/public/"

var (
	// ErrUploadFailed is returned when the storage service rejects a write.
	ErrUploadFailed = errors.New("storage: upload failed")
	// ErrDeleteFailed is returned when the storage service rejects a delete.
	ErrDeleteFailed = errors.New("storage: delete failed")
)

// Client is a thin REST adapter for the object store.
type Client struct {
	http    *resty.Client
	baseURL string
	bucket  string
}

// NewClient constructs a storage client.
func NewClient(baseURL, bucket, apiKey string) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("storage: empty base url")
	}
	if bucket == "" {
		return nil, errors.New("storage: empty bucket")
	}
	baseURL = strings.TrimRight(baseURL, "/")
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		http.SetAuthToken(apiKey)
	}
	return &Client{http: http, baseURL: baseURL, bucket: bucket}, nil
}

// Upload writes a jpeg payload to objectPath with overwrite-on-conflict and
// returns the public URL of the object.
func (c *Client) Upload(ctx context.Context, objectPath string, data []byte) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "image/jpeg").
		SetHeader("x-upsert", "true").
		SetBody(data).
		Post(fmt.Sprintf("/object/%s/%s", c.bucket, objectPath))
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: status %d", ErrUploadFailed, resp.StatusCode())
	}
	return c.PublicURL(objectPath), nil
}

// Delete removes an object. The caller decides whether a failure matters.
func (c *Client) Delete(ctx context.Context, objectPath string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/object/%s/%s", c.bucket, objectPath))
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("%w: status %d", ErrDeleteFailed, resp.StatusCode())
	}
	return nil
}

// PublicURL returns the stable dereferenceable URL for an object path.
func (c *Client) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s%s%s/%s", c.baseURL, publicMarker, c.bucket, objectPath)
}

// ParseObjectPath recovers the object path from a public URL issued by this
// bucket. It is the inverse of PublicURL and is used for deletes.
func (c *Client) ParseObjectPath(url string) (string, bool) {
	idx := strings.Index(url, publicMarker)
	if idx < 0 {
		return "", false
	}
	rest := strings.TrimPrefix(url[idx+len(publicMarker):], c.bucket+"/")
	if rest == "" || rest == url[idx+len(publicMarker):] {
		return "", false
	}
	return rest, true
}
