// Package transfer talks to the file server: it lists uploaded files,
// uploads a file as a multipart form and builds download URLs.
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"
)

// FormField is the multipart field name the server reads the upload from.
const FormField = "file"

// maxErrorBody caps how much of a failed response body is kept in a StatusError.
const maxErrorBody = 512

// ErrMissingFilename is returned when an upload response has no filename.
var ErrMissingFilename = errors.New("upload response has no filename")

// StatusError reports a non-2xx response.
type StatusError struct {
	Op         string
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: server returned %s", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: server returned %s: %s", e.Op, e.Status, e.Body)
}

// Client wraps an HTTP client. The target is passed on every call so that
// edits to host or port take effect on the next request.
type Client struct {
	http      *http.Client
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a client with no request timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{http: &http.Client{}}
	for _, o := range opts {
		o(c)
	}
	return c
}

var (
	errNotArray     = errors.New("expected a JSON array")
	errTrailingData = errors.New("unexpected data after JSON value")
)

// decodeJSON decodes exactly one JSON value from r into v.
func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errTrailingData
	}
	return nil
}

// uploadResponse is the body returned by POST /upload.
type uploadResponse struct {
	Filename string `json:"filename"`
}

// ListFiles fetches the names of previously uploaded files.
func (c *Client) ListFiles(ctx context.Context, t Target) (names []string, retErr error) {
	endpoint := t.BaseURL() + "/files"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	c.decorate(req)

	log.Debug().Str("url", endpoint).Msg("listing remote files")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer func() {
		if cErr := resp.Body.Close(); cErr != nil {
			retErr = errors.Join(retErr, fmt.Errorf("close response body: %w", cErr))
		}
	}()

	if err := checkStatus("list files", resp); err != nil {
		return nil, err
	}
	if err := decodeJSON(resp.Body, &names); err != nil {
		return nil, fmt.Errorf("list files: decode response: %w", err)
	}
	if names == nil {
		return nil, fmt.Errorf("list files: decode response: %w", errNotArray)
	}
	return names, nil
}

// UploadFile posts r as a single-part multipart form under FormField and
// returns the filename the server reports.
func (c *Client) UploadFile(ctx context.Context, t Target, name string, r io.Reader) (filename string, retErr error) {
	endpoint := t.BaseURL() + "/upload"

	pr, pw := io.Pipe()
	defer func() { _ = pr.Close() }()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile(FormField, name)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	c.decorate(req)

	log.Debug().Str("url", endpoint).Str("file", name).Msg("uploading")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	defer func() {
		if cErr := resp.Body.Close(); cErr != nil {
			retErr = errors.Join(retErr, fmt.Errorf("close response body: %w", cErr))
		}
	}()

	if err := checkStatus("upload "+name, resp); err != nil {
		return "", err
	}
	var out uploadResponse
	if err := decodeJSON(resp.Body, &out); err != nil {
		return "", fmt.Errorf("upload %s: decode response: %w", name, err)
	}
	if out.Filename == "" {
		return "", ErrMissingFilename
	}
	return out.Filename, nil
}

// DownloadURL returns the URL serving the named file.
func (c *Client) DownloadURL(t Target, name string) string {
	return t.BaseURL() + "/files/" + url.PathEscape(name)
}

// Download streams the named file into w and returns the number of bytes
// written.
func (c *Client) Download(ctx context.Context, t Target, name string, w io.Writer) (n int64, retErr error) {
	resp, err := c.OpenDownload(ctx, t, name)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cErr := resp.Body.Close(); cErr != nil {
			retErr = errors.Join(retErr, fmt.Errorf("close response body: %w", cErr))
		}
	}()

	n, err = io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("download %s: %w", name, err)
	}
	return n, nil
}

// OpenDownload issues GET /files/{name} and returns the response once the
// status is known to be 2xx. The caller closes the body.
func (c *Client) OpenDownload(ctx context.Context, t Target, name string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DownloadURL(t, name), nil)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", name, err)
	}
	c.decorate(req)

	log.Debug().Str("url", req.URL.String()).Msg("downloading")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", name, err)
	}
	if err := checkStatus("download "+name, resp); err != nil {
		_ = resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func (c *Client) decorate(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
	}
}
