// Package search talks to the remote similarity-search service.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"imagefinder/internal/domain"
)

// DefaultEndpoint is the local development service
const DefaultEndpoint = "http://localhost:8000/images"

// ErrUploadFailed covers every failed search: transport errors, non-2xx
// statuses and unreadable bodies. The status is not inspected further.
var ErrUploadFailed = errors.New("failed to upload image")

// Request is one validated search
type Request struct {
	Image     domain.ImageInput
	Content   io.Reader // image bytes
	Neighbors int
	RequestID string
}

// Client performs searches
type Client interface {
	Search(ctx context.Context, req Request) ([]domain.RetrievedImage, error)
}

// HTTPClient posts multipart searches to Endpoint
type HTTPClient struct {
	Client    *http.Client
	Endpoint  string
	UserAgent string
}

// NewHTTPClient creates a client. A zero timeout leaves requests bounded
// only by the caller's context.
func NewHTTPClient(endpoint string, timeout time.Duration, userAgent string) *HTTPClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &HTTPClient{
		Client:    &http.Client{Timeout: timeout},
		Endpoint:  endpoint,
		UserAgent: userAgent,
	}
}

type searchResponse struct {
	Images *[]domain.RetrievedImage `json:"images"`
}

// Search sends the image and neighbor count in a single POST and returns
// the ranked images from the response.
func (c *HTTPClient) Search(ctx context.Context, req Request) ([]domain.RetrievedImage, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeForm(mw, req))
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, pr)
	if err != nil {
		pr.CloseWithError(err)
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.UserAgent)
	}
	if req.RequestID != "" {
		httpReq.Header.Set("X-Request-ID", req.RequestID)
	}

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrUploadFailed, ctxErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("%w: HTTP %d", ErrUploadFailed, resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("%w: parsing response: %w", ErrUploadFailed, err)
	}
	if sr.Images == nil {
		return nil, fmt.Errorf("%w: response has no images field", ErrUploadFailed)
	}
	return *sr.Images, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// writeForm writes the image part with its own MIME type, which
// multipart.Writer.CreateFormFile would replace with application/octet-stream
func writeForm(mw *multipart.Writer, req Request) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, quoteEscaper.Replace(req.Image.Name)))
	mimeType := req.Image.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	h.Set("Content-Type", mimeType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if req.Content != nil {
		if _, err := io.Copy(part, req.Content); err != nil {
			return fmt.Errorf("writing image: %w", err)
		}
	}
	if err := mw.WriteField("neighbors", strconv.Itoa(req.Neighbors)); err != nil {
		return err
	}
	return mw.Close()
}
