package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/kbility/taxassist/internal/document"
)

// Client communicates with the taxassist HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Upload submits a single tax document for extraction. The server replaces
// any previously cached documents and conversation state.
func (c *Client) Upload(ctx context.Context, up document.Upload) (document.Result, error) {
	body, ctype, err := multipartBody("file", []document.Upload{up})
	if err != nil {
		return document.Result{}, err
	}
	return c.postResult(ctx, "/upload", body, ctype)
}

// UploadMulti submits several documents in one request. Result rows come
// back in submission order.
func (c *Client) UploadMulti(ctx context.Context, ups []document.Upload) (document.Result, error) {
	body, ctype, err := multipartBody("files", ups)
	if err != nil {
		return document.Result{}, err
	}
	return c.postResult(ctx, "/upload-multi", body, ctype)
}

// Analyze asks a question about the documents cached for the named recipient.
func (c *Client) Analyze(ctx context.Context, recipient, message string) (string, error) {
	return c.postChat(ctx, "/analyze", map[string]string{
		"question":     message,
		"employeeName": recipient,
	}, "answer")
}

// Summary fetches the conversation summary for the named recipient.
func (c *Client) Summary(ctx context.Context, recipient string) (string, error) {
	return c.getString(ctx, "/summary/"+url.PathEscape(recipient), "summary")
}

// GeneralChat asks a general tax question with no document grounding.
func (c *Client) GeneralChat(ctx context.Context, message string) (string, error) {
	return c.postChat(ctx, "/chat/general", map[string]string{"question": message}, "answer")
}

// GeneralSummary fetches the general conversation summary.
func (c *Client) GeneralSummary(ctx context.Context) (string, error) {
	return c.getString(ctx, "/chat/general/summary", "summary")
}

// SearchIRS runs a free-form IRS information query.
func (c *Client) SearchIRS(ctx context.Context, query string) (string, error) {
	return c.postChat(ctx, "/api/irs-search/query", map[string]string{"question": query}, "answer")
}

// QuickIRS runs one of the canned IRS topics (tax-brackets, standard-deduction,
// latest-updates, filing-deadlines).
func (c *Client) QuickIRS(ctx context.Context, topic string) (string, error) {
	return c.getString(ctx, "/api/irs-search/"+url.PathEscape(topic), "answer")
}

// DownloadCSV streams the CSV export of all cached documents.
func (c *Client) DownloadCSV(ctx context.Context, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/download", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError("download", resp)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("download: %w", err)
	}
	return nil
}

func (c *Client) postResult(ctx context.Context, path string, body *bytes.Buffer, ctype string) (document.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return document.Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", ctype)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return document.Result{}, fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return document.Result{}, apiError("upload", resp)
	}

	var out document.Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return document.Result{}, fmt.Errorf("decode result: %w", err)
	}
	return out, nil
}

func (c *Client) postChat(ctx context.Context, path string, payload map[string]string, field string) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", apiError(path, resp)
	}
	return decodeField(resp.Body, field)
}

func (c *Client) getString(ctx context.Context, path, field string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", apiError(path, resp)
	}
	return decodeField(resp.Body, field)
}

func decodeField(r io.Reader, field string) (string, error) {
	var out map[string]string
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return out[field], nil
}

func apiError(what string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	var parsed map[string]string
	if json.Unmarshal(body, &parsed) == nil && parsed["error"] != "" {
		return fmt.Errorf("%s: status %d: %s", what, resp.StatusCode, parsed["error"])
	}
	return fmt.Errorf("%s: status %d: %s", what, resp.StatusCode, string(body))
}

func multipartBody(field string, ups []document.Upload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, up := range ups {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, up.Name))
		if up.MIME != "" {
			hdr.Set("Content-Type", up.MIME)
		}
		part, err := mw.CreatePart(hdr)
		if err != nil {
			return nil, "", fmt.Errorf("create part: %w", err)
		}
		if _, err := part.Write(up.Data); err != nil {
			return nil, "", fmt.Errorf("write part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
