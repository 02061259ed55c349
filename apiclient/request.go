package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"

	"github.com/jrsteele09/go-admin-client/oauthmodel"
	"golang.org/x/oauth2"
)

const (
	RequestIDHeader = "X-Request-ID"
	contentTypeJSON = "application/json"
)

// Request describes one API call. The body is encoded for every attempt, so a replayed request
// sends the same bytes as the original.
type Request struct {
	Method string
	Path   string // relative to the base URL, or an absolute URL
	Query  url.Values
	Header http.Header
	Body   any // JSON-encoded unless it is a RawBody

	// Retried marks a request that has already been replayed after a token refresh.
	// A 401 on a retried request is returned to the caller instead of refreshing again.
	Retried bool

	// tokenBody builds the body from the credentials used for each attempt. It overrides Body.
	tokenBody func(*oauth2.Token) any
}

// RawBody is sent as-is with its content type, e.g. a multipart form.
type RawBody struct {
	ContentType string
	Data        []byte
}

// RequestOption adjusts a Request built by Client.Request.
type RequestOption func(*Request)

func WithQuery(query url.Values) RequestOption {
	return func(r *Request) {
		r.Query = query
	}
}

func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Header == nil {
			r.Header = make(http.Header)
		}
		r.Header.Set(key, value)
	}
}

func (r *Request) clone() *Request {
	c := *r
	c.Header = r.Header.Clone()
	return &c
}

func (r *Request) encodeBody(tok *oauth2.Token) (io.Reader, string, error) {
	payload := r.Body
	if r.tokenBody != nil && tok != nil {
		payload = r.tokenBody(tok)
	}
	switch body := payload.(type) {
	case nil:
		return nil, "", nil
	case RawBody:
		return bytes.NewReader(body.Data), body.ContentType, nil
	case *RawBody:
		return bytes.NewReader(body.Data), body.ContentType, nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("apiclient: encode request body: %w", err)
		}
		return bytes.NewReader(data), contentTypeJSON, nil
	}
}

// Response is a fully read 2xx response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("apiclient: decode response: %w", err)
	}
	return nil
}

// File is one part of a multipart upload.
type File struct {
	Field   string
	Name    string
	Content io.Reader
}

// Upload sends a multipart form. It goes through the same refresh-and-replay handling as Request.
func (c *Client) Upload(ctx context.Context, path string, fields map[string]string, files ...File) (*Response, error) {
	body, err := multipartBody(fields, files)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

func multipartBody(fields map[string]string, files []File) (RawBody, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := mw.WriteField(k, fields[k]); err != nil {
			return RawBody{}, fmt.Errorf("apiclient: write field %s: %w", k, err)
		}
	}

	for _, f := range files {
		part, err := mw.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return RawBody{}, fmt.Errorf("apiclient: create form file %s: %w", f.Name, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return RawBody{}, fmt.Errorf("apiclient: copy form file %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return RawBody{}, fmt.Errorf("apiclient: close multipart writer: %w", err)
	}
	return RawBody{ContentType: mw.FormDataContentType(), Data: buf.Bytes()}, nil
}

// errorMessage extracts a readable message from an error response body.
func errorMessage(status int, body []byte) string {
	var errResp oauthmodel.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message() != "" {
		return errResp.Message()
	}
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && len(trimmed) <= 512 {
		return string(trimmed)
	}
	return http.StatusText(status)
}
