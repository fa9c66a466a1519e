// Package netx holds the HTTP plumbing shared by the CLI: a presigned PUT
// with progress reporting and a bounded retry policy.
package netx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// Temporary reports whether a retry may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code >= http.StatusInternalServerError || e.Code == http.StatusTooManyRequests
}

// Retryable reports whether err is worth another attempt: transport failures
// and 5xx/429 responses are, context cancellation and other statuses are not.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return true
}

// ProgressFunc receives a percentage in [0,100].
type ProgressFunc func(percent int)

// progressReader reports monotonically non-decreasing percentages as the
// body is consumed.
type progressReader struct {
	r        io.Reader
	total    int64
	read     int64
	last     int
	progress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.total > 0 {
		p.read += int64(n)
		pct := int(p.read * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
		if pct > p.last {
			p.last = pct
			p.progress(pct)
		}
	}
	return n, err
}

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 4 << 10

// PutPresigned uploads size bytes from body to a presigned URL with the given
// content type. Only 2xx responses succeed.
func PutPresigned(ctx context.Context, client *http.Client, url, contentType string, body io.Reader, size int64, progress ProgressFunc) error {
	if client == nil {
		client = http.DefaultClient
	}
	if progress != nil {
		body = &progressReader{r: body, total: size, progress: progress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: string(b)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
