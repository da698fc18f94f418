package services

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/textproto"
	"strings"
	"sync"

	"github.com/desertthunder/cutout/internal/models"
	"golang.org/x/time/rate"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// uploadBody is a multipart/form-data body with a single file part whose length is known up front.
type uploadBody struct {
	io.Reader
	contentType string
	length      int64
}

func (b *uploadBody) Len() int64          { return b.length }
func (b *uploadBody) ContentType() string { return b.contentType }

// newUploadBody frames content as the file part field without buffering the file itself.
func newUploadBody(field string, file models.SelectedFile, content io.Reader, size int64) (*uploadBody, error) {
	var frame bytes.Buffer
	mw := multipart.NewWriter(&frame)

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(file.Name)))
	h.Set("Content-Type", contentType)
	if _, err := mw.CreatePart(h); err != nil {
		return nil, fmt.Errorf("failed to create multipart header: %w", err)
	}
	head := bytes.Clone(frame.Bytes())

	frame.Reset()
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}
	tail := bytes.Clone(frame.Bytes())

	return &uploadBody{
		Reader:      io.MultiReader(bytes.NewReader(head), io.LimitReader(content, size), bytes.NewReader(tail)),
		contentType: mw.FormDataContentType(),
		length:      int64(len(head)) + size + int64(len(tail)),
	}, nil
}

// progressReader reports round(100*loaded/total) each time the value increases.
type progressReader struct {
	r        io.Reader
	total    int64
	report   ProgressFunc
	limiter  *rate.Limiter
	mu       sync.Mutex
	loaded   int64
	reported int
}

func newProgressReader(r io.Reader, total int64, report ProgressFunc, perSecond float64) *progressReader {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &progressReader{
		r:        r,
		total:    total,
		report:   report,
		limiter:  rate.NewLimiter(limit, 1),
		reported: -1,
	}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.advance(int64(n))
	}
	return n, err
}

func (p *progressReader) advance(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.loaded += n
	if p.report == nil || p.total <= 0 {
		return
	}

	pct := Percent(p.loaded, p.total)
	if pct <= p.reported {
		return
	}
	if pct < 100 && p.reported >= 0 && !p.limiter.Allow() {
		return
	}
	p.reported = pct
	p.report(pct)
}

// Percent returns round(100*loaded/total) clamped to [0, 100].
func Percent(loaded, total int64) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(loaded) / float64(total)))
	return max(0, min(100, pct))
}
