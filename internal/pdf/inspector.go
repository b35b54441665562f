package pdf

import (
	"context"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf16"
)

// NoPDFTitle is recorded when a document has no readable /Title entry.
const NoPDFTitle = "No PDF Title"

// titlePattern matches the /Title entry in either literal () or hex <>
// string form.
var titlePattern = regexp.MustCompile(`/Title\s*\(([^)]*)\)|/Title\s*<([^>]*)>`)

// Inspector downloads PDF documents and extracts their titles.
type Inspector struct {
	// client is the HTTP client used for downloads.
	client *http.Client

	// userAgent is the User-Agent header value.
	userAgent string

	// maxSize limits how many bytes of a document are read. The Info
	// dictionary usually sits near one end of the file, so a bounded
	// read finds it in practice.
	maxSize int64

	// logger records download and extraction problems.
	logger *slog.Logger
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithTimeout sets the per-download timeout.
func WithTimeout(d time.Duration) Option {
	return func(i *Inspector) {
		i.client.Timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(i *Inspector) {
		i.userAgent = ua
	}
}

// WithMaxSize sets the maximum number of bytes downloaded per document.
func WithMaxSize(size int64) Option {
	return func(i *Inspector) {
		i.maxSize = size
	}
}

// WithHTTPClient replaces the underlying HTTP client. Mainly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(i *Inspector) {
		i.client = client
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inspector) {
		i.logger = logger
	}
}

// New creates an Inspector.
func New(opts ...Option) *Inspector {
	i := &Inspector{
		client:    &http.Client{Timeout: 5 * time.Second},
		userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		maxSize:   10 * 1024 * 1024,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Title downloads the document at pdfURL and returns its embedded
// title. It never fails: any download or extraction problem is logged
// and yields NoPDFTitle, because a missing title must not interrupt a
// crawl.
func (i *Inspector) Title(ctx context.Context, pdfURL string) string {
	data, err := i.download(ctx, pdfURL)
	if err != nil {
		i.logger.Warn("pdf download failed", "url", pdfURL, "error", err)
		return NoPDFTitle
	}
	if data == nil {
		i.logger.Debug("pdf url served non-pdf content", "url", pdfURL)
		return NoPDFTitle
	}

	title := ExtractTitle(data)
	if title == "" {
		return NoPDFTitle
	}
	return title
}

// download fetches the document with a size limit. A nil, nil return
// means the response was not a PDF.
func (i *Inspector) download(ctx context.Context, pdfURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", i.userAgent)

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, nil
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "pdf") && !strings.Contains(contentType, "octet-stream") {
		return nil, nil
	}

	return io.ReadAll(io.LimitReader(resp.Body, i.maxSize))
}

// ExtractTitle scans raw PDF bytes for the Info dictionary /Title entry
// and returns its decoded value, or "" when absent.
func ExtractTitle(data []byte) string {
	matches := titlePattern.FindSubmatch(data)
	if matches == nil {
		return ""
	}
	if literal := matches[1]; len(literal) > 0 {
		return decodeLiteralString(string(literal))
	}
	if hexStr := matches[2]; len(hexStr) > 0 {
		return decodeHexString(string(hexStr))
	}
	return ""
}

// decodeLiteralString undoes the escape sequences of a PDF literal
// string.
func decodeLiteralString(s string) string {
	replacer := strings.NewReplacer(
		`\n`, "\n",
		`\r`, "\r",
		`\t`, "\t",
		`\(`, "(",
		`\)`, ")",
		`\\`, `\`,
	)
	return strings.TrimSpace(replacer.Replace(s))
}

// decodeHexString decodes a PDF hex string, handling the UTF-16BE form
// (FEFF byte order mark) that most producers emit for non-ASCII titles.
func decodeHexString(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
			return -1
		}
		return r
	}, s)
	if len(s)%2 != 0 {
		// PDF hex strings with odd length carry an implied trailing
		// zero digit.
		s += "0"
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return ""
	}

	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		units := make([]uint16, 0, (len(raw)-2)/2)
		for i := 2; i+1 < len(raw); i += 2 {
			units = append(units, uint16(raw[i])<<8|uint16(raw[i+1]))
		}
		return strings.TrimSpace(string(utf16.Decode(units)))
	}

	return strings.TrimSpace(string(raw))
}
