package webpage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"docinsight/internal/contextutil"
)

const (
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 2 * time.Second
	maxBodyBytes          = 4 << 20
)

var (
	multiNewlinePattern = regexp.MustCompile(`\n{3,}`)
	multiSpacePattern   = regexp.MustCompile(`[ \t]{2,}`)
)

// Fetcher downloads a web page and flattens its markup into plain text.
type Fetcher struct {
	MaxAttempts    int
	RetryBaseDelay time.Duration
	client         *http.Client
}

// NewFetcher creates a new page fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{
		MaxAttempts:    defaultMaxAttempts,
		RetryBaseDelay: defaultRetryBaseDelay,
		client:         http.DefaultClient,
	}
}

// FetchText downloads the page at rawURL and returns its visible text.
// Script, style and svg blocks are dropped, img alt attributes are inlined,
// remaining tags are removed and whitespace is collapsed.
//
// An HTTP 409 is retried up to MaxAttempts times with a delay of
// attempt * RetryBaseDelay between tries. Any other non-2xx status is not
// retried. Callers should treat an error as "no text from this source".
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= f.MaxAttempts; attempt++ {
		body, status, err := f.get(ctx, rawURL)
		if err != nil {
			lastErr = err
			logger.WarnContext(ctx, "page fetch failed", "url", rawURL, "attempt", attempt, "error", err)
			continue
		}

		switch {
		case status >= 200 && status < 300:
			text, err := flatten(body)
			if err != nil {
				return "", fmt.Errorf("failed to parse page: %w", err)
			}
			return text, nil
		case status == http.StatusConflict:
			// The page is still being prepared upstream. Back off and retry,
			// unless this was the last attempt.
			lastErr = fmt.Errorf("bad status %d", status)
			if attempt == f.MaxAttempts {
				break
			}
			logger.InfoContext(ctx, "page not ready, retrying", "url", rawURL, "attempt", attempt)
			select {
			case <-time.After(time.Duration(attempt) * f.RetryBaseDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		default:
			return "", fmt.Errorf("bad status %d", status)
		}
	}

	return "", fmt.Errorf("fetch attempts exhausted: %w", lastErr)
}

// get performs a single GET request and returns the body and status code.
func (f *Fetcher) get(ctx context.Context, rawURL string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", 0, fmt.Errorf("failed to read response: %w", err)
	}

	return string(body), resp.StatusCode, nil
}

// flatten converts an HTML document into plain text with blank lines between blocks.
func flatten(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	extractText(doc, &sb, 0)

	return collapseWhitespace(sb.String()), nil
}

func extractText(n *html.Node, sb *strings.Builder, depth int) {
	if depth > 50 {
		return // Prevent excessive recursion
	}

	switch n.Type {
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text != "" {
			sb.WriteString(text)
			sb.WriteString(" ")
		}
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "svg", "iframe":
			return // Skip these elements
		case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "li", "tr", "section", "article", "blockquote", "pre":
			sb.WriteString("\n\n")
		case "br":
			sb.WriteString("\n")
		case "img":
			if alt := getAttr(n, "alt"); alt != "" {
				sb.WriteString(alt)
				sb.WriteString(" ")
			}
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, sb, depth+1)
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "h1", "h2", "h3", "h4", "h5", "h6", "li", "tr", "section", "article", "blockquote", "pre":
			sb.WriteString("\n\n")
		}
	}
}

// collapseWhitespace normalizes runs of spaces and newlines, keeping blank-line
// paragraph boundaries intact for the segmenter.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(multiSpacePattern.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	s = multiNewlinePattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
