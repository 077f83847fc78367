package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ledongthuc/pdf"
)

const pdfDownloadTimeout = 60 * time.Second

// extractPDFPages downloads a PDF and extracts the plain text of each page.
// Pages whose text cannot be extracted are skipped.
func extractPDFPages(ctx context.Context, url string) ([]pageText, error) {
	data, err := downloadPDF(ctx, url)
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF: %w", err)
	}

	var pages []pageText
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil || text == "" {
			continue
		}
		pages = append(pages, pageText{number: i, text: text})
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no extractable text in PDF")
	}
	return pages, nil
}

func downloadPDF(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, pdfDownloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download PDF: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d downloading PDF", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF body: %w", err)
	}
	return data, nil
}
