package util

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// ExtractPDFText extracts the text layer of a PDF outline page by page.
func ExtractPDFText(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	log.Printf("Total pages: %d\n", doc.NumPage())

	var fullText bytes.Buffer
	var lastErr error

	for n := 0; n < doc.NumPage(); n++ {
		pageText, err := doc.Text(n)
		if err != nil {
			lastErr = fmt.Errorf("page %d: failed to extract text: %w", n+1, err)
			log.Println(lastErr)
			continue
		}

		pageText = strings.TrimSpace(pageText)
		if len(pageText) > 0 {
			fullText.WriteString(pageText)
			fullText.WriteString("\n\n")
		}
	}

	result := strings.TrimSpace(fullText.String())

	if len(result) == 0 {
		if lastErr != nil {
			return "", fmt.Errorf("failed to extract text from PDF: %w", lastErr)
		}
		return "", fmt.Errorf("no text extracted from PDF (PDF might be empty or scanned without a text layer)")
	} else if len(result) < 100 {
		return "", fmt.Errorf("outline too short for meaningful review")
	}

	log.Printf("Total extracted text: %d chars\n", len(result))
	return result, nil
}
