// Package storage keeps uploaded deposit receipts.
package storage

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sgi/backend/internal/domain/shared"
)

// receiptExtensions lists accepted receipt content types
var receiptExtensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/heic":      ".heic",
	"application/pdf": ".pdf",
}

// IsAcceptedContentType reports whether receipts of contentType are accepted
func IsAcceptedContentType(contentType string) bool {
	_, ok := receiptExtensions[normalizeContentType(contentType)]
	return ok
}

func normalizeContentType(contentType string) string {
	ct, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(ct))
}

// validateReceipt checks an upload before it is written
func validateReceipt(data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", shared.NewValidationError("receipt", "Receipt file is empty")
	}
	ext, ok := receiptExtensions[normalizeContentType(contentType)]
	if !ok {
		return "", shared.NewValidationError("receipt",
			fmt.Sprintf("Unsupported receipt type %q", contentType))
	}
	return ext, nil
}

// receiptKey builds "<prefix>/YYYY/MM/<uuid><ext>"
func receiptKey(prefix string, now time.Time, ext string) string {
	return path.Join(prefix, now.UTC().Format("2006/01"), uuid.NewString()+ext)
}

// validRef rejects references that could escape the prefix
func validRef(prefix string, ref shared.ReceiptRef) bool {
	s := string(ref)
	if s == "" || strings.Contains(s, "..") {
		return false
	}
	return prefix == "" || strings.HasPrefix(s, strings.TrimSuffix(prefix, "/")+"/")
}
