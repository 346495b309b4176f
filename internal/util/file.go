package util

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// ValidateMimeType sniffs the first 512 bytes of reader and checks them against allowedTypes.
// allowedTypes holds prefixes or full types such as "image/".
// The returned reader replays the sniffed bytes.
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, io.Reader, error) {
	buffer := make([]byte, 512)
	n, err := io.ReadFull(reader, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	head := buffer[:n]
	replay := io.MultiReader(bytes.NewReader(head), reader)

	mimeType := http.DetectContentType(head)
	// DetectContentType reports svg as text/xml
	if strings.HasPrefix(mimeType, "text/xml") && bytes.Contains(head, []byte("<svg")) {
		mimeType = MimeSVG
	}

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) {
			return mimeType, replay, nil
		}
	}

	return mimeType, nil, Validation("invalid file type: %s", mimeType)
}

func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, MimeImage)
}

// IconObjectName builds the storage key for a badge icon.
func IconObjectName(badgeID, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedIconExtensions {
		if ext == allowed {
			return fmt.Sprintf("badges/%s%s", badgeID, ext), nil
		}
	}
	return "", Validation("unsupported icon extension %q", ext)
}
