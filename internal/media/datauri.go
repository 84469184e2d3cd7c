// Package media converts uploaded files to and from the data-URI strings
// that nodes carry as content.
package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

var ErrNotDataURI = errors.New("not a base64 data uri")

// MaxUploadBytes is the default upload bound.
const MaxUploadBytes = 20 << 20

// Limit returns n, or MaxUploadBytes when n <= 0.
func Limit(n int64) int64 {
	if n <= 0 {
		return MaxUploadBytes
	}
	return n
}

// Encode renders data as a base64 data URI.
func Encode(mimeType string, data []byte) string {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Decode splits a base64 data URI into its mime type and raw bytes.
func Decode(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "data:")
	if !ok {
		return "", nil, ErrNotDataURI
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrNotDataURI
	}
	mimeType, isB64 := strings.CutSuffix(header, ";base64")
	if !isB64 {
		return "", nil, ErrNotDataURI
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data uri: %w", err)
	}
	if mimeType == "" {
		mimeType = "text/plain"
	}
	return mimeType, data, nil
}

// IsImage reports whether uri is an inline image.
func IsImage(uri string) bool { return strings.HasPrefix(strings.TrimSpace(uri), "data:image/") }

// ReadFile reads an uploaded file and encodes it. The mime type comes from
// the file extension, falling back to content sniffing. Files larger than
// limit are rejected; limit <= 0 means MaxUploadBytes.
func ReadFile(name string, r io.Reader, limit int64) (string, error) {
	limit = Limit(limit)
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, limit+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	if n > limit {
		return "", fmt.Errorf("read %s: file exceeds %d bytes", name, limit)
	}
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(buf.Bytes())
		if i := strings.IndexByte(mimeType, ';'); i >= 0 {
			mimeType = mimeType[:i]
		}
	}
	return Encode(mimeType, buf.Bytes()), nil
}
