package blob

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
)

// ExtractText returns the plain text of a stored CV document.
func ExtractText(ctx context.Context, s Store, ref string) (string, error) {
	rc, err := s.Open(ctx, ref)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	if strings.ToLower(filepath.Ext(ref)) == ".txt" {
		b, err := io.ReadAll(rc)
		if err != nil {
			return "", fmt.Errorf("read text file: %w", err)
		}
		return string(b), nil
	}
	res, err := docconv.Convert(rc, docconv.MimeTypeByExtension(ref), false)
	if err != nil {
		return "", fmt.Errorf("failed to parse document: %w", err)
	}
	return strings.TrimSpace(res.Body), nil
}
