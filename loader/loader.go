package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"memestudio/core"
)

// Loader is the single entry point for bringing images into a session.
// It owns the upload size limit, the template catalog, and the HTTP client
// used for template fetches. Safe for concurrent use.
type Loader struct {
	maxBytes int64
	client   *http.Client
	catalog  *Catalog
}

// NewLoader creates a Loader with the given upload limit, outbound HTTP
// client, and template catalog.
func NewLoader(maxBytes int64, client *http.Client, catalog *Catalog) *Loader {
	return &Loader{
		maxBytes: maxBytes,
		client:   client,
		catalog:  catalog,
	}
}

// Catalog returns the template catalog backing this loader.
func (l *Loader) Catalog() *Catalog {
	return l.catalog
}

// FromUpload reads an uploaded image, bounded by the configured size limit,
// and normalizes it into a SourceImage. The declared MIME type from the
// multipart part is advisory only; the actual bytes decide.
func (l *Loader) FromUpload(r io.Reader) (*SourceImage, error) {
	data, err := readBounded(r, l.maxBytes)
	if err != nil {
		return nil, err
	}
	return decodeNormalized(data, OriginUpload)
}

// FromTemplate resolves a catalog template and fetches its hosted image.
func (l *Loader) FromTemplate(ctx context.Context, id string) (*SourceImage, error) {
	tpl, ok := l.catalog.Find(id)
	if !ok {
		return nil, core.NewLoadError(core.LoadCodeNoTemplate,
			fmt.Sprintf("no template with id %q", id), nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tpl.URL, nil)
	if err != nil {
		return nil, core.NewLoadError(core.LoadCodeFetchFailed,
			fmt.Sprintf("could not fetch template %q", tpl.Name), err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, core.NewLoadError(core.LoadCodeFetchFailed,
			fmt.Sprintf("could not fetch template %q", tpl.Name), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, core.NewLoadError(core.LoadCodeFetchFailed,
			fmt.Sprintf("template %q fetch returned HTTP %d", tpl.Name, resp.StatusCode), nil)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, core.NewLoadError(core.LoadCodeNotAnImage,
			fmt.Sprintf("template %q returned %s, not an image", tpl.Name, ct), nil)
	}

	data, err := readBounded(resp.Body, l.maxBytes)
	if err != nil {
		return nil, err
	}

	src, err := decodeNormalized(data, OriginTemplate)
	if err != nil {
		return nil, err
	}
	return src, nil
}

// readBounded reads at most maxBytes from r, returning a LoadError when the
// input exceeds the limit.
func readBounded(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, core.NewLoadError(core.LoadCodeUnreadable, "could not read image data", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, core.NewLoadError(core.LoadCodeTooLarge, oversizeMessage(maxBytes), nil)
	}
	return data, nil
}
