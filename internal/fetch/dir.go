package fetch

import (
	"context"
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
)

// DirFetcher serves pages from a file system, typically os.DirFS of the
// static site directory.
type DirFetcher struct {
	fsys fs.FS
}

// NewDirFetcher creates a fetcher reading pages from fsys.
func NewDirFetcher(fsys fs.FS) *DirFetcher {
	return &DirFetcher{fsys: fsys}
}

// Fetch reads pageURL from the file system. Missing files yield a 404
// response, paths escaping the root a 400 response.
func (f *DirFetcher) Fetch(ctx context.Context, pageURL string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := pageURL
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		name = "index.html"
	}
	if !fs.ValidPath(name) {
		return &Response{URL: pageURL, Status: http.StatusBadRequest}, nil
	}
	name = path.Clean(name)

	body, err := fs.ReadFile(f.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Response{URL: pageURL, Status: http.StatusNotFound}, nil
		}
		return nil, err
	}

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}

	return &Response{
		URL:         pageURL,
		Status:      http.StatusOK,
		ContentType: contentType,
		Body:        body,
	}, nil
}
