// Package upload sends build output to Orbiter content storage and returns
// the content identifier (CID) it is stored under.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/orbiterhost/orbiter-cli/internal/api"
	"github.com/orbiterhost/orbiter-cli/internal/model"
	"github.com/orbiterhost/orbiter-cli/internal/server/middleware"
)

// ErrEmpty is returned when there is nothing to upload.
var ErrEmpty = errors.New("nothing to upload")

// FilePart is the multipart field every file is sent under.
const FilePart = "file"

type uploadResult struct {
	CID string `json:"cid"`
}

// Client uploads files to the content endpoint.
type Client struct {
	http   *resty.Client
	url    string
	cred   *model.Credential
	logger *slog.Logger
}

// NewClient creates an upload client posting to uploadURL.
func NewClient(uploadURL string, cred *model.Credential, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	hc := resty.New().SetTimeout(10 * time.Minute)
	return &Client{http: hc, url: uploadURL, cred: cred, logger: logger}
}

// NewClientWithHTTPClient creates a Client on top of an existing http.Client.
func NewClientWithHTTPClient(httpClient *http.Client, uploadURL string, cred *model.Credential) *Client {
	return &Client{
		http:   resty.NewWithClient(httpClient),
		url:    uploadURL,
		cred:   cred,
		logger: slog.New(slog.DiscardHandler),
	}
}

// Upload sends path, a single file or a directory tree, and returns the
// resulting CID. Directory entries are named by their slash-separated path
// relative to path.
func (c *Client) Upload(ctx context.Context, path string) (string, error) {
	files, err := collect(path)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("upload %s: %w", path, ErrEmpty)
	}

	req := api.Authorize(c.http.R().SetContext(ctx), c.cred).
		SetHeader(middleware.RequestIDHeader, middleware.NewID())

	// resty assembles the multipart body in memory before sending, reading
	// each part in turn; lazyFile keeps at most one descriptor open.
	readers := make([]*lazyFile, 0, len(files))
	defer func() {
		for _, r := range readers {
			r.Close()
		}
	}()
	var size int64
	for _, file := range files {
		r := &lazyFile{path: file.abs}
		readers = append(readers, r)
		size += file.size
		req.SetFileReader(FilePart, file.rel, r)
	}

	c.logger.Debug("uploading", "path", path, "files", len(files), "bytes", size)

	var env model.DataResponse[uploadResult]
	var apiErr model.ErrorResponse
	resp, err := req.SetResult(&env).SetError(&apiErr).Post(c.url)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	if resp.IsError() {
		msg := apiErr.Text()
		if msg == "" {
			msg = resp.Status()
		}
		return "", &api.Error{Status: resp.StatusCode(), Message: msg}
	}
	if env.Data.CID == "" {
		return "", fmt.Errorf("upload %s: response carried no cid", path)
	}

	c.logger.Debug("upload complete", "cid", env.Data.CID, "duration_ms", resp.Time().Milliseconds())
	return env.Data.CID, nil
}

// lazyFile opens path on the first Read and closes it once drained.
type lazyFile struct {
	path string
	f    *os.File
	done bool
}

func (l *lazyFile) Read(p []byte) (int, error) {
	if l.done {
		return 0, io.EOF
	}
	if l.f == nil {
		f, err := os.Open(l.path)
		if err != nil {
			return 0, fmt.Errorf("open %s: %w", l.path, err)
		}
		l.f = f
	}
	n, err := l.f.Read(p)
	if err == io.EOF {
		l.done = true
		l.Close()
	}
	return n, err
}

func (l *lazyFile) Close() error {
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

type localFile struct {
	abs  string
	rel  string
	size int64
}

func collect(root string) ([]localFile, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return []localFile{{abs: root, rel: filepath.Base(root), size: info.Size()}}, nil
	}

	var files []localFile
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, localFile{abs: p, rel: filepath.ToSlash(rel), size: fi.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}
