package storagesvc

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/tradelore/tradelore/core"
)

// LocalStore writes uploads to a directory on disk. Development only.
type LocalStore struct {
	dir     string
	baseURL string
}

var _ core.FileStore = (*LocalStore)(nil)

func NewLocalStore(conf *core.Config) (*LocalStore, error) {
	dir := conf.Storage.LocalDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(conf.WorkDir, dir)
	}
	if err := os.MkdirAll(filepath.Join(dir, "resources"), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating upload dir")
	}
	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimSuffix(conf.FrontendBaseURL, "/") + "/uploads",
	}, nil
}

func (s *LocalStore) Upload(ctx context.Context, filename, contentType string, size int64, r io.Reader) (core.UploadResult, error) {
	if err := core.ValidateUpload(contentType, size); err != nil {
		return core.UploadResult{}, err
	}

	key := makeKey(filename)
	f, err := os.Create(filepath.Join(s.dir, filepath.FromSlash(key)))
	if err != nil {
		return core.UploadResult{}, errors.Wrap(err, "creating upload file")
	}
	defer func() { _ = f.Close() }()

	if _, err = io.Copy(f, r); err != nil {
		return core.UploadResult{}, errors.Wrap(err, "writing upload file")
	}

	return core.UploadResult{
		Key:      key,
		URL:      s.baseURL + "/" + key,
		FileType: core.InferFileType(contentType),
	}, nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return errors.Wrap(err, "deleting upload file")
}
