// Package jsonfile stores the student Document in a single JSON file.
package jsonfile

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/riskwatch/core"
	"github.com/trezcool/riskwatch/core/risk"
)

type studentRepository struct {
	path string
	perm os.FileMode
}

var _ risk.Repository = (*studentRepository)(nil)

func NewStudentRepository(path string) risk.Repository {
	return &studentRepository{path: path, perm: 0644}
}

// Load reads the whole file. A missing file is an empty legacy document.
func (repo *studentRepository) Load(_ context.Context) (risk.Document, error) {
	data, err := ioutil.ReadFile(repo.path)
	if err != nil {
		if os.IsNotExist(err) {
			return risk.NewDocument(), nil
		}
		return risk.Document{}, errors.Wrapf(err, "reading %s", repo.path)
	}
	doc, err := risk.DecodeDocument(data)
	if err != nil {
		return risk.Document{}, errors.Wrapf(err, "decoding %s", repo.path)
	}
	return doc, nil
}

// Save replaces the file atomically: readers see either the previous or the new document, never a partial one.
func (repo *studentRepository) Save(_ context.Context, doc risk.Document) error {
	data, err := doc.Encode()
	if err != nil {
		return err
	}

	dir := filepath.Dir(repo.path)
	tmp, err := ioutil.TempFile(dir, "."+filepath.Base(repo.path)+".*.tmp")
	if err != nil {
		if os.IsNotExist(err) {
			// the store itself is gone; nothing more can be saved
			return core.NewShutdownError(fmt.Sprintf("student store directory %s does not exist", dir))
		}
		return errors.Wrap(err, "creating temp file")
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrap(err, "writing temp file")
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrap(err, "syncing temp file")
	}
	if err = tmp.Close(); err != nil {
		cleanup()
		return errors.Wrap(err, "closing temp file")
	}
	if err = os.Chmod(tmpName, repo.perm); err != nil {
		cleanup()
		return errors.Wrap(err, "setting file mode")
	}
	if err = os.Rename(tmpName, repo.path); err != nil {
		cleanup()
		return errors.Wrapf(err, "replacing %s", repo.path)
	}
	return nil
}
