// Package filestore keeps the submitted paper documents on disk, one pdf
// per paper. Access control happens in the caller, the store only moves
// bytes.
package filestore

import (
	"errors"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
)

var ErrNoDocument = errors.New("no document")

type Store struct {
	Dir string // created on first upload
}

func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) path(paperID int) string {
	return filepath.Join(s.Dir, strconv.Itoa(paperID)+".pdf")
}

func (s *Store) Has(paperID int) bool {
	_, err := os.Stat(s.path(paperID))
	return err == nil
}

// Save replaces the document of the paper. The upload goes to a temp file
// first, so a failed upload can't destroy the previous version.
func (s *Store) Save(paperID int, src io.Reader) error {

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}

	tmp, err := ioutil.TempFile(s.Dir, "upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), s.path(paperID))
}

func (s *Store) Delete(paperID int) error {
	err := os.Remove(s.path(paperID))
	if os.IsNotExist(err) {
		return ErrNoDocument
	}
	return err
}

// Serve writes the document to the response. It sets the content type,
// everything else is up to the caller.
func (s *Store) Serve(w http.ResponseWriter, req *http.Request, paperID int) error {
	f, err := os.Open(s.path(paperID))
	if os.IsNotExist(err) {
		return ErrNoDocument
	}
	if err != nil {
		return err
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/pdf")
	_, err = io.Copy(w, f)
	return err
}
