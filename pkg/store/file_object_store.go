package store

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zlib"

	"github.com/kinnison/git-sync/pkg/common/fileops"
	"github.com/kinnison/git-sync/pkg/objects"
	"github.com/kinnison/git-sync/pkg/repository/scpath"
)

// FileObjectStore keeps loose objects the way git does: each object is its
// zlib-compressed envelope in a file named by its hash.
//
// Directory Structure:
// ┌─ <store>/objects/
// │ ├─ ab/ ← First 2 characters of SHA
// │ │ └─ cdef123... ← Remaining 38 characters of SHA
// │ └─ ...
//
// Object files are written once, read-only, through a temp file and rename,
// so a concurrent reader sees either no file or the complete one.
type FileObjectStore struct {
	root scpath.StorePath
}

// NewFileObjectStore creates a store over root/objects.
func NewFileObjectStore(root scpath.StorePath) *FileObjectStore {
	return &FileObjectStore{root: root}
}

// Initialize creates the objects directory if it doesn't exist.
func (fos *FileObjectStore) Initialize() error {
	if err := fileops.EnsureDir(fos.root.ObjectsPath()); err != nil {
		return NewIOError("initialize", "", err)
	}
	return nil
}

// Has checks for the object file without opening it.
func (fos *FileObjectStore) Has(hash objects.ObjectHash) (bool, error) {
	path, err := fos.objectPath("has", hash)
	if err != nil {
		return false, err
	}

	exists, statErr := fileops.Exists(path)
	if statErr != nil {
		return false, NewIOError("has", hash, statErr)
	}
	return exists, nil
}

// Get reads, inflates and verifies an object.
func (fos *FileObjectStore) Get(hash objects.ObjectHash) (*objects.StoredObject, error) {
	path, err := fos.objectPath("get", hash)
	if err != nil {
		return nil, err
	}

	compressed, readErr := os.ReadFile(path.String())
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return nil, NewNotFoundError("get", hash)
		}
		return nil, NewIOError("get", hash, readErr)
	}

	envelope, inflateErr := inflate(compressed)
	if inflateErr != nil {
		return nil, NewObjectError("get", hash, objects.NewFormatError(hash, inflateErr))
	}

	obj, parseErr := objects.ParseEnvelope(hash, envelope)
	if parseErr != nil {
		return nil, NewObjectError("get", hash, parseErr)
	}
	if verr := objects.Verify(obj); verr != nil {
		return nil, NewObjectError("get", hash, verr)
	}
	return obj, nil
}

// Put verifies obj and writes it unless already present.
func (fos *FileObjectStore) Put(obj *objects.StoredObject) error {
	if verr := objects.Verify(obj); verr != nil {
		var hash objects.ObjectHash
		if obj != nil {
			hash = obj.ID
		}
		return NewObjectError("put", hash, verr)
	}

	path, err := fos.objectPath("put", obj.ID)
	if err != nil {
		return err
	}

	exists, statErr := fileops.Exists(path)
	if statErr != nil {
		return NewIOError("put", obj.ID, statErr)
	}
	if exists {
		return nil
	}

	if err := fileops.EnsureParentDir(path); err != nil {
		return NewIOError("put", obj.ID, err)
	}

	envelope := obj.Envelope()
	writeErr := fileops.AtomicWriteFunc(path, 0444, func(w io.Writer) error {
		zw := zlib.NewWriter(w)
		if _, err := zw.Write(envelope); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	})
	if writeErr != nil {
		return NewIOError("put", obj.ID, writeErr)
	}
	return nil
}

func (fos *FileObjectStore) objectPath(op string, hash objects.ObjectHash) (scpath.AbsolutePath, error) {
	if err := hash.Validate(); err != nil {
		return "", NewObjectError(op, hash, objects.NewFormatError(hash, err))
	}
	return fos.root.ObjectFilePath(hash.String()), nil
}

func inflate(compressed []byte) (objects.Envelope, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("zlib reader: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	return objects.Envelope(data), nil
}
