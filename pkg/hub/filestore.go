package hub

import (
	"sync"
	"time"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/protocol"
)

// File is one relayed file, buffered entirely in memory. While the upload is
// open the body lives as an ordered chunk list; Complete concatenates the
// chunks into a single contiguous buffer and frees the list. Once sealed the
// buffer is immutable and may be read without holding any lock.
type File struct {
	ID           string
	OriginalName string
	Size         int64
	Mimetype     string
	UploadedAt   time.Time
	UploaderID   string

	// Mutable upload state, guarded by the owning store's mutex.
	chunks   [][]byte
	received int64
	sealed   bool
	data     []byte
}

// Meta returns the metadata view of the file as it appears on the wire and
// on the HTTP surface.
func (f *File) Meta() protocol.FileMeta {
	return protocol.FileMeta{
		ID:           f.ID,
		OriginalName: f.OriginalName,
		Size:         f.Size,
		Mimetype:     f.Mimetype,
		UploadedAt:   f.UploadedAt,
	}
}

// Data returns the sealed byte buffer. It is only meaningful on files
// obtained from Open or Complete; for files still uploading it is nil.
func (f *File) Data() []byte {
	return f.data
}

// FileStore buffers the files of one session, keyed by file id, preserving
// insertion order for catalog listings. All methods are safe for concurrent
// use.
type FileStore struct {
	mu    sync.Mutex
	files map[string]*File
	order []string
}

// NewFileStore creates an empty store.
func NewFileStore() *FileStore {
	return &FileStore{
		files: make(map[string]*File),
	}
}

// Begin allocates an open file with a fresh id and the metadata declared in
// file_start. The returned pointer is shared with the store; only its
// immutable metadata fields may be touched by the caller.
func (s *FileStore) Begin(uploaderID, name string, size int64, mimetype string) *File {
	f := &File{
		ID:           NewFileID(),
		OriginalName: name,
		Size:         size,
		Mimetype:     mimetype,
		UploadedAt:   time.Now(),
		UploaderID:   uploaderID,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[f.ID] = f
	s.order = append(s.order, f.ID)
	return f
}

// Append extends an open file with one chunk and returns the new received
// total. The store takes ownership of the chunk slice. A chunk that would
// push the total past the declared size is dropped with ErrSizeExceeded and
// the file stays open; the janitor reclaims it at TTL since it can never
// complete.
func (s *FileStore) Append(fileID string, chunk []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[fileID]
	if !ok {
		return 0, ErrFileNotFound
	}
	if f.sealed {
		return f.received, ErrFileComplete
	}
	if f.received+int64(len(chunk)) > f.Size {
		return f.received, ErrSizeExceeded
	}

	f.chunks = append(f.chunks, chunk)
	f.received += int64(len(chunk))
	return f.received, nil
}

// Complete seals an upload. It requires every declared byte to have arrived;
// on ErrSizeMismatch the file stays open and uncompletable so the janitor
// collects it later. On success the chunk list is concatenated into one
// buffer and freed, and the returned file's Data is immutable from then on.
func (s *FileStore) Complete(fileID string) (*File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[fileID]
	if !ok {
		return nil, ErrFileNotFound
	}
	if f.sealed {
		return f, ErrFileComplete
	}
	if f.received != f.Size {
		return nil, ErrSizeMismatch
	}

	data := make([]byte, 0, f.Size)
	for _, chunk := range f.chunks {
		data = append(data, chunk...)
	}
	f.data = data
	f.chunks = nil
	f.sealed = true
	return f, nil
}

// Get returns the file with the given id, open or sealed.
func (s *FileStore) Get(fileID string) (*File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[fileID]
	return f, ok
}

// Open returns a sealed file ready for download. Files still uploading
// answer ErrFileNotComplete.
func (s *FileStore) Open(fileID string) (*File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[fileID]
	if !ok {
		return nil, ErrFileNotFound
	}
	if !f.sealed {
		return nil, ErrFileNotComplete
	}
	return f, nil
}

// Remove drops a file, open or sealed, and reports whether it existed.
func (s *FileStore) Remove(fileID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[fileID]; !ok {
		return false
	}
	delete(s.files, fileID)
	s.dropOrder(fileID)
	return true
}

// List returns metadata for every buffered file, open or sealed, in
// insertion order.
func (s *FileStore) List() []protocol.FileMeta {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]protocol.FileMeta, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.files[id].Meta())
	}
	return out
}

// Catalog returns metadata for the sealed files only, in insertion order.
// This is what joiners receive in existing_files: open uploads are not
// advertised because they cannot be downloaded yet.
func (s *FileStore) Catalog() []protocol.FileMeta {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]protocol.FileMeta, 0, len(s.order))
	for _, id := range s.order {
		if f := s.files[id]; f.sealed {
			out = append(out, f.Meta())
		}
	}
	return out
}

// Count returns the number of buffered files, open or sealed.
func (s *FileStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// ExpireBefore drops every file uploaded before the cutoff, open or sealed,
// and returns the metadata of the dropped files so the caller can announce
// each removal to the session.
func (s *FileStore) ExpireBefore(cutoff time.Time) []protocol.FileMeta {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []protocol.FileMeta
	for _, id := range append([]string(nil), s.order...) {
		f := s.files[id]
		if f.UploadedAt.Before(cutoff) {
			expired = append(expired, f.Meta())
			delete(s.files, id)
			s.dropOrder(id)
		}
	}
	return expired
}

// dropOrder removes one id from the insertion-order list. Caller holds mu.
func (s *FileStore) dropOrder(fileID string) {
	for i, id := range s.order {
		if id == fileID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
