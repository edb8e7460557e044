// Package memoryStore is an in-process repository.Store. It backs local runs
// with METADATA_DRIVER=memory and the service tests.
package memoryStore

import (
	"context"
	"sort"
	"sync"
	"time"

	"file-storage-service/internal/model/fileInfo"
	"file-storage-service/internal/objectStore"
	"file-storage-service/internal/repository"

	"github.com/google/uuid"
)

type state struct {
	files     map[uuid.UUID]fileInfo.File
	revisions []fileInfo.Revision
	nextRevID int64
}

func (s *state) clone() *state {
	c := &state{
		files:     make(map[uuid.UUID]fileInfo.File, len(s.files)),
		revisions: make([]fileInfo.Revision, len(s.revisions)),
		nextRevID: s.nextRevID,
	}
	for id, f := range s.files {
		c.files[id] = f
	}
	copy(c.revisions, s.revisions)
	return c
}

type Store struct {
	mu    sync.Mutex
	state *state
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{state: &state{files: make(map[uuid.UUID]fileInfo.File), nextRevID: 1}}
}

func (s *Store) run(fn func(*state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

func (s *Store) Files() repository.Files {
	return &files{run: s.run}
}

func (s *Store) Revisions() repository.Revisions {
	return &revisions{run: s.run}
}

// WithinTx serializes with every other access to the store. fn works on a
// draft copy that replaces the live state only when fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Files, repository.Revisions) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.state.clone()
	run := func(f func(*state) error) error { return f(draft) }
	if err := fn(&files{run: run}, &revisions{run: run}); err != nil {
		return err
	}
	s.state = draft
	return nil
}

// sameOwnerKey mirrors the UNIQUE (owner_key, name) constraint.
func sameOwnerKey(a, b string) bool {
	return objectStore.OwnerKey(a) == objectStore.OwnerKey(b)
}

type files struct {
	run func(func(*state) error) error
}

func (f *files) Create(ctx context.Context, file *fileInfo.File) error {
	return f.run(func(st *state) error {
		for _, existing := range st.files {
			if sameOwnerKey(existing.Owner, file.Owner) && existing.Name == file.Name {
				return repository.ErrNameTaken
			}
		}
		st.files[file.ID] = *file
		return nil
	})
}

func (f *files) GetByID(ctx context.Context, id uuid.UUID) (*fileInfo.File, error) {
	var out *fileInfo.File
	err := f.run(func(st *state) error {
		file, ok := st.files[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &file
		return nil
	})
	return out, err
}

func (f *files) ListByOwner(ctx context.Context, owner string) ([]*fileInfo.File, error) {
	out := make([]*fileInfo.File, 0)
	err := f.run(func(st *state) error {
		for _, file := range st.files {
			if file.Owner == owner {
				file := file
				out = append(out, &file)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (f *files) ExistsByName(ctx context.Context, owner, name string) (bool, error) {
	var exists bool
	err := f.run(func(st *state) error {
		for _, file := range st.files {
			if sameOwnerKey(file.Owner, owner) && file.Name == name {
				exists = true
				break
			}
		}
		return nil
	})
	return exists, err
}

func (f *files) UpdateName(ctx context.Context, id uuid.UUID, oldName, newName string, modifiedAt time.Time) error {
	return f.run(func(st *state) error {
		file, ok := st.files[id]
		if !ok || file.Name != oldName {
			return repository.ErrStaleName
		}
		for otherID, other := range st.files {
			if otherID != id && sameOwnerKey(other.Owner, file.Owner) && other.Name == newName {
				return repository.ErrNameTaken
			}
		}
		file.Name = newName
		file.ModifiedAt = modifiedAt
		st.files[id] = file
		return nil
	})
}

func (f *files) Delete(ctx context.Context, id uuid.UUID, name string) error {
	return f.run(func(st *state) error {
		file, ok := st.files[id]
		if !ok {
			return repository.ErrNotFound
		}
		if file.Name != name {
			return repository.ErrStaleName
		}
		delete(st.files, id)
		return nil
	})
}

type revisions struct {
	run func(func(*state) error) error
}

func (r *revisions) Append(ctx context.Context, rev *fileInfo.Revision) error {
	if !rev.Kind.Valid() {
		return repository.ErrInvalidRevision
	}
	return r.run(func(st *state) error {
		rev.ID = st.nextRevID
		st.nextRevID++
		st.revisions = append(st.revisions, *rev)
		return nil
	})
}

func (r *revisions) ListFor(ctx context.Context, fileID uuid.UUID) ([]*fileInfo.Revision, error) {
	out := make([]*fileInfo.Revision, 0)
	err := r.run(func(st *state) error {
		for _, rev := range st.revisions {
			if rev.FileID == fileID {
				rev := rev
				out = append(out, &rev)
			}
		}
		return nil
	})
	return out, err
}
