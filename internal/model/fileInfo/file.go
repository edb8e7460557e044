package fileInfo

import (
	"time"

	"github.com/google/uuid"
)

// File is the metadata record of one user-owned file. Its object-store key is
// never stored; it is derived from Owner and Name on every use.
type File struct {
	ID          uuid.UUID `json:"id"`
	Owner       string    `json:"owner"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
}

type RevisionKind string

const (
	RevisionCreate RevisionKind = "CREATE"
	RevisionRename RevisionKind = "RENAME"
	RevisionDelete RevisionKind = "DELETE"
)

func (k RevisionKind) Valid() bool {
	switch k {
	case RevisionCreate, RevisionRename, RevisionDelete:
		return true
	}
	return false
}

// Revision is an immutable audit record of one completed mutation. FileID is a
// weak reference: the revision survives the deletion of its file.
type Revision struct {
	ID        int64        `json:"id"`
	FileID    uuid.UUID    `json:"file_id"`
	Owner     string       `json:"owner"`
	Kind      RevisionKind `json:"kind"`
	Actor     string       `json:"actor"`
	OldName   string       `json:"old_name,omitempty"`
	NewName   string       `json:"new_name,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

func NewCreateRevision(file *File, actor string, at time.Time) *Revision {
	return &Revision{FileID: file.ID, Owner: file.Owner, Kind: RevisionCreate, Actor: actor, NewName: file.Name, CreatedAt: at}
}

func NewRenameRevision(file *File, oldName, newName, actor string, at time.Time) *Revision {
	return &Revision{FileID: file.ID, Owner: file.Owner, Kind: RevisionRename, Actor: actor, OldName: oldName, NewName: newName, CreatedAt: at}
}

func NewDeleteRevision(file *File, actor string, at time.Time) *Revision {
	return &Revision{FileID: file.ID, Owner: file.Owner, Kind: RevisionDelete, Actor: actor, OldName: file.Name, CreatedAt: at}
}
