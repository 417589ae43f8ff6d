package directory

import "context"

// RowHandle addresses a row returned by FindRow. ID is transport specific
// (a surrogate key for SQL, a zero-based position for sheets and files);
// Key is the username the row was found under so that file-like
// transports can detect a table that changed underneath them.
type RowHandle struct {
	ID  int64
	Key string
}

// Transport is the persistence collaborator of the Store. It treats the
// user list as a plain table: no uniqueness is enforced here.
type Transport interface {
	ReadAllRows(ctx context.Context) ([]Row, error)
	AppendRow(ctx context.Context, row Row) error
	// FindRow returns the first row whose trimmed username equals key
	// exactly (no case folding).
	FindRow(ctx context.Context, key string) (RowHandle, bool, error)
	DeleteRow(ctx context.Context, h RowHandle) error
	Close() error
}
