package yamlfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/pricegate/internal/common"
	"github.com/dmitrijs2005/pricegate/internal/directory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFile(t *testing.T) *File {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "data", "users.yaml"))
}

func TestMissingFileIsEmptyTable(t *testing.T) {
	f := newFile(t)

	rows, err := f.ReadAllRows(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, found, err := f.FindRow(context.Background(), "jdoe")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAppendWritesHeaderKeys(t *testing.T) {
	f := newFile(t)
	ctx := context.Background()

	row := directory.Row{Username: "jdoe", Name: "Jane", Surname: "Doe", Email: "j@x.com", Password: "h1", Role: "user"}
	require.NoError(t, f.AppendRow(ctx, row))

	data, err := os.ReadFile(f.Path())
	require.NoError(t, err)
	for _, col := range common.Header {
		assert.Contains(t, string(data), col+":")
	}

	info, err := os.Stat(f.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	rows, err := f.ReadAllRows(ctx)
	require.NoError(t, err)
	require.Equal(t, []directory.Row{row}, rows)
}

func TestFindAndDelete(t *testing.T) {
	f := newFile(t)
	ctx := context.Background()

	for _, u := range []string{"amy", " jdoe ", "zed"} {
		require.NoError(t, f.AppendRow(ctx, directory.Row{Username: u}))
	}

	h, found, err := f.FindRow(ctx, "jdoe")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(1), h.ID)

	require.NoError(t, f.DeleteRow(ctx, h))

	rows, err := f.ReadAllRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "amy", rows[0].Username)
	assert.Equal(t, "zed", rows[1].Username)

	err = f.DeleteRow(ctx, h)
	assert.True(t, errors.Is(err, common.ErrUserNotFound))
}

func TestDeleteRow_FileShiftedUnderneath(t *testing.T) {
	f := newFile(t)
	ctx := context.Background()

	require.NoError(t, f.AppendRow(ctx, directory.Row{Username: "amy"}))
	require.NoError(t, f.AppendRow(ctx, directory.Row{Username: "jdoe"}))

	h, found, err := f.FindRow(ctx, "jdoe")
	require.NoError(t, err)
	require.True(t, found)

	// someone removes "amy" by hand: jdoe moves to index 0
	amy, _, err := f.FindRow(ctx, "amy")
	require.NoError(t, err)
	require.NoError(t, f.DeleteRow(ctx, amy))

	require.NoError(t, f.DeleteRow(ctx, h))
	rows, err := f.ReadAllRows(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCorruptFileIsAnError(t *testing.T) {
	f := newFile(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(f.Path()), 0o750))
	require.NoError(t, os.WriteFile(f.Path(), []byte("username: [not a list"), 0o600))

	_, err := f.ReadAllRows(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")

	err = f.AppendRow(context.Background(), directory.Row{Username: "x"})
	require.Error(t, err)
}

func TestCanceledContext(t *testing.T) {
	f := newFile(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.ReadAllRows(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, f.AppendRow(ctx, directory.Row{}), context.Canceled)
}

func TestWorksAsStoreTransport(t *testing.T) {
	var _ directory.Transport = (*File)(nil)
}
