package safepath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"framekeep/internal/testutil"
)

func TestNewRejectsMissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrInvalidRoot)
}

func TestNewRejectsFileRoot(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.jpg")
	testutil.CreateFile(t, file, "x")

	_, err := New(file)
	assert.ErrorIs(t, err, ErrInvalidRoot)
}

func TestValidatePath(t *testing.T) {
	root := t.TempDir()
	v, err := New(root)
	require.NoError(t, err)

	assert.NoError(t, v.ValidatePath(filepath.Join(root, "frame01.jpg")))
	assert.NoError(t, v.ValidatePath(root))
	assert.ErrorIs(t, v.ValidatePath(filepath.Join(root, "..", "outside.jpg")), ErrPathEscape)
	assert.ErrorIs(t, v.ValidatePath("/elsewhere/frame.jpg"), ErrPathEscape)
}

func TestSafeRename(t *testing.T) {
	root := t.TempDir()
	v, err := New(root)
	require.NoError(t, err)

	src := filepath.Join(root, "a.jpg")
	dst := filepath.Join(root, "b.jpg")
	testutil.CreateFile(t, src, "content")

	require.NoError(t, v.SafeRename(src, dst))
	assert.NoFileExists(t, src)
	assert.FileExists(t, dst)

	err = v.SafeRename(dst, filepath.Join(root, "..", "escape.jpg"))
	assert.ErrorIs(t, err, ErrPathEscape)
}

func TestSafeRemove(t *testing.T) {
	root := t.TempDir()
	v, err := New(root)
	require.NoError(t, err)

	target := filepath.Join(root, "frame.jpg")
	testutil.CreateFile(t, target, "x")

	require.NoError(t, v.SafeRemove(target))
	assert.NoFileExists(t, target)

	assert.ErrorIs(t, v.SafeRemove(filepath.Join(root, "..", "other")), ErrPathEscape)
}

func TestSafeRenameRejectsSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	link := filepath.Join(root, "link")
	require.NoError(t, os.Symlink(outside, link))

	v, err := New(root)
	require.NoError(t, err)

	testutil.CreateFile(t, filepath.Join(root, "a.jpg"), "x")
	err = v.SafeRename(filepath.Join(root, "a.jpg"), filepath.Join(link, "b.jpg"))
	assert.ErrorIs(t, err, ErrSymlinkEscape)
}
