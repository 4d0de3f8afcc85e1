package filebrowser

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fruitsalade/drivesbrowser/internal/commands"
	"github.com/fruitsalade/drivesbrowser/internal/drive"
	"github.com/fruitsalade/drivesbrowser/internal/shell"
	"github.com/fruitsalade/drivesbrowser/internal/state"
)

type nameOnly string

func (n nameOnly) Name() string { return string(n) }

func newTestFactory(t *testing.T) (*Factory, *drive.Registry) {
	t.Helper()
	reg := drive.NewRegistry()
	require.NoError(t, reg.Register(newTestDrive()))
	require.NoError(t, reg.Register(nameOnly("opaque")))
	return NewFactory(reg, state.NewMemoryStore()), reg
}

func TestRestoreStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "restoring", Restoring.String())
	assert.Equal(t, "settled", Settled.String())
	assert.Equal(t, "unknown", RestoreState(9).String())
}

func TestCreateBrowser(t *testing.T) {
	f, _ := newTestFactory(t)

	b, err := f.CreateBrowser("fb", "S3TestDrive")
	require.NoError(t, err)
	assert.Equal(t, "fb", b.ID())
	assert.Equal(t, "S3TestDrive", b.DriveName())
	assert.Equal(t, Idle, b.State())
	assert.Empty(t, b.Model().Items(), "new browsers are not populated")

	b.SetState(Restoring)
	assert.Equal(t, Restoring, b.State())
}

func TestCreateBrowserUnknownDrive(t *testing.T) {
	f, _ := newTestFactory(t)

	_, err := f.CreateBrowser("fb", "Missing")
	assert.ErrorIs(t, err, drive.ErrNotFound)

	var nf *drive.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Missing", nf.Name)
}

func TestCreateBrowserOpaqueDrive(t *testing.T) {
	f, _ := newTestFactory(t)
	_, err := f.CreateBrowser("fb", "opaque")
	assert.ErrorIs(t, err, ErrNotBrowsable)
}

func openPath(t *testing.T) (*Browser, *shell.Shell, commands.Handler) {
	t.Helper()
	f, reg := newTestFactory(t)
	b, err := f.CreateBrowser("fb", "S3TestDrive")
	require.NoError(t, err)
	sh := shell.New()
	return b, sh, OpenPathHandler(b, reg, sh)
}

func TestOpenPathFile(t *testing.T) {
	b, sh, h := openPath(t)

	err := h(context.Background(), commands.Args{
		commands.ArgPath:            "data/a.csv",
		commands.ArgDontShowBrowser: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "data", b.Model().Path())
	assert.Equal(t, []string{"S3TestDrive:data/a.csv"}, sh.Widgets(shell.RegionMain))
	assert.Equal(t, "S3TestDrive:data/a.csv", sh.Active())
}

func TestOpenPathDirectoryWithPrefix(t *testing.T) {
	b, sh, h := openPath(t)

	err := h(context.Background(), commands.Args{
		commands.ArgPath:            "S3TestDrive:data/raw",
		commands.ArgDontShowBrowser: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "data/raw", b.Model().Path())
	assert.True(t, sh.IsEmpty(shell.RegionMain))
	assert.Equal(t, "", sh.Active())
}

func TestOpenPathShowsBrowser(t *testing.T) {
	_, sh, h := openPath(t)

	require.NoError(t, h(context.Background(), commands.Args{commands.ArgPath: "readme.md"}))
	assert.Equal(t, "fb", sh.Active())
	assert.Equal(t, []string{"S3TestDrive:readme.md"}, sh.Widgets(shell.RegionMain))
}

func TestOpenPathErrors(t *testing.T) {
	_, sh, h := openPath(t)
	ctx := context.Background()

	assert.ErrorIs(t, h(ctx, commands.Args{}), ErrMissingPath)
	assert.ErrorIs(t, h(ctx, commands.Args{commands.ArgPath: "opaque:data"}), ErrForeignDrive)
	assert.ErrorIs(t, h(ctx, commands.Args{commands.ArgPath: "Other:data"}), fs.ErrNotExist)
	assert.ErrorIs(t, h(ctx, commands.Args{commands.ArgPath: "data/missing.csv"}), fs.ErrNotExist)
	assert.True(t, sh.IsEmpty(shell.RegionMain))
}

func TestOpenPathColonInFileName(t *testing.T) {
	reg := drive.NewRegistry()
	d := newTestDrive()
	d.AddFile("notes:v2.txt", 3)
	require.NoError(t, reg.Register(d))
	require.NoError(t, reg.Register(nameOnly("opaque")))

	b, err := NewFactory(reg, state.NewMemoryStore()).CreateBrowser("fb", "S3TestDrive")
	require.NoError(t, err)
	sh := shell.New()
	h := OpenPathHandler(b, reg, sh)

	err = h(context.Background(), commands.Args{
		commands.ArgPath:            "notes:v2.txt",
		commands.ArgDontShowBrowser: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"S3TestDrive:notes:v2.txt"}, sh.Widgets(shell.RegionMain))

	err = h(context.Background(), commands.Args{commands.ArgPath: "S3TestDrive:notes:v2.txt"})
	require.NoError(t, err)
	assert.Equal(t, "fb", sh.Active())
}
