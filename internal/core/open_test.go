package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/illarion/cloak/internal/mock"
)

func TestOpen_AdvancedStagesPlaintext(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := newEnv(t)
	viewer := mock.NewMockViewer(ctrl)
	e := env.engine(t, func(o *Options) { o.Viewer = viewer })
	ctx := context.Background()

	src := env.writeSource(t, "notes.txt", "plain notes")
	entry, err := e.Hide(ctx, src, LevelAdvanced)
	require.NoError(t, err)

	sealedBefore, err := env.dir.ReadFile(entry.StoredName)
	require.NoError(t, err)

	staging, _ := env.dir.StagingDir(false)
	want := filepath.Join(staging, "notes.txt")
	viewer.EXPECT().Open(gomock.Any(), want).Return(nil).Times(2)

	// Stale preview from an earlier session is replaced
	require.NoError(t, os.MkdirAll(staging, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(staging, "old.txt"), []byte("stale"), 0600))

	staged, err := e.Open(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, want, staged)

	data, err := os.ReadFile(staged)
	require.NoError(t, err)
	assert.Equal(t, "plain notes", string(data))

	_, err = os.Stat(filepath.Join(staging, "old.txt"))
	assert.True(t, os.IsNotExist(err), "staging is purged before each open")

	// Opening again overwrites the staged copy
	require.NoError(t, os.WriteFile(staged, []byte("edited"), 0600))
	_, err = e.Open(ctx, entry.ID)
	require.NoError(t, err)
	data, err = os.ReadFile(staged)
	require.NoError(t, err)
	assert.Equal(t, "plain notes", string(data))

	sealedAfter, err := env.dir.ReadFile(entry.StoredName)
	require.NoError(t, err)
	assert.Equal(t, sealedBefore, sealedAfter, "vault object must not change")
	assert.Len(t, e.Entries(), 1)
}

func TestOpen_FastHideUsesDisplayName(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := newEnv(t)
	viewer := mock.NewMockViewer(ctrl)
	e := env.engine(t, func(o *Options) { o.Viewer = viewer })
	ctx := context.Background()

	src := env.writeSource(t, "holiday.png", "png")
	entry, err := e.Hide(ctx, src, LevelFastHide)
	require.NoError(t, err)

	viewer.EXPECT().Open(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, path string) error {
			assert.Equal(t, "holiday.png", filepath.Base(path))
			return nil
		})

	staged, err := e.Open(ctx, entry.ID)
	require.NoError(t, err)
	data, err := os.ReadFile(staged)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	exists, err := env.dir.Exists(entry.StoredName)
	require.NoError(t, err)
	assert.True(t, exists, "fast-hide object stays in the vault")
}

func TestOpen_FastHideDirectory(t *testing.T) {
	env := newEnv(t)
	e := env.engine(t)
	ctx := context.Background()

	dir := filepath.Join(env.base, "album")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "day1"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "day1", "a.jpg"), []byte("a"), 0644))

	entry, err := e.Hide(ctx, dir, LevelFastHide)
	require.NoError(t, err)

	staged, err := e.Open(ctx, entry.ID)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(staged, "day1", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
}

func TestOpen_ViewerErrorStillStaged(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := newEnv(t)
	viewer := mock.NewMockViewer(ctrl)
	viewer.EXPECT().Open(gomock.Any(), gomock.Any()).Return(errors.New("no display"))
	e := env.engine(t, func(o *Options) { o.Viewer = viewer })

	entry, err := e.Hide(context.Background(), env.writeSource(t, "a.txt", "a"), LevelFastHide)
	require.NoError(t, err)

	staged, err := e.Open(context.Background(), entry.ID)
	assert.Error(t, err)
	assert.NotEmpty(t, staged)
}

func TestStaging_PurgedAfterGrace(t *testing.T) {
	env := newEnv(t)
	e := env.engine(t, func(o *Options) { o.StagingGrace = 20 * time.Millisecond })

	entry, err := e.Hide(context.Background(), env.writeSource(t, "a.txt", "a"), LevelFastHide)
	require.NoError(t, err)
	staged, err := e.Open(context.Background(), entry.ID)
	require.NoError(t, err)

	e.OnForegroundLost()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(staged)
		return os.IsNotExist(err)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStaging_ForegroundCancelsPurge(t *testing.T) {
	env := newEnv(t)
	e := env.engine(t, func(o *Options) { o.StagingGrace = 50 * time.Millisecond })

	entry, err := e.Hide(context.Background(), env.writeSource(t, "a.txt", "a"), LevelFastHide)
	require.NoError(t, err)
	staged, err := e.Open(context.Background(), entry.ID)
	require.NoError(t, err)

	e.OnForegroundLost()
	e.OnForegroundGained()
	time.Sleep(150 * time.Millisecond)

	_, err = os.Stat(staged)
	assert.NoError(t, err, "purge should have been cancelled")

	e.PurgeStaging()
	_, err = os.Stat(staged)
	assert.True(t, os.IsNotExist(err))
}

func TestClose_PurgesStaging(t *testing.T) {
	env := newEnv(t)
	e := env.engine(t)

	entry, err := e.Hide(context.Background(), env.writeSource(t, "a.txt", "a"), LevelAdvanced)
	require.NoError(t, err)
	staged, err := e.Open(context.Background(), entry.ID)
	require.NoError(t, err)

	require.NoError(t, e.Close())
	_, err = os.Stat(staged)
	assert.True(t, os.IsNotExist(err))
}
