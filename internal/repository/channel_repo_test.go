package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ottkit/tunerd/internal/models"
	"github.com/ottkit/tunerd/internal/psip"
	"github.com/ottkit/tunerd/internal/tuner"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ChannelRow{}))
	return db
}

func testChannel(program int, name string) *tuner.Channel {
	c := tuner.NewFromSDT(&psip.SDTItem{
		ServiceName: name,
		ServiceID:   program,
		ServiceType: int(psip.ServiceTypeDigitalTelevision),
	}, []psip.PMTItem{
		{StreamType: int(psip.VideoStreamTypeH264), ElementaryPID: 0x100},
		{StreamType: int(psip.AudioStreamTypeAAC), ElementaryPID: 0x101},
	})
	c.SetFrequency(177000000)
	return c
}

func TestChannelRepoSaveAssignsID(t *testing.T) {
	repo := NewChannelRepository(setupTestDB(t), nil)
	ctx := context.Background()

	c := testChannel(1, "One")
	require.Equal(t, tuner.InvalidChannelID, c.ChannelID())

	require.NoError(t, repo.Save(ctx, c))
	assert.NotEqual(t, tuner.InvalidChannelID, c.ChannelID())

	got, err := repo.GetByID(ctx, c.ChannelID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "One", got.Name())
	assert.Equal(t, c.ChannelID(), got.ChannelID())
	assert.True(t, c.Equal(got))
}

func TestChannelRepoSaveUpdatesInPlace(t *testing.T) {
	repo := NewChannelRepository(setupTestDB(t), nil)
	ctx := context.Background()

	c := testChannel(1, "One")
	require.NoError(t, repo.Save(ctx, c))
	id := c.ChannelID()

	c.SetShortName("Renamed")
	require.NoError(t, repo.Save(ctx, c))
	assert.Equal(t, id, c.ChannelID())

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Renamed", got.Name())

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestChannelRepoGetByIDMissing(t *testing.T) {
	repo := NewChannelRepository(setupTestDB(t), nil)

	got, err := repo.GetByID(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestChannelRepoGetAll(t *testing.T) {
	repo := NewChannelRepository(setupTestDB(t), nil)
	ctx := context.Background()

	for i, name := range []string{"One", "Two", "Three"} {
		require.NoError(t, repo.Save(ctx, testChannel(i+1, name)))
	}

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "One", all[0].Name())
	assert.Equal(t, "Three", all[2].Name())
}

func TestChannelRepoGetAllSkipsUnparseableRows(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChannelRepository(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, testChannel(1, "Good")))
	require.NoError(t, db.Create(&models.ChannelRow{Data: []byte{0xff, 0xff, 0xff}}).Error)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Good", all[0].Name())
}

func TestChannelRepoSetLocked(t *testing.T) {
	repo := NewChannelRepository(setupTestDB(t), nil)
	ctx := context.Background()

	c := testChannel(1, "One")
	require.NoError(t, repo.Save(ctx, c))
	require.False(t, c.IsLocked())

	require.NoError(t, repo.SetLocked(ctx, c.ChannelID(), true))

	got, err := repo.GetByID(ctx, c.ChannelID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsLocked())

	// The lock column drives the decoded state even though the stored blob
	// still carries the unlocked value.
	require.NoError(t, repo.SetLocked(ctx, c.ChannelID(), false))
	got, err = repo.GetByID(ctx, c.ChannelID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.IsLocked())
}

func TestChannelRepoSetLockedMissing(t *testing.T) {
	repo := NewChannelRepository(setupTestDB(t), nil)

	err := repo.SetLocked(context.Background(), 404, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no channel with id 404")
}

func TestChannelRepoDelete(t *testing.T) {
	repo := NewChannelRepository(setupTestDB(t), nil)
	ctx := context.Background()

	c := testChannel(1, "One")
	require.NoError(t, repo.Save(ctx, c))
	require.NoError(t, repo.Delete(ctx, c.ChannelID()))

	got, err := repo.GetByID(ctx, c.ChannelID())
	require.NoError(t, err)
	assert.Nil(t, got)
}
