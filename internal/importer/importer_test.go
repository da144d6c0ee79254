package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"evalgo.org/assetd/internal/storage"
	"evalgo.org/assetd/internal/storage/storagetest"
	"evalgo.org/assetd/models"
)

func newTestImporter(t *testing.T) (*Importer, *storage.Storage) {
	t.Helper()
	st := storagetest.New(t)
	return New(st, zerolog.Nop(), nil), st
}

const bitlockerExport = `BitLocker Drive Encryption recovery key

To verify that this is the correct recovery key, compare the start of the following identifier with the identifier value displayed on your PC.

Identifier:

	4A1B2C3D-0000-1111-2222-333344445555

If the above identifier matches the one displayed by your PC, then use the following key to unlock your drive.

Recovery Key:

	123456-234567-345678-456789-567890-678901-789012-890123
`

func TestParseDriveLetter(t *testing.T) {
	tests := []struct {
		name  string
		drive string
		ok    bool
	}{
		{"C_recovery.txt", "C:", true},
		{"d_BitLocker Recovery Key.TXT", "D:", true},
		{"/tmp/uploads/E_x.txt", "E:", true},
		{"recovery.txt", "", false},
		{"CD_recovery.txt", "", false},
		{"1_recovery.txt", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drive, ok := ParseDriveLetter(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.drive, drive)
		})
	}
}

func TestParseRecoveryKey(t *testing.T) {
	key, ok := ParseRecoveryKey(bitlockerExport)
	require.True(t, ok)
	assert.Equal(t, "123456-234567-345678-456789-567890-678901-789012-890123", key)

	key, ok = ParseRecoveryKey("recovery key: 111111 - 222222\t-333333")
	require.True(t, ok)
	assert.Equal(t, "111111-222222-333333", key)

	_, ok = ParseRecoveryKey("Identifier: 4A1B2C3D")
	assert.False(t, ok)
	_, ok = ParseRecoveryKey("Recovery Key ID: 4A1B2C3D")
	assert.False(t, ok)
}

func TestImportAssetsCSV(t *testing.T) {
	im, st := newTestImporter(t)
	ctx := context.Background()

	csv := "code,name,start_date\nPC-1,Desk,not-a-date\nPC-2,Laptop,2024-02-01\n"
	n, err := im.ImportAssets(ctx, "assets.CSV", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, total, err := st.Assets.List(st.Session(ctx), storage.AssetQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	byCode := map[string]models.Asset{}
	for _, a := range list {
		byCode[*a.Code] = a
	}
	assert.Nil(t, byCode["PC1"].StartDate)
	require.NotNil(t, byCode["PC2"].StartDate)
	assert.Equal(t, models.StatusActive, byCode["PC2"].Status)

	// no pre-check: an existing code fails the whole batch
	_, err = im.ImportAssets(ctx, "again.csv", strings.NewReader("code\nPC3\npc 1\n"))
	assert.True(t, errdefs.IsConflict(err), "got %v", err)
	_, total, err = st.Assets.List(st.Session(ctx), storage.AssetQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestImportAssetsRejectsUnknownFormat(t *testing.T) {
	im, _ := newTestImporter(t)
	_, err := im.ImportAssets(context.Background(), "assets.pdf", strings.NewReader("code\nPC1\n"))
	assert.True(t, errdefs.IsInvalidArgument(err))

	n, err := im.ImportAssets(context.Background(), "empty.csv", strings.NewReader("code,name\n"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestImportBitLocker(t *testing.T) {
	im, st := newTestImporter(t)
	ctx := context.Background()

	a := &models.Asset{Code: models.Ptr("PC1"), Status: models.StatusActive}
	require.NoError(t, st.Assets.Create(st.Session(ctx), a))

	key, err := im.ImportBitLocker(ctx, a.ID, "C_BitLocker.txt", []byte(bitlockerExport))
	require.NoError(t, err)
	assert.Equal(t, "C:", key.Drive)
	assert.Equal(t, a.ID, key.AssetID)

	// UTF-16 export for the same drive overwrites the key
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String("Recovery Key:\r\n\r\n999999-888888\r\n")
	require.NoError(t, err)
	again, err := im.ImportBitLocker(ctx, a.ID, "c_new.txt", []byte(utf16))
	require.NoError(t, err)
	assert.Equal(t, key.ID, again.ID)
	assert.Equal(t, "999999-888888", again.Key)

	keys, err := st.RecoveryKeys.ListByAsset(st.Session(ctx), a.ID)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "999999-888888", keys[0].Key)
}

func TestImportBitLockerErrors(t *testing.T) {
	im, st := newTestImporter(t)
	ctx := context.Background()

	a := &models.Asset{Status: models.StatusActive}
	require.NoError(t, st.Assets.Create(st.Session(ctx), a))

	_, err := im.ImportBitLocker(ctx, a.ID, "recovery.txt", []byte(bitlockerExport))
	assert.True(t, errdefs.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "drive letter")

	_, err = im.ImportBitLocker(ctx, a.ID, "C_recovery.txt", []byte("nothing useful"))
	assert.True(t, errdefs.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "Recovery Key:")

	_, err = im.ImportBitLocker(ctx, 999, "C_recovery.txt", []byte(bitlockerExport))
	assert.True(t, errdefs.IsNotFound(err))

	keys, err := st.RecoveryKeys.ListByAsset(st.Session(ctx), a.ID)
	require.NoError(t, err)
	assert.Empty(t, keys)
}
