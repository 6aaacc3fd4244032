package crypto

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/ergo-wallet/internal/model"
)

const testAddress = "9gmNsqrqdSppLUBqg2UzREmmivgqh1r3jmNcLAc53hk3YCvAGWE"

var testParams = Params{N: 1 << 10, R: 8, P: 1}

func newTestKeystore(t *testing.T) *Keystore {
	t.Helper()
	return NewKeystore(filepath.Join(t.TempDir(), "wallet.cwt")).WithParams(testParams)
}

func TestCreateUnlock(t *testing.T) {
	ks := newTestKeystore(t)
	secret := &model.WalletSecret{Seed: []byte("abandon ability able"), CreatedAt: "2026-01-02T03:04:05Z"}

	require.NoError(t, ks.Create("mainnet", testAddress, secret, []byte("pass")))

	raw, err := os.ReadFile(ks.Path())
	require.NoError(t, err)
	assert.Equal(t, utf8BOM, raw[:3])

	file, err := ks.ReadFile()
	require.NoError(t, err)
	assert.Equal(t, "mainnet", file.Network)
	assert.Equal(t, testParams.N, file.ScryptN)
	assert.NotEmpty(t, file.QR)

	addr, err := ks.ReadAddress()
	require.NoError(t, err)
	assert.Equal(t, testAddress, addr)

	got, err := NewKeystore(ks.Path()).Unlock([]byte("pass"))
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func TestUnlockWrongPassword(t *testing.T) {
	ks := newTestKeystore(t)
	require.NoError(t, ks.Create("mainnet", testAddress, &model.WalletSecret{Seed: []byte{1}}, []byte("pass")))

	_, err := ks.Unlock([]byte("other"))
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestCreateRefusesExistingFile(t *testing.T) {
	ks := newTestKeystore(t)
	require.NoError(t, ks.Create("mainnet", testAddress, &model.WalletSecret{Seed: []byte{1}}, []byte("pass")))

	err := ks.Create("mainnet", testAddress, &model.WalletSecret{Seed: []byte{2}}, []byte("pass"))
	assert.True(t, IsFileExistsError(err))
}

func TestCreateChecksExtension(t *testing.T) {
	ks := NewKeystore(filepath.Join(t.TempDir(), "wallet.json")).WithParams(testParams)
	assert.Error(t, ks.Create("mainnet", testAddress, &model.WalletSecret{}, []byte("pass")))
}

func TestReadMissingFile(t *testing.T) {
	_, err := newTestKeystore(t).ReadAddress()
	assert.EqualError(t, err, "file does not exist")
}
