// Package crypto stores the wallet secret in a password-encrypted .cwt keystore.
package crypto

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrInvalidPassword is returned when the keystore cannot be opened with the given password
var ErrInvalidPassword = errors.New("invalid password")

// Params are the scrypt cost parameters
type Params struct {
	N int
	R int
	P int
}

// DefaultParams are used for new keystores.
//
// N=2^18 (~256MB RAM, 0.5-2s) keeps brute force expensive while still fitting
// the per-app memory limits of mobile devices. N=2^20 fails there.
var DefaultParams = Params{N: 1 << 18, R: 8, P: 1}

const (
	scryptKeyLen = 32
	saltLen      = 32
	nonceLen     = 12
	keystoreExt  = ".cwt"
)

// FileExistsError is an error when the keystore file already exists and is not empty
type FileExistsError struct {
	Path string
}

func (e *FileExistsError) Error() string {
	return fmt.Sprintf("file is not empty: %s", e.Path)
}

// IsFileExistsError checks if error is FileExistsError
func IsFileExistsError(err error) bool {
	var target *FileExistsError
	return errors.As(err, &target)
}

// Keystore is a .cwt file holding one encrypted WalletSecret
type Keystore struct {
	path   string
	params Params
}

// NewKeystore returns the keystore at path using DefaultParams for new files
func NewKeystore(path string) *Keystore {
	return &Keystore{path: path, params: DefaultParams}
}

// WithParams returns a copy using p for new files
func (k *Keystore) WithParams(p Params) *Keystore {
	return &Keystore{path: k.path, params: p}
}

// Path returns the keystore file path
func (k *Keystore) Path() string {
	return k.path
}

func checkExtension(path string) error {
	if filepath.Ext(path) != keystoreExt {
		return errors.New("file must have .cwt extension")
	}
	return nil
}

// checkWritable fails when path exists with content
func checkWritable(path string) error {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if fileInfo.Size() > 0 {
		return &FileExistsError{Path: path}
	}
	return nil
}
