package crypto

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/scrypt"

	"github.com/AlexZinkM/ergo-wallet/internal/model"
)

// ReadFile reads the keystore structure without decrypting it
func (k *Keystore) ReadFile() (*model.KeystoreFile, error) {
	fileInfo, err := os.Stat(k.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("file does not exist")
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if fileInfo.Size() == 0 {
		return nil, errors.New("file is empty")
	}

	fileData, err := os.ReadFile(k.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	fileData = bytes.TrimPrefix(fileData, utf8BOM)

	var file model.KeystoreFile
	if err := json.Unmarshal(fileData, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keystore file: %w", err)
	}
	return &file, nil
}

// ReadAddress reads only the address (without decryption)
func (k *Keystore) ReadAddress() (string, error) {
	file, err := k.ReadFile()
	if err != nil {
		return "", err
	}
	return file.Address, nil
}

// Unlock decrypts the wallet secret. The caller owns the result and must Wipe it.
// password must be []byte for security (caller should zero it after use)
func (k *Keystore) Unlock(password []byte) (*model.WalletSecret, error) {
	file, err := k.ReadFile()
	if err != nil {
		return nil, err
	}

	salt, err := base64.StdEncoding.DecodeString(file.Salt)
	if err != nil {
		return nil, fmt.Errorf("failed to decode salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(file.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to decode nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(file.CipherText)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	params := DefaultParams
	if file.ScryptN != 0 {
		params.N = file.ScryptN
	}
	key, err := scrypt.Key(password, salt, params.N, params.R, params.P, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalidPassword
	}
	defer clear(plaintext) // wipe decrypted bytes from memory

	var secret model.WalletSecret
	if err := json.Unmarshal(plaintext, &secret); err != nil {
		return nil, fmt.Errorf("failed to unmarshal wallet secret: %w", err)
	}
	return &secret, nil
}
