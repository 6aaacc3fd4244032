package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/scrypt"

	"github.com/AlexZinkM/ergo-wallet/internal/model"
	"github.com/AlexZinkM/ergo-wallet/internal/qr"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Create encrypts secret and writes a new keystore for address.
// password must be []byte for security (caller should zero it after use)
func (k *Keystore) Create(network, address string, secret *model.WalletSecret, password []byte) error {
	if err := checkExtension(k.path); err != nil {
		return err
	}
	if err := checkWritable(k.path); err != nil {
		return err
	}
	if len(password) == 0 {
		return fmt.Errorf("password cannot be empty")
	}

	qrCode, err := qr.Base64PNG(address, qr.DefaultSize)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	key, err := scrypt.Key(password, salt, k.params.N, k.params.R, k.params.P, scryptKeyLen)
	if err != nil {
		return fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	aesGCM, err := newGCM(key)
	if err != nil {
		return err
	}

	plaintext, err := json.Marshal(secret)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet secret: %w", err)
	}
	defer clear(plaintext)

	ciphertext := aesGCM.Seal(nil, nonce, plaintext, nil)

	file := model.KeystoreFile{
		Network:    network,
		Address:    address,
		QR:         qrCode,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(ciphertext),
	}
	if k.params.N != DefaultParams.N {
		file.ScryptN = k.params.N
	}

	fileData, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal keystore file: %w", err)
	}

	// BOM for proper display in Windows editors
	out := append(append([]byte{}, utf8BOM...), fileData...)
	if err := os.WriteFile(k.path, out, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
