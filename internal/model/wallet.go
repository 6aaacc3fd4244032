package model

// KeystoreFile represents the on-disk .cwt keystore structure
type KeystoreFile struct {
	Network    string `json:"network"`
	Address    string `json:"address"`
	QR         string `json:"QR"`
	ScryptN    int    `json:"scryptN,omitempty"` // 0 means the default cost
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`
}

// WalletSecret represents the decrypted signing material of a keystore.
// It is handed to the external signer and must be wiped with Wipe after use.
type WalletSecret struct {
	Seed      []byte `json:"seed"` // stored as base64 in JSON
	CreatedAt string `json:"createdAt"`
}

// Wipe zeroes the seed bytes
func (s *WalletSecret) Wipe() {
	if s == nil {
		return
	}
	clear(s.Seed)
}
