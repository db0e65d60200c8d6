// Package fieldcrypt encrypts individual record fields at rest.
//
// Ciphertext is stored as an envelope that names the key it was sealed
// with, so new keys can be introduced without rewriting stored payloads.
package fieldcrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// KeySize is the required key length (AES-256).
const KeySize = 32

var (
	// ErrUnknownKey means the envelope references a key id the ring
	// does not hold.
	ErrUnknownKey = errors.New("fieldcrypt: unknown key id")

	// ErrCorrupt means the envelope failed authentication or decoding.
	ErrCorrupt = errors.New("fieldcrypt: payload corrupt")
)

// Envelope is the stored shape of an encrypted field.
type Envelope struct {
	KeyID      string `json:"key_id"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

// Keyring seals with one active key and opens with any key it holds.
type Keyring struct {
	activeID string
	keys     map[string]cipher.AEAD
}

// NewKeyring builds a ring from hex-encoded 32-byte keys. activeID must
// name one of the provided keys.
func NewKeyring(activeID string, hexKeys map[string]string) (*Keyring, error) {
	if len(hexKeys) == 0 {
		return nil, errors.New("fieldcrypt: no keys configured")
	}
	keys := make(map[string]cipher.AEAD, len(hexKeys))
	for id, hk := range hexKeys {
		raw, err := hex.DecodeString(hk)
		if err != nil {
			return nil, fmt.Errorf("fieldcrypt: key %q: %w", id, err)
		}
		if len(raw) != KeySize {
			return nil, fmt.Errorf("fieldcrypt: key %q: got %d bytes, want %d", id, len(raw), KeySize)
		}
		block, err := aes.NewCipher(raw)
		if err != nil {
			return nil, fmt.Errorf("fieldcrypt: key %q: %w", id, err)
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("fieldcrypt: key %q: %w", id, err)
		}
		keys[id] = aead
	}
	if _, ok := keys[activeID]; !ok {
		return nil, fmt.Errorf("fieldcrypt: active key %q not in ring", activeID)
	}
	return &Keyring{activeID: activeID, keys: keys}, nil
}

// ActiveKeyID returns the id new envelopes will be sealed with.
func (k *Keyring) ActiveKeyID() string {
	return k.activeID
}

// Encrypt seals plaintext with the active key and a random nonce.
func (k *Keyring) Encrypt(plaintext string) (Envelope, error) {
	aead := k.keys[k.activeID]

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return Envelope{}, fmt.Errorf("fieldcrypt: nonce: %w", err)
	}

	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)
	return Envelope{
		KeyID:      k.activeID,
		Nonce:      hex.EncodeToString(nonce),
		Ciphertext: hex.EncodeToString(sealed),
	}, nil
}

// Decrypt opens an envelope with the key it names.
func (k *Keyring) Decrypt(env Envelope) (string, error) {
	aead, ok := k.keys[env.KeyID]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, env.KeyID)
	}

	nonce, err := hex.DecodeString(env.Nonce)
	if err != nil || len(nonce) != aead.NonceSize() {
		return "", ErrCorrupt
	}
	sealed, err := hex.DecodeString(env.Ciphertext)
	if err != nil {
		return "", ErrCorrupt
	}

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrCorrupt
	}
	return string(plaintext), nil
}
