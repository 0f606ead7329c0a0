package journal

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// Tag is the constant seed mixed into every journal key.
const Tag = "journal"

// Owner identifies the only caller allowed to mutate a journal.
type Owner = uuid.UUID

// Key locates one journal in a store.
type Key [sha256.Size]byte

// Derive maps an owner to the key of their journal.
// Owners are fixed width, so tag||owner never collides across owners.
func Derive(owner Owner) Key {
	h := sha256.New()
	h.Write([]byte(Tag))
	h.Write(owner[:])

	var k Key
	copy(k[:], h.Sum(nil))
	return k
}

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

func (k Key) IsZero() bool {
	return k == Key{}
}

// ParseKey parses the hex form produced by Key.String.
func ParseKey(s string) (Key, error) {
	var k Key
	if len(s) != hex.EncodedLen(len(k)) {
		return Key{}, ErrInvalidKey
	}
	if _, err := hex.Decode(k[:], []byte(s)); err != nil {
		return Key{}, ErrInvalidKey
	}
	return k, nil
}
