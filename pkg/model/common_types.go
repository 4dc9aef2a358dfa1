// Package model defines the core data types of the message gateway.
package model

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/mr-tron/base58"
)

// ChainID identifies a logical chain in the Via network.
type ChainID uint64

func (c ChainID) String() string {
	return fmt.Sprintf("ChainID(%d)", uint64(c))
}

// MessageID is the 128-bit message identifier assigned on the source chain,
// stored big-endian.
type MessageID [16]byte

// NewMessageIDFromUint64 creates a MessageID from a uint64 value.
func NewMessageIDFromUint64(v uint64) MessageID {
	var id MessageID
	binary.BigEndian.PutUint64(id[8:], v)
	return id
}

// NewMessageIDFromBig creates a MessageID from a non-negative big integer.
func NewMessageIDFromBig(v *big.Int) (MessageID, error) {
	var id MessageID
	if v == nil || v.Sign() < 0 {
		return id, fmt.Errorf("message id must be a non-negative integer")
	}
	if v.BitLen() > 128 {
		return id, fmt.Errorf("message id exceeds 128 bits")
	}
	v.FillBytes(id[:])
	return id, nil
}

// Big returns the message id as a big integer.
func (m MessageID) Big() *big.Int {
	return new(big.Int).SetBytes(m[:])
}

// LittleEndianBytes returns the 16-byte little-endian representation used by
// the canonical encoding.
func (m MessageID) LittleEndianBytes() []byte {
	out := make([]byte, 16)
	for i := range m {
		out[i] = m[15-i]
	}
	return out
}

// Low64 returns the low 64 bits of the id. Metric gauges use it; anything
// that needs the full value works with the id itself.
func (m MessageID) Low64() uint64 {
	return binary.BigEndian.Uint64(m[8:])
}

// Cmp compares two message ids as unsigned 128-bit integers.
func (m MessageID) Cmp(other MessageID) int {
	return bytes.Compare(m[:], other[:])
}

func (m MessageID) String() string {
	return m.Big().String()
}

// MarshalJSON renders the message id as a decimal string.
func (m MessageID) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", m.String())), nil
}

// UnmarshalJSON parses a decimal string into a MessageID.
func (m *MessageID) UnmarshalJSON(data []byte) error {
	v := strings.Trim(string(data), `"`)
	n, ok := new(big.Int).SetString(v, 10)
	if !ok {
		return fmt.Errorf("invalid message id: %s", v)
	}
	id, err := NewMessageIDFromBig(n)
	if err != nil {
		return err
	}
	*m = id
	return nil
}

// SignerKey is a chain-native signer identity: a 32-byte ed25519 public key
// or a 20-byte EVM address recovered from an ECDSA signature.
type SignerKey []byte

// NewSignerKeyFromString parses a signer key from its string form. Base58 is
// tried first (the native rendering for ed25519 keys), then 0x-hex.
func NewSignerKeyFromString(s string) (SignerKey, error) {
	if s == "" {
		return nil, fmt.Errorf("empty signer key")
	}
	if strings.HasPrefix(s, "0x") {
		raw, err := hex.DecodeString(s[2:])
		if err != nil {
			return nil, fmt.Errorf("invalid hex signer key: %w", err)
		}
		return SignerKey(raw), nil
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base58 signer key: %w", err)
	}
	return SignerKey(raw), nil
}

// Equal reports whether two signer keys hold the same bytes.
func (k SignerKey) Equal(other SignerKey) bool {
	return bytes.Equal(k, other)
}

// String renders 32-byte keys in base58 (ed25519 convention) and everything
// else as 0x-hex.
func (k SignerKey) String() string {
	if len(k) == 0 {
		return ""
	}
	if len(k) == 32 {
		return base58.Encode(k)
	}
	return "0x" + hex.EncodeToString(k)
}

// MarshalJSON renders the signer key via String.
func (k SignerKey) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", k.String())), nil
}

// UnmarshalJSON parses the string form of a signer key.
func (k *SignerKey) UnmarshalJSON(data []byte) error {
	v := strings.Trim(string(data), `"`)
	if v == "" {
		*k = nil
		return nil
	}
	parsed, err := NewSignerKeyFromString(v)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ByteSlice is a wrapper around []byte that marshals to/from 0x-hex instead
// of base64.
type ByteSlice []byte

// String returns the hex representation with 0x prefix.
func (h ByteSlice) String() string {
	if len(h) == 0 {
		return "0x"
	}
	return "0x" + hex.EncodeToString(h)
}

// MarshalJSON returns the hex representation of the bytes.
func (h ByteSlice) MarshalJSON() ([]byte, error) {
	if h == nil {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", h.String())), nil
}

// UnmarshalJSON decodes a hex string into a ByteSlice.
func (h *ByteSlice) UnmarshalJSON(data []byte) error {
	v := string(data)
	if v == "null" {
		*h = nil
		return nil
	}
	if len(v) < 2 {
		return fmt.Errorf("invalid ByteSlice: %s", v)
	}
	v = strings.Trim(v, `"`)
	v = strings.TrimPrefix(v, "0x")
	if v == "" {
		*h = ByteSlice{}
		return nil
	}
	raw, err := hex.DecodeString(v)
	if err != nil {
		return fmt.Errorf("failed to decode hex: %w", err)
	}
	*h = ByteSlice(raw)
	return nil
}

// Bytes32 is a fixed 32-byte value, hex-encoded in JSON.
type Bytes32 [32]byte

func (b Bytes32) String() string {
	return "0x" + hex.EncodeToString(b[:])
}

// MarshalJSON returns the hex representation of the value.
func (b Bytes32) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", b.String())), nil
}

// UnmarshalJSON decodes a 32-byte hex string.
func (b *Bytes32) UnmarshalJSON(data []byte) error {
	v := strings.Trim(string(data), `"`)
	v = strings.TrimPrefix(v, "0x")
	raw, err := hex.DecodeString(v)
	if err != nil {
		return fmt.Errorf("failed to decode hex: %w", err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("expected 32 bytes, got %d", len(raw))
	}
	copy(b[:], raw)
	return nil
}
