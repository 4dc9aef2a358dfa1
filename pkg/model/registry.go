package model

import (
	"fmt"
	"strings"
)

// MaxSignersPerRegistry caps the signer set of one registry.
const MaxSignersPerRegistry = 10

// SignerLayer is one of the three independent authority layers. The set is
// fixed by protocol design; never extend it through an open interface.
type SignerLayer uint8

const (
	// LayerVIA is the Via Labs core signer layer.
	LayerVIA SignerLayer = iota
	// LayerChain is the chain-validator layer.
	LayerChain
	// LayerProject is the application-level signer layer.
	LayerProject
)

// Layers lists all layers in discriminant order.
func Layers() []SignerLayer {
	return []SignerLayer{LayerVIA, LayerChain, LayerProject}
}

func (l SignerLayer) String() string {
	switch l {
	case LayerVIA:
		return "VIA"
	case LayerChain:
		return "Chain"
	case LayerProject:
		return "Project"
	default:
		return fmt.Sprintf("SignerLayer(%d)", uint8(l))
	}
}

// ParseSignerLayer parses the string form of a layer, case-insensitively.
func ParseSignerLayer(s string) (SignerLayer, error) {
	switch strings.ToLower(s) {
	case "via":
		return LayerVIA, nil
	case "chain":
		return LayerChain, nil
	case "project":
		return LayerProject, nil
	default:
		return 0, fmt.Errorf("invalid signer layer: %q", s)
	}
}

// MarshalJSON renders the layer name.
func (l SignerLayer) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", l.String())), nil
}

// UnmarshalJSON parses a layer name.
func (l *SignerLayer) UnmarshalJSON(data []byte) error {
	parsed, err := ParseSignerLayer(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// RegistryKey identifies one signer registry.
type RegistryKey struct {
	Layer   SignerLayer `json:"layer"`
	ChainID ChainID     `json:"chain_id"`
}

func (k RegistryKey) String() string {
	return fmt.Sprintf("%s/%d", k.Layer, uint64(k.ChainID))
}

// SignerRegistry holds the authorized signer set of one layer on one chain.
type SignerRegistry struct {
	Layer              SignerLayer `json:"layer"`
	ChainID            ChainID     `json:"chain_id"`
	Authority          SignerKey   `json:"authority"`
	Signers            []SignerKey `json:"signers"`
	RequiredSignatures uint8       `json:"required_signatures"`
	Enabled            bool        `json:"enabled"`
}

// Key returns the registry's identifying key.
func (r *SignerRegistry) Key() RegistryKey {
	return RegistryKey{Layer: r.Layer, ChainID: r.ChainID}
}

// IsSigner reports whether signer is an authorized member of an enabled
// registry. A nil registry has no members.
func (r *SignerRegistry) IsSigner(signer SignerKey) bool {
	if r == nil || !r.Enabled {
		return false
	}
	for _, s := range r.Signers {
		if s.Equal(signer) {
			return true
		}
	}
	return false
}

// IsMember reports signer-set membership regardless of the enabled flag.
// Admin mutations use it; signature validation uses IsSigner.
func (r *SignerRegistry) IsMember(signer SignerKey) bool {
	if r == nil {
		return false
	}
	for _, s := range r.Signers {
		if s.Equal(signer) {
			return true
		}
	}
	return false
}

// ValidateThreshold checks that the required-signature count stays within
// [1, len(signers)].
func (r *SignerRegistry) ValidateThreshold() error {
	if r.RequiredSignatures == 0 {
		return ErrInvalidThreshold
	}
	if int(r.RequiredSignatures) > len(r.Signers) {
		return ErrThresholdTooHigh
	}
	return nil
}

// ValidateSignerSet checks the signer list itself: non-empty, within the
// registry cap, and free of duplicates.
func ValidateSignerSet(signers []SignerKey) error {
	if len(signers) == 0 {
		return ErrTooFewSignatures
	}
	if len(signers) > MaxSignersPerRegistry {
		return ErrTooManySignatures
	}
	for i, a := range signers {
		for _, b := range signers[i+1:] {
			if a.Equal(b) {
				return ErrDuplicateSigner
			}
		}
	}
	return nil
}

// Clone returns a deep copy, so a stored registry is never aliased by
// callers mutating their own slices.
func (r *SignerRegistry) Clone() *SignerRegistry {
	out := *r
	out.Authority = append(SignerKey(nil), r.Authority...)
	out.Signers = make([]SignerKey, len(r.Signers))
	for i, s := range r.Signers {
		out.Signers[i] = append(SignerKey(nil), s...)
	}
	return &out
}
