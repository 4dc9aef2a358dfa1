package model

// GatewayContext is the administrative record of one local logical chain:
// who administers it and whether the system is live. Created once per chain
// id, mutated only through admin operations, never deleted.
type GatewayContext struct {
	ChainID       ChainID   `json:"chain_id"`
	Authority     SignerKey `json:"authority"`
	SystemEnabled bool      `json:"system_enabled"`
}

// IsAuthority reports whether caller is the context's authority.
func (g *GatewayContext) IsAuthority(caller SignerKey) bool {
	return len(g.Authority) > 0 && g.Authority.Equal(caller)
}

// Clone returns a deep copy of the context.
func (g *GatewayContext) Clone() *GatewayContext {
	out := *g
	out.Authority = append(SignerKey(nil), g.Authority...)
	return &out
}
