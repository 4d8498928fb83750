package valueobjects

import "strings"

// NodeKind is the type tag of a node (e.g. "web3-defi"). It selects the
// node's icon, color and configuration schema and never changes after
// the node is created.
type NodeKind string

const (
	KindToken    NodeKind = "web3-token"
	KindDefi     NodeKind = "web3-defi"
	KindWallet   NodeKind = "web3-wallet"
	KindContract NodeKind = "web3-contract"
	KindSocial   NodeKind = "web2-social"
	KindAPI      NodeKind = "web2-api"
	KindTime     NodeKind = "web2-time"
)

// String returns the string representation
func (k NodeKind) String() string {
	return string(k)
}

// IsZero reports whether the kind is empty
func (k NodeKind) IsZero() bool {
	return strings.TrimSpace(string(k)) == ""
}

// Family returns the prefix before the first dash ("web3", "web2", ...)
func (k NodeKind) Family() string {
	s := string(k)
	if i := strings.IndexByte(s, '-'); i > 0 {
		return s[:i]
	}
	return s
}
