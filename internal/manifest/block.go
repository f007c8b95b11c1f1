package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"strings"

	forgeerrors "github.com/assetforge/assetforge/internal/errors"
)

// Kind identifies which compiler family a block belongs to.
type Kind string

const (
	KindJS   Kind = "js"
	KindCSS  Kind = "css"
	KindLess Kind = "less"
	KindSass Kind = "sass"
)

// Valid reports whether k is a recognized compiler kind.
func (k Kind) Valid() bool {
	switch k {
	case KindJS, KindCSS, KindLess, KindSass:
		return true
	}
	return false
}

// OutputExt returns the file extension of the compiled artifact for this
// kind. LESS and SASS compile down to CSS.
func (k Kind) OutputExt() string {
	if k == KindJS {
		return ".js"
	}
	return ".css"
}

// Block is a named, ordered set of asset paths compiled to one output
// artifact.
type Block struct {
	Name     string   `json:"name"`
	NameHash string   `json:"name_hash,omitempty"`
	Kind     Kind     `json:"kind"`
	Paths    []string `json:"paths"`
}

// ComputeNameHash derives the block's stable identifier from its
// declaration: kind, name, and the ordered path list.
func (b *Block) ComputeNameHash() string {
	h := sha256.New()
	io.WriteString(h, string(b.Kind))
	io.WriteString(h, "\x00")
	io.WriteString(h, b.Name)
	for _, p := range b.Paths {
		io.WriteString(h, "\x00")
		io.WriteString(h, p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// String returns a short human-readable identity for log output.
func (b *Block) String() string {
	name := b.Name
	if name == "" {
		name = strings.Join(b.Paths, ",")
	}
	return string(b.Kind) + ":" + name
}

// LoadBlocks reads block declarations from a JSON file. Malformed input
// surfaces as a ParseError; blocks without an explicit
// name_hash get one derived from their declaration.
func LoadBlocks(path string) ([]Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, forgeerrors.NewParseError(path, "failed to read blocks file", err)
	}

	var blocks []Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, forgeerrors.NewParseError(path, "invalid blocks file", err)
	}

	for i := range blocks {
		b := &blocks[i]
		if !b.Kind.Valid() {
			return nil, forgeerrors.NewParseError(path, "unknown compiler kind "+string(b.Kind), nil)
		}
		if len(b.Paths) == 0 {
			return nil, forgeerrors.NewParseError(path, "block "+b.Name+" declares no assets", nil)
		}
		if b.NameHash == "" {
			b.NameHash = b.ComputeNameHash()
		}
	}
	return blocks, nil
}
