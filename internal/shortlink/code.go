package shortlink

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

const (
	customCodeMinLen = 4
	customCodeMaxLen = 32
)

const base62Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// reservedCodes are path segments claimed by the HTTP API itself.
var reservedCodes = map[string]struct{}{
	"shorturls": {},
	"healthz":   {},
}

// CodeGenerator produces collision-free short codes from snowflake IDs.
type CodeGenerator struct {
	node *snowflake.Node
}

// NewCodeGenerator constructs a generator with a random node ID so multiple
// processes sharing a database do not mint overlapping codes.
func NewCodeGenerator() (*CodeGenerator, error) {
	nodeID, err := randomNodeID()
	if err != nil {
		return nil, fmt.Errorf("derive node id: %w", err)
	}

	snowflake.Epoch = 1767225600000 // Thu Jan 01 2026 00:00:00 UTC

	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("init snowflake node: %w", err)
	}
	return &CodeGenerator{node: node}, nil
}

// Next returns a new short code.
func (g *CodeGenerator) Next() string {
	return encodeBase62(g.node.Generate().Int64())
}

func randomNodeID() (int64, error) {
	var nodeID int64
	if err := binary.Read(rand.Reader, binary.BigEndian, &nodeID); err != nil {
		return 0, err
	}
	return nodeID & (1<<10 - 1), nil
}

func encodeBase62(n int64) string {
	if n == 0 {
		return "0"
	}
	buf := make([]byte, 0, 11)
	for n > 0 {
		buf = append(buf, base62Alphabet[n%62])
		n /= 62
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// ValidateCustomCode checks a caller-supplied code against the format rules:
// 4 to 32 characters drawn from letters, digits, underscore, and hyphen.
func ValidateCustomCode(code string) error {
	if len(code) < customCodeMinLen || len(code) > customCodeMaxLen {
		return fmt.Errorf("%w: length must be %d-%d characters", ErrInvalidCode, customCodeMinLen, customCodeMaxLen)
	}
	for _, r := range code {
		if !codeRune(r) {
			return fmt.Errorf("%w: character %q not allowed", ErrInvalidCode, r)
		}
	}
	if _, reserved := reservedCodes[code]; reserved {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidCode, code)
	}
	return nil
}

// CodeLooksValid reports whether a path segment could be a short code at all.
// Used to answer junk lookups without touching storage.
func CodeLooksValid(code string) bool {
	if code == "" || len(code) > customCodeMaxLen {
		return false
	}
	for _, r := range code {
		if !codeRune(r) {
			return false
		}
	}
	return true
}

func codeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-':
		return true
	}
	return false
}
