// Package token issues opaque bearer tokens.
package token

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"github.com/burhani-guards/guards-api/internal/domain"
	clockport "github.com/burhani-guards/guards-api/internal/ports/out/clock"
)

// Generator derives a token as the hex SHA-256 of subject, role, a random UUID and the issue time.
// The token carries no readable claims; only the token store can resolve it.
type Generator struct {
	clk     clockport.Clock
	newUUID func() string
}

func NewGenerator(clk clockport.Clock) *Generator {
	return &Generator{clk: clk, newUUID: uuid.NewString}
}

func (g *Generator) Issue(subject string, role domain.Role) (string, error) {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%s:%s:%d", subject, role.Slug(), g.newUUID(), g.clk.Now().Unix())))
	return hex.EncodeToString(sum[:]), nil
}
