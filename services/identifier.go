package services

import (
	"crypto/sha256"
	"math/big"
	"math/rand"
	"sync"
	"time"
)

// IDGenerator liefert Identifier für Tabellen, deren Schema keine IDs vergibt.
// Als Interface ausgelegt, damit Tests deterministische Sequenzen injizieren
// können; die Produktions-Implementierung würfelt 63-Bit-Werte.
type IDGenerator interface {
	NextID() int64
}

type randomIDGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomIDGenerator erstellt den produktiven Zufalls-Generator.
// Kryptographische Qualität ist hier nicht gefordert.
func NewRandomIDGenerator() IDGenerator {
	return &randomIDGenerator{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (g *randomIDGenerator) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Int63()
}

var bigintModulus = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 63), big.NewInt(1))

// StringToBigint hasht ein Text-Label deterministisch in den positiven
// BIGINT-Bereich: SHA-256 mod (2^63 - 1).
//
// WORKAROUND: Das vorgegebene Schema deklariert die relationship-Spalte als
// BIGINT, obwohl die Daten Text sind ("self"). Der Hash erfüllt das Schema;
// Kollisionen gelten als identisch und werden nicht erkannt. Bekannter
// Schema-Mismatch, keine Best Practice.
func StringToBigint(text string) int64 {
	sum := sha256.Sum256([]byte(text))
	n := new(big.Int).SetBytes(sum[:])
	return n.Mod(n, bigintModulus).Int64()
}
