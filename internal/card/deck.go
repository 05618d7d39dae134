package card

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Deck is an ordered sequence of unique cards. Cards are drawn from the
// tail, matching spec.md §3's "cards are drawn from the tail" invariant.
// A Deck must not be reseeded mid-hand: once NewShuffled returns, all
// subsequent Draw/Burn calls only ever remove cards, never add or reorder.
type Deck struct {
	cards []Card
}

// source abstracts the randomness behind shuffling so tests can substitute
// a deterministic source while production always uses crypto/rand.
type source interface {
	// Intn returns a uniform random integer in [0, n).
	Intn(n int) int
}

type cryptoSource struct{}

func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand.Reader failing is a fatal environment problem; the
		// deck has no safe fallback that preserves the "cryptographically
		// strong" requirement, so surface it loudly rather than silently
		// degrade to a weak source.
		panic(fmt.Sprintf("card: crypto/rand failure: %v", err))
	}
	return int(v.Int64())
}

// NewShuffled returns a full 52-card deck shuffled via Fisher-Yates seeded
// from a cryptographically strong random source, per spec.md §4.1.
func NewShuffled() *Deck {
	return newShuffledFrom(cryptoSource{})
}

// NewShuffledFromSeed returns a deterministically shuffled deck for tests
// that need reproducible deals. Never used by production code paths.
func NewShuffledFromSeed(seed int64) *Deck {
	return newShuffledFrom(newLCG(seed))
}

func newShuffledFrom(src source) *Deck {
	d := &Deck{cards: make([]Card, 0, 52)}
	for _, s := range AllSuits {
		for _, r := range AllRanks {
			d.cards = append(d.cards, Card{Suit: s, Rank: r})
		}
	}
	d.shuffle(src)
	return d
}

func (d *Deck) shuffle(src source) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the card at the tail of the deck. ok is false
// if the deck is empty.
func (d *Deck) Draw() (card Card, ok bool) {
	n := len(d.cards)
	if n == 0 {
		return Card{}, false
	}
	card = d.cards[n-1]
	d.cards = d.cards[:n-1]
	return card, true
}

// Burn discards one card from the tail without revealing it. It fails the
// same way Draw does if the deck is empty.
func (d *Deck) Burn() (ok bool) {
	_, ok = d.Draw()
	return ok
}

// Remaining returns the number of cards left in the deck.
func (d *Deck) Remaining() int { return len(d.cards) }

// Cards returns a defensive copy of the remaining cards, tail-last, for
// persistence snapshots.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// FromCards rebuilds a Deck from a persisted remaining-cards slice, for
// table recovery (§6 "Persisted state").
func FromCards(cards []Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	copy(d.cards, cards)
	return d
}

// lcg is a tiny deterministic generator used only by NewShuffledFromSeed;
// it is never used for the cryptographic default path.
type lcg struct{ state uint64 }

func newLCG(seed int64) *lcg { return &lcg{state: uint64(seed) ^ 0x9E3779B97F4A7C15} }

func (l *lcg) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	// xorshift64*, good enough spread for deterministic test shuffles.
	l.state ^= l.state >> 12
	l.state ^= l.state << 25
	l.state ^= l.state >> 27
	v := l.state * 0x2545F4914F6CDD1D
	return int(v % uint64(n))
}
