package eval

import (
	"math/rand"
	"testing"

	chehsunliu "github.com/chehsunliu/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vctt94/pokertable/internal/card"
)

func c(rank card.Rank, suit card.Suit) card.Card { return card.New(suit, rank) }

// TestWheelStraight is scenario #3: A-2-3-4-5 ranks as a straight with
// high card 5, beating a made pair.
func TestWheelStraight(t *testing.T) {
	community := []card.Card{
		c(card.Two, card.Diamonds), c(card.Three, card.Clubs), c(card.Four, card.Spades),
		c(card.Nine, card.Hearts), c(card.King, card.Diamonds),
	}
	a := append([]card.Card{c(card.Ace, card.Hearts), c(card.Five, card.Clubs)}, community...)
	b := append([]card.Card{c(card.King, card.Clubs), c(card.Queen, card.Spades)}, community...)

	ra := Evaluate7(a)
	rb := Evaluate7(b)
	require.Equal(t, Straight, ra.Category)
	require.Equal(t, 5, ra.Tiebreak[0])
	require.Equal(t, Pair, rb.Category)
	assert.Equal(t, 1, Compare(ra, rb))
}

// TestStraightVsFlush is scenario #2.
func TestStraightVsFlush(t *testing.T) {
	community := []card.Card{
		c(card.Seven, card.Spades), c(card.Eight, card.Spades), c(card.Nine, card.Diamonds),
		c(card.Ten, card.Spades), c(card.Two, card.Clubs),
	}
	a := append([]card.Card{c(card.Six, card.Spades), c(card.Ace, card.Spades)}, community...)
	b := append([]card.Card{c(card.Jack, card.Hearts), c(card.Jack, card.Diamonds)}, community...)

	ra := Evaluate7(a)
	rb := Evaluate7(b)
	require.Equal(t, Flush, ra.Category)
	require.Equal(t, Straight, rb.Category)
	assert.Equal(t, 1, Compare(ra, rb))
}

// TestSplitPotRoyalFlushOnBoard is scenario #6: both players play the
// board, so their evaluations must be exactly equal (a split).
func TestSplitPotRoyalFlushOnBoard(t *testing.T) {
	community := []card.Card{
		c(card.Ace, card.Spades), c(card.King, card.Spades), c(card.Queen, card.Spades),
		c(card.Jack, card.Spades), c(card.Ten, card.Spades),
	}
	a := append([]card.Card{c(card.Two, card.Diamonds), c(card.Three, card.Diamonds)}, community...)
	b := append([]card.Card{c(card.Four, card.Clubs), c(card.Five, card.Clubs)}, community...)

	ra := Evaluate7(a)
	rb := Evaluate7(b)
	require.Equal(t, RoyalFlush, ra.Category)
	assert.Equal(t, 0, Compare(ra, rb))
}

func toChehsunliu(t *testing.T, cards []card.Card) []chehsunliu.Card {
	t.Helper()
	out := make([]chehsunliu.Card, 0, len(cards))
	for _, cd := range cards {
		var rankChar byte
		switch cd.Rank {
		case card.Two:
			rankChar = '2'
		case card.Three:
			rankChar = '3'
		case card.Four:
			rankChar = '4'
		case card.Five:
			rankChar = '5'
		case card.Six:
			rankChar = '6'
		case card.Seven:
			rankChar = '7'
		case card.Eight:
			rankChar = '8'
		case card.Nine:
			rankChar = '9'
		case card.Ten:
			rankChar = 'T'
		case card.Jack:
			rankChar = 'J'
		case card.Queen:
			rankChar = 'Q'
		case card.King:
			rankChar = 'K'
		case card.Ace:
			rankChar = 'A'
		}
		var suitChar byte
		switch cd.Suit {
		case card.Spades:
			suitChar = 's'
		case card.Hearts:
			suitChar = 'h'
		case card.Diamonds:
			suitChar = 'd'
		case card.Clubs:
			suitChar = 'c'
		}
		out = append(out, chehsunliu.NewCard(string([]byte{rankChar, suitChar})))
	}
	return out
}

// TestDifferentialAgainstChehsunliu is the P4/P5 differential property
// test: for random 7-card sets, our category ordering must agree with
// the independent chehsunliu/poker evaluator (used only as a test oracle,
// never on the production path).
func TestDifferentialAgainstChehsunliu(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	deck := make([]card.Card, 0, 52)
	for _, s := range card.AllSuits {
		for _, r := range card.AllRanks {
			deck = append(deck, card.New(s, r))
		}
	}

	for trial := 0; trial < 2000; trial++ {
		rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
		handA := append([]card.Card{}, deck[0:7]...)
		handB := append([]card.Card{}, deck[7:14]...)

		ra := Evaluate7(handA)
		rb := Evaluate7(handB)

		oracleA := chehsunliu.Evaluate(toChehsunliu(t, handA))
		oracleB := chehsunliu.Evaluate(toChehsunliu(t, handB))

		ours := Compare(ra, rb)
		// chehsunliu: lower rank value is better.
		var oracle int
		switch {
		case oracleA < oracleB:
			oracle = 1
		case oracleA > oracleB:
			oracle = -1
		default:
			oracle = 0
		}
		require.Equalf(t, oracle, ours, "trial %d: hands disagree (a=%+v b=%+v)", trial, ra, rb)
	}
}

// TestCompareIsReflexiveAndTransitiveSample is a lightweight P5 check: a
// fixed total order over a small set of representative hands.
func TestCompareIsReflexiveAndTransitiveSample(t *testing.T) {
	community := []card.Card{
		c(card.Two, card.Hearts), c(card.Seven, card.Diamonds), c(card.Nine, card.Clubs),
		c(card.Jack, card.Spades), c(card.King, card.Hearts),
	}
	hands := [][]card.Card{
		append([]card.Card{c(card.Three, card.Hearts), c(card.Four, card.Clubs)}, community...), // high card
		append([]card.Card{c(card.Two, card.Clubs), c(card.Two, card.Diamonds)}, community...),  // three of a kind (2s, with the board's 2h)
		append([]card.Card{c(card.King, card.Clubs), c(card.King, card.Diamonds)}, community...), // better three of a kind (Ks, with the board's Kh)
	}
	results := make([]Result, len(hands))
	for i, h := range hands {
		results[i] = Evaluate7(h)
		assert.Equal(t, 0, Compare(results[i], results[i]))
	}
	assert.Equal(t, -1, Compare(results[0], results[1]))
	assert.Equal(t, -1, Compare(results[1], results[2]))
	assert.Equal(t, -1, Compare(results[0], results[2]))
}
