package betting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckIllegalWhenBehind(t *testing.T) {
	seat := Seat{Stack: 100, RoundBet: 0}
	round := Round{CurrentBet: 10, MinRaise: 10, MinBet: 10}
	_, err := Apply(seat, round, Action{Kind: Check})
	require.Error(t, err)
}

func TestCallGoesAllInWhenShort(t *testing.T) {
	seat := Seat{Stack: 5, RoundBet: 0}
	round := Round{CurrentBet: 10, MinRaise: 10, MinBet: 10}
	res, err := Apply(seat, round, Action{Kind: Call})
	require.NoError(t, err)
	assert.True(t, res.BecomesAllIn)
	assert.Equal(t, int64(5), res.ChipsMoved)
	assert.Equal(t, int64(5), res.NewRoundBet)
}

func TestBetBelowMinIllegalUnlessAllIn(t *testing.T) {
	seat := Seat{Stack: 100, RoundBet: 0}
	round := Round{CurrentBet: 0, MinRaise: 10, MinBet: 10}
	_, err := Apply(seat, round, Action{Kind: Bet, Amount: 5})
	require.Error(t, err)

	shortStack := Seat{Stack: 5, RoundBet: 0}
	res, err := Apply(shortStack, round, Action{Kind: Bet, Amount: 5})
	require.NoError(t, err)
	assert.True(t, res.BecomesAllIn)
}

// TestFullRaiseReopensAction is P6: a full legal raise must reopen action
// for non-folded non-all-in seats.
func TestFullRaiseReopensAction(t *testing.T) {
	seat := Seat{Stack: 500, RoundBet: 10}
	round := Round{CurrentBet: 10, MinRaise: 10, MinBet: 10}
	res, err := Apply(seat, round, Action{Kind: Raise, Amount: 30})
	require.NoError(t, err)
	assert.True(t, res.IsRaise)
	assert.True(t, res.FullRaise)
	assert.Equal(t, int64(30), res.NewCurrentBet)
	assert.Equal(t, int64(20), res.NewMinRaise)
}

// TestIncompleteAllInRaiseDoesNotReopen is P6's negative case.
func TestIncompleteAllInRaiseDoesNotReopen(t *testing.T) {
	seat := Seat{Stack: 15, RoundBet: 10} // total reach 25, below min legal raise of 20->30
	round := Round{CurrentBet: 20, MinRaise: 10, MinBet: 10}
	res, err := Apply(seat, round, Action{Kind: Raise, Amount: 25})
	require.NoError(t, err)
	assert.True(t, res.IsRaise)
	assert.False(t, res.FullRaise)
	assert.True(t, res.BecomesAllIn)
	assert.Equal(t, int64(25), res.NewCurrentBet)
	assert.Equal(t, round.MinRaise, res.NewMinRaise) // unchanged
}

func TestRaiseBelowMinimumRejectedIfNotAllIn(t *testing.T) {
	seat := Seat{Stack: 500, RoundBet: 10}
	round := Round{CurrentBet: 10, MinRaise: 10, MinBet: 10}
	_, err := Apply(seat, round, Action{Kind: Raise, Amount: 15})
	require.Error(t, err)
}

func TestFoldAlwaysLegal(t *testing.T) {
	seat := Seat{Stack: 100, RoundBet: 0}
	round := Round{CurrentBet: 1000, MinRaise: 10, MinBet: 10}
	res, err := Apply(seat, round, Action{Kind: Fold})
	require.NoError(t, err)
	assert.Equal(t, Fold, res.Kind)
}

func TestActionAfterFoldOrAllInRejected(t *testing.T) {
	round := Round{CurrentBet: 10, MinRaise: 10, MinBet: 10}
	_, err := Apply(Seat{Folded: true}, round, Action{Kind: Fold})
	require.Error(t, err)
	_, err = Apply(Seat{AllIn: true, Stack: 0}, round, Action{Kind: Check})
	require.Error(t, err)
}

func TestRoundCompleteRequiresAllActedAndMatched(t *testing.T) {
	seats := []Seat{
		{RoundBet: 10, ActedThisRound: true},
		{RoundBet: 10, ActedThisRound: true},
	}
	assert.True(t, RoundComplete(seats, 10))

	seats[1].ActedThisRound = false
	assert.False(t, RoundComplete(seats, 10))
}

func TestRoundCompleteIgnoresFoldedAndAllIn(t *testing.T) {
	seats := []Seat{
		{RoundBet: 10, ActedThisRound: true},
		{Folded: true},
		{AllIn: true, RoundBet: 5},
	}
	assert.True(t, RoundComplete(seats, 10))
}

func TestAllInShorthandResolvesToBetOrRaiseOrCall(t *testing.T) {
	round := Round{CurrentBet: 0, MinRaise: 10, MinBet: 10}
	res, err := Apply(Seat{Stack: 50}, round, Action{Kind: AllIn})
	require.NoError(t, err)
	assert.Equal(t, Bet, res.Kind)
	assert.True(t, res.BecomesAllIn)

	round2 := Round{CurrentBet: 10, MinRaise: 10, MinBet: 10}
	res2, err := Apply(Seat{Stack: 5, RoundBet: 0}, round2, Action{Kind: AllIn})
	require.NoError(t, err)
	assert.Equal(t, Call, res2.Kind)

	res3, err := Apply(Seat{Stack: 50, RoundBet: 0}, round2, Action{Kind: AllIn})
	require.NoError(t, err)
	assert.Equal(t, Raise, res3.Kind)
}

func TestResetForNextStreetLeavesFoldedAndAllInAlone(t *testing.T) {
	seats := []Seat{
		{RoundBet: 10, ActedThisRound: true},
		{RoundBet: 10, Folded: true},
		{RoundBet: 10, AllIn: true},
	}
	out := ResetForNextStreet(seats)
	assert.Equal(t, int64(0), out[0].RoundBet)
	assert.False(t, out[0].ActedThisRound)
	assert.Equal(t, int64(10), out[1].RoundBet)
	assert.Equal(t, int64(10), out[2].RoundBet)
}
