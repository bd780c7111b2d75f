package poker

import (
	"encoding/json"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullDeckHas52DistinctCards(t *testing.T) {
	deck := FullDeck()
	require.Len(t, deck, NumCards)
	seen := make(map[string]bool)
	for _, c := range deck {
		require.True(t, c.Valid(), "card %d", c)
		require.False(t, seen[c.String()], "duplicate %s", c)
		seen[c.String()] = true
	}
	assert.Equal(t, "d2", deck[0].String())
	assert.Equal(t, "sA", deck[51].String())
}

func TestParseCard(t *testing.T) {
	testCases := []struct {
		token string
		suit  Suit
		rank  Rank
	}{
		{"d2", Diamond, Two},
		{"cT", Club, Ten},
		{"hJ", Heart, Jack},
		{"sQ", Spade, Queen},
		{"dK", Diamond, King},
		{"hA", Heart, Ace},
		{"s9", Spade, Nine},
	}
	for _, tc := range testCases {
		c, err := ParseCard(tc.token)
		require.NoError(t, err, tc.token)
		assert.Equal(t, tc.suit, c.Suit(), tc.token)
		assert.Equal(t, tc.rank, c.Rank(), tc.token)
		assert.Equal(t, tc.token, c.String())
	}
}

func TestParseCardRejectsBadTokens(t *testing.T) {
	for _, token := range []string{"", "d", "x2", "d1", "dZ", "d10", "Kh", "2d"} {
		_, err := ParseCard(token)
		var cardErr InvalidCardError
		require.ErrorAs(t, err, &cardErr, token)
	}
}

func TestCardIndexCoversUniverse(t *testing.T) {
	seen := make(map[int]bool)
	for i, c := range FullDeck() {
		assert.Equal(t, i, c.Index())
		seen[c.Index()] = true
	}
	require.Len(t, seen, NumCards)
}

func TestCardJSON(t *testing.T) {
	cards := []Card{MustParseCard("sA"), MustParseCard("d7")}
	data, err := jsoniter.Marshal(cards)
	require.NoError(t, err)
	require.Equal(t, `["sA","d7"]`, string(data))

	var decoded []Card
	require.NoError(t, jsoniter.Unmarshal(data, &decoded))
	require.Equal(t, cards, decoded)

	require.Error(t, jsoniter.Unmarshal([]byte(`["zz"]`), &decoded))
}

// Both codecs must agree: gin renders with encoding/json, the push channels
// with json-iterator.
func TestCardSliceCodecsAgree(t *testing.T) {
	type holder struct {
		Cards []Card `json:"cards"`
		Own   []Card `json:"own,omitempty"`
	}
	testCases := []struct {
		name     string
		value    holder
		expected string
	}{
		{"cards", holder{Cards: []Card{MustParseCard("hT"), MustParseCard("cK")}, Own: []Card{MustParseCard("s2")}}, `{"cards":["hT","cK"],"own":["s2"]}`},
		{"empty", holder{Cards: []Card{}}, `{"cards":[]}`},
		{"nil", holder{}, `{"cards":null}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			std, err := json.Marshal(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(std))

			iter, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, string(iter))

			var decoded holder
			require.NoError(t, jsoniter.Unmarshal(iter, &decoded))
			assert.Equal(t, tc.value, decoded)
		})
	}
}

func TestPrintCards(t *testing.T) {
	assert.Equal(t, "[A♠ T♦]", PrintCards([]Card{MustParseCard("sA"), MustParseCard("dT")}))
}
