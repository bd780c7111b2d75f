package scoring

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"pokertable.io/server/poker"
)

// CardFormat is how cards are written into the scoring query.
type CardFormat string

const (
	// CardFormatNumeric writes ranks as numbers, aces high: d7|d13|h14.
	CardFormatNumeric CardFormat = "numeric"
	// CardFormatToken writes the table's own card tokens: d7|dK|hA.
	CardFormatToken CardFormat = "token"
)

func ParseCardFormat(s string) (CardFormat, error) {
	switch f := CardFormat(strings.ToLower(s)); f {
	case "", CardFormatNumeric:
		return CardFormatNumeric, nil
	case CardFormatToken:
		return f, nil
	}
	return "", fmt.Errorf("Unknown scoring card format %q", s)
}

// HTTPScorer asks a remote hand scoring service. The hand goes in the h
// query parameter as pipe separated cards. The default format is the one
// the pokerbrain service reads: ?h=d7|d13|d12|d10|s8|d2|h14
type HTTPScorer struct {
	endpoint string
	client   *http.Client
	format   CardFormat
}

func NewHTTPScorer(endpoint string, client *http.Client) *HTTPScorer {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPScorer{endpoint: endpoint, client: client, format: CardFormatNumeric}
}

// WithCardFormat switches the query format for services that read card tokens.
func (s *HTTPScorer) WithCardFormat(format CardFormat) *HTTPScorer {
	s.format = format
	return s
}

// HandQuery writes cards in the numeric format.
func HandQuery(cards []poker.Card) string {
	return FormatHand(cards, CardFormatNumeric)
}

func FormatHand(cards []poker.Card, format CardFormat) string {
	if format == CardFormatToken {
		return poker.JoinCards(cards)
	}
	tokens := make([]string, len(cards))
	for i, c := range cards {
		tokens[i] = c.String()[:1] + strconv.Itoa(int(c.Rank())+2)
	}
	return strings.Join(tokens, poker.CardDelimiter)
}

func (s *HTTPScorer) Score(ctx context.Context, cards []poker.Card) (Result, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return Result{}, fmt.Errorf("A scored hand has 5 to 7 cards, got %d", len(cards))
	}
	requestURL := fmt.Sprintf("%s?%s", s.endpoint, url.Values{"h": {FormatHand(cards, s.format)}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return Result{}, errors.Wrap(err, "Unable to build scoring request")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return Result{}, errors.Wrap(err, "Scoring request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("Scoring service returned status %d", resp.StatusCode)
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return Result{}, errors.Wrap(err, "Unable to read scoring response")
	}
	var result Result
	if err := jsoniter.Unmarshal(body, &result); err != nil {
		return Result{}, errors.Wrapf(err, "Invalid scoring response [%s]", string(body))
	}
	return result, nil
}
