package retrieval

import (
	"github.com/pkoukk/tiktoken-go"
)

// TokenEstimator returns a non-negative token count for text under the given
// model hint. Budget fitting uses running sums of per-block estimates, so the
// estimator does not need to be monotonic under concatenation.
type TokenEstimator func(text, model string) int

// EstimateTokens counts tokens with the model's tokenizer, falling back to a
// character-count approximation when no tokenizer is available for the model.
func EstimateTokens(text, model string) int {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return approximateTokens(text)
	}
	return len(enc.Encode(text, nil, nil))
}

func approximateTokens(text string) int {
	n := len(text) / 4
	if n < 1 {
		n = 1
	}
	return n
}
