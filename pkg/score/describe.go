package score

// Sentiment is the descriptive label of a score on the 0-4 scale.
type Sentiment string

const (
	Negative         Sentiment = "negative"
	SomewhatNegative Sentiment = "somewhat negative"
	Neutral          Sentiment = "neutral"
	SomewhatPositive Sentiment = "somewhat positive"
	Positive         Sentiment = "positive"
)

// ascending upper bounds, exclusive
var sentimentThresholds = []struct {
	below float64
	label Sentiment
}{
	{0.5, Negative},
	{1.5, SomewhatNegative},
	{2.5, Neutral},
	{3.5, SomewhatPositive},
}

// Describe maps score to a sentiment. A score equal to a threshold belongs
// to the upper bucket.
func Describe(score float64) Sentiment {
	for _, t := range sentimentThresholds {
		if score < t.below {
			return t.label
		}
	}
	return Positive
}
