package scoring

// Draw is the winner label when neither side comes out ahead.
const Draw = "Draw"

type Source string

const (
	SourceML       Source = "ml"
	SourceFallback Source = "fallback"
)

// Sample is one argument as seen by a scorer.
type Sample struct {
	AuthorID  string
	Username  string
	Text      string
	Sentiment float64
	Analyzed  bool
}

// Verdict is the outcome of scoring a whole debate.
type Verdict struct {
	LogicScore          float64
	PersuasivenessScore float64
	EngagementScore     float64
	Winner              string
	WinnerID            string
	Source              Source
}

// Wire types of the ML API.

type analyzeRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	Sentiment *float64 `json:"sentiment"`
}

type finalizeArgument struct {
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	ArgumentText string `json:"argumentText"`
}

type finalizeRequest struct {
	Arguments []finalizeArgument `json:"arguments"`
}

type sideScores struct {
	Sentiment float64 `json:"sentiment"`
	Clarity   float64 `json:"clarity"`
}

type finalizeResponse struct {
	Totals map[string]float64    `json:"totals"`
	Scores map[string]sideScores `json:"scores"`
	Winner string                `json:"winner"`
}
