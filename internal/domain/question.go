package domain

// QuestionType discriminates the closed set of question variants. Scoring
// and generation dispatch on this tag instead of type switches over
// concrete structs.
type QuestionType string

const (
	// QuestionConsumption asks how much energy an activity takes, with
	// three numeric answer choices.
	QuestionConsumption QuestionType = "consumption"
	// QuestionMoreExpensive asks which of three activities consumes the
	// most energy.
	QuestionMoreExpensive QuestionType = "moreExpensive"
	// QuestionGuess asks for a free-form numeric estimate of an
	// activity's consumption; scored by proximity.
	QuestionGuess QuestionType = "guess"
	// QuestionInstead asks what could be done instead of an activity for
	// roughly the same energy.
	QuestionInstead QuestionType = "instead"
)

// Question is one round's question. A single tagged struct covers all four
// variants: AnswerChoices is empty for guess questions, and CorrectAnswer
// holds the exact-match text for choice questions or the decimal
// consumption for guess questions.
type Question struct {
	Type          QuestionType `json:"type"`
	Prompt        string       `json:"prompt"`
	Activity      Activity     `json:"activity"`
	AnswerChoices []string     `json:"answerChoices,omitempty"`
	CorrectAnswer string       `json:"correctAnswer"`
}
