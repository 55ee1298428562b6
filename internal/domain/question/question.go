package question

// Record is one catalog entry. Index and Condition are part of the record shape
// but are never populated by the spreadsheet import.
type Record struct {
	Index             *int     `json:"index" yaml:"index"`
	Text              string   `json:"text" yaml:"text"`
	QuickReplyOptions []string `json:"quick_reply_options" yaml:"quick_reply_options"`
	Condition         *string  `json:"condition" yaml:"condition"`
}

// ConditionText returns the record's condition or "" when unset.
func (r Record) ConditionText() string {
	if r.Condition == nil {
		return ""
	}
	return *r.Condition
}

// Turn is one incoming request of the questionnaire flow.
type Turn struct {
	UserID           string  `json:"user_id"`
	QuestionIndex    *int    `json:"question_index"`
	PreviousQuestion *string `json:"previous_question"`
	PreviousAnswer   *string `json:"previous_answer"`
}

func (t Turn) PreviousQuestionText() string {
	if t.PreviousQuestion == nil {
		return ""
	}
	return *t.PreviousQuestion
}

func (t Turn) PreviousAnswerText() string {
	if t.PreviousAnswer == nil {
		return ""
	}
	return *t.PreviousAnswer
}

// Reply is the response sent back to the frontend.
type Reply struct {
	RephrasedQuestion string   `json:"rephrased_question"`
	QuickReplyOptions []string `json:"quick_reply_options"`
	NextQuestionIndex *int     `json:"next_question_index,omitempty"`
}

// Branch names which path of the flow produced a reply.
type Branch string

const (
	BranchReplay  Branch = "replay"
	BranchClarify Branch = "clarify"
	BranchAdvance Branch = "advance"
)
