package intake

import (
	"fmt"
	"strings"
)

// The intake conversation is modelled as an explicit state value with pure
// transition functions. Callers apply the returned effects (say a message,
// submit the completed record) themselves, which keeps the machine fully
// unit-testable without a transport or rendering layer.

type Phase int

const (
	// PhaseCollecting asks one question at a time, strictly in order.
	PhaseCollecting Phase = iota
	// PhaseAwaitingSubmission means the evaluation pipeline is in flight;
	// no further input is accepted until it settles.
	PhaseAwaitingSubmission
	// PhaseFreeChat follows a settled evaluation; only a restart phrase
	// does anything.
	PhaseFreeChat
)

func (p Phase) String() string {
	switch p {
	case PhaseCollecting:
		return "collecting"
	case PhaseAwaitingSubmission:
		return "awaiting_submission"
	case PhaseFreeChat:
		return "free_chat"
	default:
		return "unknown"
	}
}

// ResponseRecord accumulates validated answers keyed by field key. Values
// are strings for text fields and float64 for numeric fields.
type ResponseRecord map[string]interface{}

// EvaluationInput is the completed record restructured for the analysis
// pipeline: supplier identity split out, all remaining fields numeric.
type EvaluationInput struct {
	SupplierName string
	Industry     string
	Responses    map[string]float64
}

type State struct {
	Phase         Phase
	QuestionIndex int
	Record        ResponseRecord
}

// Effect is an action the caller must carry out after a transition.
type Effect interface{ isEffect() }

// Say emits an assistant message.
type Say struct {
	Text string
}

// Submit triggers the evaluation pipeline exactly once with the completed
// input. The machine is in PhaseAwaitingSubmission until the caller settles
// it via SettleSuccess or SettleFailure.
type Submit struct {
	Input EvaluationInput
}

func (Say) isEffect()    {}
func (Submit) isEffect() {}

const (
	Greeting = "Hello! I'm ProQure, your AI procurement advisor. " +
		"I'll help you evaluate your supplier's sustainability. " +
		"Let's start with some questions. " +
		"What is the name of the supplier you want to evaluate?"

	analyzingMessage = "Great! I have all the information I need. Let me analyze this supplier for you..."

	redirectMessage = "I've completed the evaluation. Would you like to evaluate another supplier? " +
		"Just say 'restart' or 'new evaluation' to begin again."
)

var restartPhrases = []string{"restart", "new evaluation", "start over"}

// IsRestart reports whether the input contains a restart phrase.
func IsRestart(input string) bool {
	lowered := strings.ToLower(input)
	for _, phrase := range restartPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

// Initial returns a fresh conversation at the first question, with the
// greeting enqueued.
func Initial() (State, []Effect) {
	state := State{
		Phase:         PhaseCollecting,
		QuestionIndex: 0,
		Record:        ResponseRecord{},
	}
	return state, []Effect{Say{Text: Greeting}}
}

// Advance applies one user message to the state. While collecting, an
// invalid answer re-emits the same question prefixed with the validation
// message and the index does not move; a valid answer records the value and
// advances exactly one question. Answering the final question submits the
// evaluation. While a submission is in flight the input is ignored.
func Advance(s State, input string) (State, []Effect) {
	switch s.Phase {
	case PhaseAwaitingSubmission:
		return s, nil

	case PhaseFreeChat:
		if IsRestart(input) {
			return Initial()
		}
		return s, []Effect{Say{Text: redirectMessage}}
	}

	spec := Fields[s.QuestionIndex]

	value, verr := ParseAnswer(spec, input)
	if verr != nil {
		return s, []Effect{Say{Text: fmt.Sprintf("%s. %s", verr.Message, spec.Label)}}
	}

	record := make(ResponseRecord, len(s.Record)+1)
	for k, v := range s.Record {
		record[k] = v
	}
	record[spec.Key] = value

	if s.QuestionIndex < len(Fields)-1 {
		next := State{
			Phase:         PhaseCollecting,
			QuestionIndex: s.QuestionIndex + 1,
			Record:        record,
		}
		return next, []Effect{Say{Text: Fields[next.QuestionIndex].Label}}
	}

	next := State{
		Phase:         PhaseAwaitingSubmission,
		QuestionIndex: s.QuestionIndex,
		Record:        record,
	}
	return next, []Effect{
		Say{Text: analyzingMessage},
		Submit{Input: buildInput(record)},
	}
}

// SettleSuccess moves a pending submission into free chat with the result
// summary enqueued.
func SettleSuccess(s State, summary string) (State, []Effect) {
	next := State{
		Phase:         PhaseFreeChat,
		QuestionIndex: s.QuestionIndex,
		Record:        s.Record,
	}
	return next, []Effect{Say{Text: summary}}
}

// SettleFailure moves a pending submission into free chat with an error
// message naming the failure. The conversation stays restartable; nothing
// already persisted is affected.
func SettleFailure(s State, userMessage string) (State, []Effect) {
	next := State{
		Phase:         PhaseFreeChat,
		QuestionIndex: s.QuestionIndex,
		Record:        s.Record,
	}
	text := fmt.Sprintf(
		"Sorry, there was an error processing your request: %s Please try again or say 'restart'.",
		userMessage,
	)
	return next, []Effect{Say{Text: text}}
}

func buildInput(record ResponseRecord) EvaluationInput {
	input := EvaluationInput{
		Responses: make(map[string]float64, len(record)),
	}

	for key, value := range record {
		switch key {
		case KeySupplierName:
			input.SupplierName, _ = value.(string)
		case KeyIndustry:
			input.Industry, _ = value.(string)
		default:
			if n, ok := value.(float64); ok {
				input.Responses[key] = n
			}
		}
	}

	return input
}
