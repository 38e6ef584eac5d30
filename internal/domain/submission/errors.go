package submission

// ValidationError reports the first rule an incoming payload violated.
// Its message is a single line intended for the client.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// One error value per validation rule, checked in order.
var (
	errNotObject       = &ValidationError{Reason: "payload must be a JSON object"}
	errEvaluatorName   = &ValidationError{Reason: "Evaluator name is required"}
	errResults         = &ValidationError{Reason: "results must be a non-empty list"}
	errResultNotObject = &ValidationError{Reason: "each result must be an object"}
	errPresenterID     = &ValidationError{Reason: "presenterId is required"}
	errScoreMissing    = &ValidationError{Reason: "score is required"}
	errScoreRange      = &ValidationError{Reason: "score must be an integer 0..5"}
	errComment         = &ValidationError{Reason: "comment must be a string"}
)
