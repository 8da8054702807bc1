package models

// EvaluationVerdict is what the model is asked to return
type EvaluationVerdict struct {
	Score       int    `json:"score" jsonschema:"minimum=0,maximum=100,description=Overall score of the design"`
	Feedback    string `json:"feedback" jsonschema:"description=Assessment of the design against the requirements"`
	Improvement string `json:"improvement" jsonschema:"description=Most important change to make next"`
}

// EvaluationResult is the verdict envelope returned to the client
type EvaluationResult struct {
	Score       int    `json:"score"`
	Feedback    string `json:"feedback"`
	Improvement string `json:"improvement,omitempty"`
	Status      string `json:"status"`
}

// EvaluationErrorResult is returned when the upstream model call fails
func EvaluationErrorResult() EvaluationResult {
	return EvaluationResult{Score: 0, Feedback: "Error", Status: StatusError}
}
