// Package evaluation scores a learner's diagram against the scenario requirements.
package evaluation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/terra-clan/archsim/internal/catalog"
	"github.com/terra-clan/archsim/internal/llm"
	"github.com/terra-clan/archsim/internal/metrics"
	"github.com/terra-clan/archsim/internal/models"
)

const (
	componentsPlaceholder = "{{AVAILABLE_COMPONENTS}}"
	schemaPlaceholder     = "{{VERDICT_SCHEMA}}"
	designDataLabel       = "\nUser Design Data:\n"
)

// ParseError means the model reply was not a verdict object
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable verdict: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Evaluator builds evaluation prompts and interprets the verdict
type Evaluator struct {
	instructions string
	catalog      *catalog.Catalog
	gateway      llm.Gateway
	metrics      *metrics.Metrics
}

// NewEvaluator renders the static instructions once with the component whitelist
// and verdict schema.
func NewEvaluator(c *catalog.Catalog, components *catalog.Components, gateway llm.Gateway, m *metrics.Metrics) (*Evaluator, error) {
	schema, err := verdictSchema()
	if err != nil {
		return nil, err
	}

	instructions := RenderInstructions(catalog.EvaluationTemplate(), components.PromptList(), schema)

	return &Evaluator{
		instructions: instructions,
		catalog:      c,
		gateway:      gateway,
		metrics:      m,
	}, nil
}

// RenderInstructions substitutes the template placeholders
func RenderInstructions(template, components, schema string) string {
	return strings.NewReplacer(
		componentsPlaceholder, components,
		schemaPlaceholder, schema,
	).Replace(template)
}

func verdictSchema() (string, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&models.EvaluationVerdict{})

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal verdict schema: %w", err)
	}
	return string(data), nil
}

// Instructions returns the rendered static part of every evaluation prompt
func (e *Evaluator) Instructions() string {
	return e.instructions
}

// BuildPrompt applies requirement injection to payload in place and returns the full prompt
func (e *Evaluator) BuildPrompt(payload map[string]any) (string, error) {
	InjectRequirements(payload, e.catalog)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return "", fmt.Errorf("failed to encode design data: %w", err)
	}

	return e.instructions + designDataLabel + strings.TrimRight(buf.String(), "\n"), nil
}

// Evaluate scores the design. It never fails: upstream errors and unparseable
// replies are folded into the returned envelope's status.
func (e *Evaluator) Evaluate(ctx context.Context, payload map[string]any) models.EvaluationResult {
	result := e.evaluate(ctx, payload)
	e.metrics.Evaluation(result.Status)
	return result
}

func (e *Evaluator) evaluate(ctx context.Context, payload map[string]any) models.EvaluationResult {
	prompt, err := e.BuildPrompt(payload)
	if err != nil {
		slog.Error("failed to build evaluation prompt", "error", err)
		return models.EvaluationErrorResult()
	}

	reply, err := e.gateway.Generate(ctx, prompt)
	if err != nil {
		slog.Error("evaluation upstream call failed", "provider", e.gateway.Provider(), "error", err)
		return models.EvaluationErrorResult()
	}

	verdict, err := ParseVerdict(reply)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			slog.Warn("evaluation reply is not a verdict", "error", pe.Err, "bytes", len(pe.Raw))
			return models.EvaluationResult{Score: 0, Feedback: pe.Raw, Status: models.StatusPartialSuccess}
		}
		return models.EvaluationErrorResult()
	}

	return models.EvaluationResult{
		Score:       verdict.Score,
		Feedback:    verdict.Feedback,
		Improvement: verdict.Improvement,
		Status:      models.StatusSuccess,
	}
}

// StripFences removes Markdown code fence markers anywhere in the reply and trims whitespace
func StripFences(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

// Score bounds, matching the verdict schema
const (
	minScore = 0
	maxScore = 100
)

type rawVerdict struct {
	Score       any    `json:"score"`
	Feedback    string `json:"feedback"`
	Improvement string `json:"improvement"`
}

// ParseVerdict strips fences and decodes the verdict object. A fractional score is
// rounded and must fall within 0-100; a missing score is zero. Failures are *ParseError carrying the cleaned text.
func ParseVerdict(raw string) (models.EvaluationVerdict, error) {
	cleaned := StripFences(raw)
	if !strings.HasPrefix(cleaned, "{") {
		return models.EvaluationVerdict{}, &ParseError{Raw: cleaned, Err: errors.New("reply is not a JSON object")}
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()

	var rv rawVerdict
	if err := dec.Decode(&rv); err != nil {
		return models.EvaluationVerdict{}, &ParseError{Raw: cleaned, Err: err}
	}
	if dec.More() {
		return models.EvaluationVerdict{}, &ParseError{Raw: cleaned, Err: errors.New("trailing data after verdict")}
	}

	score := 0
	switch s := rv.Score.(type) {
	case nil:
	case json.Number:
		f, err := s.Float64()
		if err != nil {
			return models.EvaluationVerdict{}, &ParseError{Raw: cleaned, Err: err}
		}
		rounded := math.Round(f)
		if rounded < minScore || rounded > maxScore {
			return models.EvaluationVerdict{}, &ParseError{Raw: cleaned, Err: fmt.Errorf("score %v outside %d-%d", f, minScore, maxScore)}
		}
		score = int(rounded)
	default:
		return models.EvaluationVerdict{}, &ParseError{Raw: cleaned, Err: fmt.Errorf("score has type %T", s)}
	}

	return models.EvaluationVerdict{
		Score:       score,
		Feedback:    rv.Feedback,
		Improvement: rv.Improvement,
	}, nil
}
