// Package coach turns a described struggle into a 3-step battle plan.
package coach

import (
	"context"
	"errors"
)

// FormField is the form key carrying the struggle text.
const FormField = "user_struggle"

// MissingFieldMessage is shown when the struggle text is absent or blank.
const MissingFieldMessage = "Missing 'user_struggle' in the form."

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("empty response from model")

// Generator produces text for a prompt using the named model.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// StrategyRequest is the transient input of a single submission.
type StrategyRequest struct {
	Struggle string
}

// FailureKind categorizes why a submission produced no plan.
type FailureKind string

const (
	// FailureValidation means the input was rejected before any model call.
	FailureValidation FailureKind = "validation"
	// FailureGeneration means the model call failed or returned nothing usable.
	FailureGeneration FailureKind = "generation"
)

// Failure is the error side of a Result.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Result is the outcome of one submission. Exactly one of BattlePlan and
// Failure is set.
type Result struct {
	BattlePlan string
	Failure    *Failure
}

// OK reports whether the result carries a battle plan.
func (r Result) OK() bool {
	return r.Failure == nil
}

// ErrorMessage returns the failure message, or "" on success.
func (r Result) ErrorMessage() string {
	if r.Failure == nil {
		return ""
	}
	return r.Failure.Message
}

// Err returns the failure as an error, or nil on success.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

func planResult(plan string) Result {
	return Result{BattlePlan: plan}
}

func validationResult(message string, err error) Result {
	return Result{Failure: &Failure{Kind: FailureValidation, Message: message, Err: err}}
}

func generationResult(err error) Result {
	msg := err.Error()
	if msg == "" {
		msg = "generation failed"
	}
	return Result{Failure: &Failure{Kind: FailureGeneration, Message: msg, Err: err}}
}
