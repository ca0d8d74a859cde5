package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/museloop/genflow/pkg/invariant"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/protocol"
	"github.com/museloop/genflow/pkg/shape"
	"github.com/museloop/genflow/pkg/template"
)

// Invoke runs one invocation of def against a typed input. It returns either
// an output that passed the output shape and every invariant, or a
// *models.FlowError. The backend is called at most once.
func Invoke[In, Out any](ctx context.Context, o *Orchestrator, def *Definition[In, Out], in In) (*Out, error) {
	ctx, r := o.start(ctx, def.Name)

	violations, err := shape.Validate(def.Input, in)
	if err != nil {
		return nil, r.fail(ctx, inputError(err))
	}

	if len(violations) > 0 {
		return nil, r.fail(ctx, models.NewInvalidInput(violations))
	}

	return execute(ctx, r, def, in)
}

// InvokeJSON runs one invocation from a raw JSON input document. The
// document is checked against the input shape before it is decoded.
func InvokeJSON[In, Out any](ctx context.Context, o *Orchestrator, def *Definition[In, Out], raw json.RawMessage) (*Out, error) {
	ctx, r := o.start(ctx, def.Name)

	in, err := decodeInput[In](def.Input, raw)
	if err != nil {
		return nil, r.fail(ctx, err)
	}

	return execute(ctx, r, def, *in)
}

// Render validates the input and renders the prompt without calling the backend.
func Render[In, Out any](def *Definition[In, Out], in In) (*models.RenderedPrompt, error) {
	violations, err := shape.Validate(def.Input, in)
	if err != nil {
		return nil, withFlow(def.Name, inputError(err))
	}

	if len(violations) > 0 {
		return nil, withFlow(def.Name, models.NewInvalidInput(violations))
	}

	prompt, flowErr := render(def, in)
	if flowErr != nil {
		return nil, withFlow(def.Name, flowErr)
	}

	return prompt, nil
}

func execute[In, Out any](ctx context.Context, r *run, def *Definition[In, Out], in In) (*Out, error) {
	r.advance(ctx, models.StateInputValidated)

	prompt, flowErr := render(def, in)
	if flowErr != nil {
		return nil, r.fail(ctx, flowErr)
	}

	r.advance(ctx, models.StatePromptRendered)

	if err := ctx.Err(); err != nil {
		return nil, r.fail(ctx, contextError(err))
	}

	req := def.request(prompt)

	resp, err := r.o.backend.Generate(ctx, req)
	r.inv.BackendCalls++

	if err != nil {
		return nil, r.fail(ctx, backendError(err))
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, r.fail(ctx, contextError(ctxErr))
	}

	if resp.Empty() {
		return nil, r.fail(ctx, models.NewGenerationFailed(models.ReasonEmptyResponse, "backend returned no content", nil))
	}

	r.advance(ctx, models.StateBackendInvoked)

	data, err := shape.Coerce(def.Output, req.Structured(), resp)
	if err != nil {
		return nil, r.fail(ctx, asFlowError(err, models.ErrorKindInvalidOutput))
	}

	out, err := shape.Decode[Out](data)
	if err != nil {
		return nil, r.fail(ctx, asFlowError(err, models.ErrorKindInvalidOutput))
	}

	r.advance(ctx, models.StateOutputValidated)

	if err := invariant.Run(def.Invariants, in, out); err != nil {
		return nil, r.fail(ctx, asFlowError(err, models.ErrorKindIncompleteOutput))
	}

	r.advance(ctx, models.StateInvariantsChecked)

	if committer, ok := r.o.backend.(protocol.Committer); ok {
		committer.Commit(ctx, req, resp)
	}

	r.succeed(ctx)

	return out, nil
}

func render[In, Out any](def *Definition[In, Out], in In) (*models.RenderedPrompt, *models.FlowError) {
	prompt, err := def.Template.Render(in)
	if err == nil {
		return prompt, nil
	}

	if errors.Is(err, template.ErrUnsupportedMediaURI) {
		return nil, models.NewInvalidInput([]models.Violation{{
			Field:   "media",
			Rule:    "media_uri",
			Message: err.Error(),
		}})
	}

	return nil, models.NewGenerationFailed(models.ReasonRender, "prompt rendering failed", err)
}

func decodeInput[In any](s *models.Shape, raw json.RawMessage) (*In, *models.FlowError) {
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}

	violations, err := shape.ValidateJSON(s, raw)
	if err != nil {
		return nil, inputError(err)
	}

	if len(violations) > 0 {
		return nil, models.NewInvalidInput(violations)
	}

	in := new(In)
	if err := json.Unmarshal(raw, in); err != nil {
		return nil, inputError(err)
	}

	return in, nil
}

func inputError(err error) *models.FlowError {
	flowErr := models.NewInvalidInput([]models.Violation{{
		Field:   "(root)",
		Rule:    "json",
		Message: err.Error(),
	}})
	flowErr.Err = err

	return flowErr
}

func contextError(err error) *models.FlowError {
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewGenerationFailed(models.ReasonTimeout, "deadline exceeded before the result was available", err)
	}

	return models.NewGenerationFailed(models.ReasonCancelled, "invocation cancelled", err)
}

// backendError classifies a backend failure. A backend may only report
// GenerationFailed or ContentFiltered; anything else becomes GenerationFailed.
func backendError(err error) *models.FlowError {
	if flowErr, ok := models.AsFlowError(err); ok {
		switch flowErr.Kind {
		case models.ErrorKindGenerationFailed, models.ErrorKindContentFiltered:
			return flowErr
		default:
			return models.NewGenerationFailed(models.ReasonBackend,
				fmt.Sprintf("backend reported %s: %s", flowErr.Kind, flowErr.Message), flowErr.Err)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return contextError(err)
	}

	return models.NewGenerationFailed(models.ReasonBackend, "backend call failed", err)
}

func asFlowError(err error, kind models.ErrorKind) *models.FlowError {
	if flowErr, ok := models.AsFlowError(err); ok {
		return flowErr
	}

	return &models.FlowError{Kind: kind, Message: err.Error(), Err: err}
}

func withFlow(name string, err *models.FlowError) error {
	failure := *err
	failure.Flow = name

	return &failure
}
