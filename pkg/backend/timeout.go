// Package backend provides decorators around generation backends.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/protocol"
)

type timeoutBackend struct {
	next    protocol.Backend
	timeout time.Duration
}

// WithTimeout bounds every call to next. A call that runs out of its own
// budget fails with GenerationFailed(timeout); cancellation by the caller is
// returned unchanged. A non-positive timeout returns next as is.
func WithTimeout(next protocol.Backend, timeout time.Duration) protocol.Backend {
	if timeout <= 0 {
		return next
	}

	return &timeoutBackend{next: next, timeout: timeout}
}

type generation struct {
	resp *models.GenerationResponse
	err  error
}

// Generate returns when next answers or the budget runs out, whichever comes
// first. A late answer from a backend that ignores ctx is discarded.
func (b *timeoutBackend) Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	done := make(chan generation, 1)

	go func() {
		resp, err := b.next.Generate(callCtx, req)
		done <- generation{resp: resp, err: err}
	}()

	select {
	case result := <-done:
		if ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, b.timeoutError()
		}

		return result.resp, result.err
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, b.timeoutError()
	}
}

func (b *timeoutBackend) timeoutError() error {
	return models.NewGenerationFailed(
		models.ReasonTimeout,
		fmt.Sprintf("backend did not answer within %s", b.timeout),
		context.DeadlineExceeded,
	)
}
