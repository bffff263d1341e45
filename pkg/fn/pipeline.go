package fn

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// Stage is a function that transforms In to Out within a context.
type Stage[In, Out any] func(context.Context, In) Result[Out]

// Then composes two stages, short-circuiting on error. Each stage runs in
// its own child span.
func Then[A, B, C any](name string, first Stage[A, B], second Stage[B, C]) Stage[A, C] {
	tracer := otel.Tracer("pkg/fn")
	return func(ctx context.Context, a A) Result[C] {
		ctx1, span1 := tracer.Start(ctx, name+".first")
		r := first(ctx1, a)
		if _, err := r.Unwrap(); err != nil {
			span1.SetStatus(codes.Error, err.Error())
			span1.End()
			return Err[C](err)
		}
		span1.End()

		ctx2, span2 := tracer.Start(ctx, name+".second")
		defer span2.End()
		v, _ := r.Unwrap()
		out := second(ctx2, v)
		if _, err := out.Unwrap(); err != nil {
			span2.SetStatus(codes.Error, err.Error())
		}
		return out
	}
}

// MapStage lifts a pure function into a Stage.
func MapStage[In, Out any](f func(In) Out) Stage[In, Out] {
	return func(_ context.Context, in In) Result[Out] {
		return Ok(f(in))
	}
}
