package ai

import (
	"context"
	"log/slog"
	"time"

	"github.com/abdulachik/cinetrivia/internal/metrics"
)

// Observer is notified after every provider call.
type Observer func(operation string, err error)

// instrumented records metrics and logs around another provider.
type instrumented struct {
	next      Provider
	observers []Observer
}

// Instrument wraps p so that every call is timed, counted and passed to observers.
func Instrument(p Provider, observers ...Observer) Provider {
	if in, ok := p.(*instrumented); ok {
		in.observers = append(in.observers, observers...)
		return in
	}
	return &instrumented{next: p, observers: observers}
}

// Observe registers an observer on a provider built by Instrument. It reports
// false for providers that are not instrumented.
func Observe(p Provider, o Observer) bool {
	in, ok := p.(*instrumented)
	if ok {
		in.observers = append(in.observers, o)
	}
	return ok
}

func (i *instrumented) Name() string { return i.next.Name() }

func (i *instrumented) Recommend(ctx context.Context, in RecommendInput) (*Recommendation, error) {
	start := time.Now()
	rec, err := i.next.Recommend(ctx, in)
	i.record(OpRecommend, start, err, "phrase", in.MoodOrGenre)
	return rec, err
}

func (i *instrumented) FunFact(ctx context.Context, in FunFactInput) (*FunFact, error) {
	start := time.Now()
	fact, err := i.next.FunFact(ctx, in)
	i.record(OpFunFact, start, err, "movie", in.MovieTitle)
	return fact, err
}

func (i *instrumented) GeneratePoster(ctx context.Context, in PosterInput) (*Poster, error) {
	start := time.Now()
	poster, err := i.next.GeneratePoster(ctx, in)
	i.record(OpPoster, start, err, "movie", in.Title)
	return poster, err
}

func (i *instrumented) record(op string, start time.Time, err error, key, value string) {
	elapsed := time.Since(start)
	metrics.RecordAIRequest(op, i.next.Name(), elapsed, err)

	if err != nil {
		slog.Warn("ai request failed", "operation", op, "provider", i.next.Name(), key, value, "duration", elapsed, "error", err)
	} else {
		slog.Debug("ai request completed", "operation", op, "provider", i.next.Name(), key, value, "duration", elapsed)
	}

	for _, o := range i.observers {
		o(op, err)
	}
}
