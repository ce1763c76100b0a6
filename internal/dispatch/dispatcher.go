// Package dispatch implements the task dispatcher: it routes validated
// task requests to the generation backend, short-circuits idempotent
// summary tasks through a TTL cache, coalesces concurrent duplicate
// summary requests into a single backend call, and normalizes the
// backend's heterogeneous response shapes into the tagged TaskResult.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"studyhall/internal/domain"
	"studyhall/internal/generation"
)

// Default dispatcher settings.
const (
	DefaultTimeout         = 30 * time.Second
	DefaultCacheTTL        = 1 * time.Hour
	defaultCachePurgeEvery = 10 * time.Minute
)

// Option customizes dispatcher behavior.
type Option func(*Dispatcher)

// WithTimeout sets the deadline applied to each backend call when the
// caller's context does not already carry one.
func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) { disp.timeout = d }
}

// WithCacheTTL sets how long a resolved summary stays cached per subject.
func WithCacheTTL(ttl time.Duration) Option {
	return func(disp *Dispatcher) {
		disp.summaries = cache.New(ttl, defaultCachePurgeEvery)
	}
}

// Dispatcher routes task requests to a generation backend. It is safe
// for concurrent use. Only the summary cache is shared state across
// in-flight requests; everything else is per-call.
type Dispatcher struct {
	generator generation.Generator
	summaries *cache.Cache
	group     singleflight.Group
	timeout   time.Duration
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher over the given backend.
func NewDispatcher(generator generation.Generator, logger *slog.Logger, opts ...Option) *Dispatcher {
	if generator == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("generator cannot be nil for Dispatcher")
	}
	if logger == nil {
		logger = slog.Default()
	}

	dispatcher := &Dispatcher{
		generator: generator,
		summaries: cache.New(DefaultCacheTTL, defaultCachePurgeEvery),
		timeout:   DefaultTimeout,
		logger:    logger.With(slog.String("component", "dispatcher")),
	}

	for _, opt := range opts {
		opt(dispatcher)
	}

	return dispatcher
}

// Dispatch resolves a task request into a result. Malformed requests
// fail with an error wrapping domain.ErrValidation; backend failures,
// timeouts and malformed responses fail with errors wrapping
// generation.ErrGenerationFailed. No retry is performed here; the only
// recovery path is the caller re-issuing the action.
func (d *Dispatcher) Dispatch(ctx context.Context, req domain.TaskRequest) (domain.TaskResult, error) {
	if err := req.Validate(); err != nil {
		return domain.TaskResult{}, err
	}

	if req.Kind.Idempotent() {
		return d.dispatchCached(ctx, req)
	}

	return d.callBackend(ctx, req)
}

// InvalidateSummary drops the cached summary for a subject, forcing the
// next summary dispatch to contact the backend.
func (d *Dispatcher) InvalidateSummary(subjectID string) {
	d.summaries.Delete(subjectID)
}

// dispatchCached serves idempotent tasks through the summary cache,
// coalescing concurrent duplicates for the same subject into one
// backend call via singleflight.
func (d *Dispatcher) dispatchCached(ctx context.Context, req domain.TaskRequest) (domain.TaskResult, error) {
	if hit, ok := d.summaries.Get(req.SubjectID); ok {
		d.logger.Debug("summary cache hit", slog.String("subject_id", req.SubjectID))
		return hit.(domain.TaskResult), nil
	}

	value, err, shared := d.group.Do(req.SubjectID, func() (interface{}, error) {
		// A concurrent flight may have populated the cache while this
		// call waited for the flight slot.
		if hit, ok := d.summaries.Get(req.SubjectID); ok {
			return hit.(domain.TaskResult), nil
		}

		// The flight serves every coalesced waiter, so it must not
		// inherit whichever caller's context happened to start it;
		// that caller's deadline would fail all waiters. Run under a
		// detached context with the dispatcher's own deadline.
		flightCtx := context.Background()
		if d.timeout > 0 {
			var cancel context.CancelFunc
			flightCtx, cancel = context.WithTimeout(flightCtx, d.timeout)
			defer cancel()
		}

		result, err := d.callBackend(flightCtx, req)
		if err != nil {
			return nil, err
		}

		d.summaries.Set(req.SubjectID, result, cache.DefaultExpiration)
		return result, nil
	})
	if err != nil {
		return domain.TaskResult{}, err
	}

	if shared {
		d.logger.Debug("summary request coalesced",
			slog.String("subject_id", req.SubjectID))
	}

	return value.(domain.TaskResult), nil
}

// callBackend issues one generation call under the configured deadline
// and normalizes its response.
func (d *Dispatcher) callBackend(ctx context.Context, req domain.TaskRequest) (domain.TaskResult, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	started := time.Now()
	response, err := d.generator.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = generation.ErrTimeout
		}
		d.logger.Warn("backend call failed",
			slog.String("subject_id", req.SubjectID),
			slog.String("kind", string(req.Kind)),
			slog.String("error", err.Error()))
		return domain.TaskResult{}, wrapGenerationError(err)
	}

	result, err := normalize(response)
	if err != nil {
		return domain.TaskResult{}, err
	}

	d.logger.Debug("backend call resolved",
		slog.String("subject_id", req.SubjectID),
		slog.String("kind", string(result.Kind)),
		slog.Duration("elapsed", time.Since(started)))
	return result, nil
}

// normalize maps the backend's one-of response shape onto the tagged
// TaskResult union. A response with no recognized key is malformed.
func normalize(response *generation.Response) (domain.TaskResult, error) {
	switch {
	case response == nil || response.Empty():
		return domain.TaskResult{}, wrapGenerationError(
			fmt.Errorf("%w: no recognized key in response", generation.ErrMalformedResponse))
	case response.Summary != nil:
		return domain.TaskResult{Kind: domain.TaskKindSummary, Text: *response.Summary}, nil
	case response.MindMap != nil:
		return domain.TaskResult{Kind: domain.TaskKindMindMap, Text: *response.MindMap}, nil
	case response.RoadMap != nil:
		return domain.TaskResult{Kind: domain.TaskKindRoadMap, Text: *response.RoadMap}, nil
	default:
		return domain.TaskResult{Kind: domain.TaskKindQuestionAnswer, Text: *response.Answer}, nil
	}
}

// wrapGenerationError tags an error as part of the recoverable
// generation-failure family unless it already is.
func wrapGenerationError(err error) error {
	if errors.Is(err, generation.ErrGenerationFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", generation.ErrGenerationFailed, err)
}
