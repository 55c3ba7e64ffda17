package llm

import (
	"context"
	"errors"

	"dealflow-backend/internal/classify"
)

// Router picks a backend per request based on the document's sensitivity
// label. Classified content is served by a handle that holds no reference to
// the remote backend, so no code path can leak it off-box.
type Router struct {
	local         Backend
	remote        Backend
	localFallback bool
}

// NewRouter builds a router. Either backend may be nil when not configured.
// localFallback controls whether unclassified traffic may fall back to the
// local backend when the remote one is unavailable.
func NewRouter(local, remote Backend, localFallback bool) *Router {
	return &Router{local: local, remote: remote, localFallback: localFallback}
}

// Route returns the backend handle for the given label. For classified
// content the handle wraps only the local backend; if none is configured
// every call reports ErrLocalBackendUnavailable.
func (r *Router) Route(label classify.Label) Backend {
	if label == classify.LabelClassified {
		return &localOnly{backend: r.local}
	}
	if r.remote == nil {
		return &localOnly{backend: r.local}
	}
	if r.localFallback && r.local != nil {
		return &failover{primary: r.remote, secondary: r.local}
	}
	return r.remote
}

// localOnly serves classified content. It carries no remote reference.
type localOnly struct {
	backend Backend
}

func (l *localOnly) Name() string {
	if l.backend == nil {
		return "local"
	}
	return l.backend.Name()
}

func (l *localOnly) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if l.backend == nil {
		return "", ErrLocalBackendUnavailable
	}
	out, err := l.backend.Complete(ctx, prompt, maxTokens)
	if err != nil {
		if kind, ok := KindOf(err); ok && kind == KindUnavailable {
			return "", errors.Join(ErrLocalBackendUnavailable, err)
		}
		return "", err
	}
	return out, nil
}

// failover tries the remote backend first and falls back to the local one
// only when the remote is unreachable. Timeouts and rate limits stay with
// the primary so the retry policy can back off instead of shifting load.
type failover struct {
	primary   Backend
	secondary Backend
}

func (f *failover) Name() string { return f.primary.Name() }

func (f *failover) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	out, err := f.primary.Complete(ctx, prompt, maxTokens)
	if err == nil {
		return out, nil
	}
	if kind, ok := KindOf(err); ok && kind == KindUnavailable {
		return f.secondary.Complete(ctx, prompt, maxTokens)
	}
	return "", err
}
