package extract

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tablewave/reserve-server/internal/model"
)

// ErrExhausted indicates every backend in the fallback chain failed. The
// returned error wraps the last backend's failure.
var ErrExhausted = eris.New("extract: all model backends failed")

// Pipeline turns a Google Maps URL into a normalized shop candidate by
// walking an ordered chain of model backends, cheapest first.
type Pipeline struct {
	resolver *Resolver
	backends []Backend
}

// NewPipeline builds a pipeline over the given backend chain. Order matters:
// backends are tried front to back.
func NewPipeline(resolver *Resolver, backends []Backend) *Pipeline {
	return &Pipeline{resolver: resolver, backends: backends}
}

// Extract resolves mapURL and runs the backend chain until one produces
// parseable output. A backend failure, transport or parse, advances the
// chain; exhaustion returns ErrExhausted wrapping the last failure.
func (p *Pipeline) Extract(ctx context.Context, mapURL string) (*model.ShopCandidate, error) {
	resolved := p.resolver.Resolve(ctx, mapURL)
	prompt := fmt.Sprintf(shopPromptTemplate, resolved)

	var lastErr error
	for _, backend := range p.backends {
		raw, err := backend.Generate(ctx, prompt)
		if err != nil {
			lastErr = err
			zap.L().Warn("extract: backend failed, advancing chain",
				zap.String("backend", backend.Name()),
				zap.Error(err))
			continue
		}

		shop, err := parseShop(raw)
		if err != nil {
			lastErr = err
			zap.L().Warn("extract: backend output unparseable, advancing chain",
				zap.String("backend", backend.Name()),
				zap.Error(err))
			continue
		}

		candidate := sanitizeShop(shop)
		zap.L().Info("extract: shop extracted",
			zap.String("backend", backend.Name()),
			zap.String("name", candidate.Name))
		return &candidate, nil
	}

	if lastErr == nil {
		lastErr = eris.New("no backends configured")
	}
	return nil, eris.Wrap(ErrExhausted, lastErr.Error())
}
