package service

import (
	"context"
	"sync"

	"copyflow-be/pkg/events"
	"copyflow-be/pkg/gateway"
)

type fakeGateway struct {
	mu sync.Mutex

	copy       gateway.Copy
	design     gateway.Design
	comparison gateway.Comparison
	err        error
	// block makes calls wait for ctx cancellation.
	block bool

	copyReqs   []gateway.CopyRequest
	designReqs []gateway.DesignRequest
	compared   [][2]gateway.Document
}

func (g *fakeGateway) wait(ctx context.Context) error {
	if g.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return g.err
}

func (g *fakeGateway) GenerateCopy(ctx context.Context, req gateway.CopyRequest) (gateway.Copy, error) {
	g.mu.Lock()
	g.copyReqs = append(g.copyReqs, req)
	g.mu.Unlock()
	if err := g.wait(ctx); err != nil {
		return gateway.Copy{}, err
	}
	return g.copy, nil
}

func (g *fakeGateway) GenerateDesign(ctx context.Context, req gateway.DesignRequest) (gateway.Design, error) {
	g.mu.Lock()
	g.designReqs = append(g.designReqs, req)
	g.mu.Unlock()
	if err := g.wait(ctx); err != nil {
		return gateway.Design{}, err
	}
	return g.design, nil
}

func (g *fakeGateway) CompareFiles(ctx context.Context, a, b gateway.Document) (gateway.Comparison, error) {
	g.mu.Lock()
	g.compared = append(g.compared, [2]gateway.Document{a, b})
	g.mu.Unlock()
	if err := g.wait(ctx); err != nil {
		return gateway.Comparison{}, err
	}
	return g.comparison, nil
}

func (g *fakeGateway) CompareContent(ctx context.Context, _ gateway.ContentComparison) (gateway.Comparison, error) {
	if err := g.wait(ctx); err != nil {
		return gateway.Comparison{}, err
	}
	return g.comparison, nil
}

func (g *fakeGateway) GenerateFromComparison(ctx context.Context, a, b gateway.Document) (gateway.Copy, error) {
	g.mu.Lock()
	g.compared = append(g.compared, [2]gateway.Document{a, b})
	g.mu.Unlock()
	if err := g.wait(ctx); err != nil {
		return gateway.Copy{}, err
	}
	return g.copy, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.StageEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event events.StageEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}
