package gateway

import (
	"context"
	"copyflow-be/internal/pkg/logger"
)

const logModule = "GATEWAY"

// Resilient calls the primary gateway once and substitutes a fallback result
// on any failure. Cancelled calls return the context error instead.
type Resilient struct {
	primary  Gateway
	fallback *Fallback
	logger   logger.ILogger
}

var _ Gateway = &Resilient{}

// NewResilient wraps primary. A nil primary always answers with the fallback.
func NewResilient(primary Gateway, fallback *Fallback, log logger.ILogger) *Resilient {
	if fallback == nil {
		fallback = NewFallback(nil)
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Resilient{primary: primary, fallback: fallback, logger: log}
}

func (r *Resilient) degrade(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	details := map[string]interface{}{"operation": op}
	if err != nil {
		details["error"] = err.Error()
	}
	r.logger.Warn(logModule, "gateway unavailable, using fallback", details)
	return nil
}

func (r *Resilient) GenerateCopy(ctx context.Context, req CopyRequest) (Copy, error) {
	var err error
	if r.primary != nil {
		var out Copy
		if out, err = r.primary.GenerateCopy(ctx, req); err == nil {
			return out, nil
		}
	}
	if cerr := r.degrade(ctx, "generate_copy", err); cerr != nil {
		return Copy{}, cerr
	}
	return r.fallback.Copy(req.FileName, req.Briefing), nil
}

func (r *Resilient) GenerateDesign(ctx context.Context, req DesignRequest) (Design, error) {
	var err error
	if r.primary != nil {
		var out Design
		if out, err = r.primary.GenerateDesign(ctx, req); err == nil {
			if out.Metrics == nil {
				m := r.fallback.Metrics()
				out.Metrics = &m
			}
			return out, nil
		}
	}
	if cerr := r.degrade(ctx, "generate_design", err); cerr != nil {
		return Design{}, cerr
	}
	return r.fallback.Design(req.Copy, req.Template, req.Language), nil
}

func (r *Resilient) CompareFiles(ctx context.Context, a, b Document) (Comparison, error) {
	var err error
	if r.primary != nil {
		var out Comparison
		if out, err = r.primary.CompareFiles(ctx, a, b); err == nil {
			return out, nil
		}
	}
	if cerr := r.degrade(ctx, "compare_files", err); cerr != nil {
		return Comparison{}, cerr
	}
	return r.fallback.Comparison(a, b), nil
}

func (r *Resilient) CompareContent(ctx context.Context, req ContentComparison) (Comparison, error) {
	var err error
	if r.primary != nil {
		var out Comparison
		if out, err = r.primary.CompareContent(ctx, req); err == nil {
			return out, nil
		}
	}
	if cerr := r.degrade(ctx, "compare_content", err); cerr != nil {
		return Comparison{}, cerr
	}
	return r.fallback.ContentComparison(req), nil
}

func (r *Resilient) GenerateFromComparison(ctx context.Context, a, b Document) (Copy, error) {
	var err error
	if r.primary != nil {
		var out Copy
		if out, err = r.primary.GenerateFromComparison(ctx, a, b); err == nil {
			return out, nil
		}
	}
	if cerr := r.degrade(ctx, "generate_from_comparison", err); cerr != nil {
		return Copy{}, cerr
	}
	return r.fallback.FromComparison(a, b), nil
}
