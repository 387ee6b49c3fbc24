package usecase

import "context"

type HealthUsecase interface {
	Check(ctx context.Context) (map[string]string, bool)
}

// Pinger is anything whose reachability belongs in the health report.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type healthUsecase struct {
	checks map[string]Pinger
}

// NewHealthUsecase reports on every named dependency. Only "store" decides
// overall health; the others are informational.
func NewHealthUsecase(checks map[string]Pinger) HealthUsecase {
	return &healthUsecase{checks: checks}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	report := map[string]string{"status": "ok"}
	healthy := true
	for name, p := range u.checks {
		if err := p.Ping(ctx); err != nil {
			report[name] = "unavailable"
			if name == "store" {
				healthy = false
				report["status"] = "degraded"
			}
			continue
		}
		report[name] = "ok"
	}
	return report, healthy
}
