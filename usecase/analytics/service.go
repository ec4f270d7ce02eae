package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/digiplanner/backend/domain"
	"github.com/digiplanner/backend/usecase"
)

// Service serves reporting views, preferring server-computed aggregates when
// an upstream backend is reachable and computing locally otherwise. Both
// paths produce identical shapes.
type Service struct {
	gw     usecase.Gateway
	logger *zap.Logger
	now    func() time.Time
}

func New(gw usecase.Gateway, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		gw:     gw,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock substitutes the time source, mainly for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Service) CategoryBreakdown(ctx context.Context) []domain.CategoryBreakdown {
	if breakdown, ok := s.gw.RemoteCategoryBreakdown(ctx); ok {
		return breakdown
	}
	return CategoryBreakdown(s.gw.LoadTasks(ctx))
}

func (s *Service) PriorityBreakdown(ctx context.Context) []domain.PriorityBreakdown {
	if breakdown, ok := s.gw.RemotePriorityBreakdown(ctx); ok {
		return breakdown
	}
	return PriorityBreakdown(s.gw.LoadTasks(ctx))
}

func (s *Service) CompletionTrend(ctx context.Context, windowDays int) []domain.TrendPoint {
	if windowDays <= 0 || windowDays == 30 {
		if trends, ok := s.gw.RemoteCompletionTrends(ctx); ok {
			return trends
		}
	}
	return CompletionTrend(s.gw.LoadTasks(ctx), windowDays, s.now())
}

func (s *Service) WeeklyCompletionRate(ctx context.Context, weeks int) []domain.WeekRate {
	return WeeklyCompletionRate(s.gw.LoadTasks(ctx), weeks, s.now())
}

func (s *Service) AverageCompletionDays(ctx context.Context) int {
	return AverageCompletionDays(s.gw.LoadTasks(ctx))
}
