package service

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"github.com/noah-isme/uniportal/internal/models"
	"github.com/noah-isme/uniportal/internal/normalize"
	appErrors "github.com/noah-isme/uniportal/pkg/errors"
)

// Strategy names reported in logs and metrics.
const (
	StrategyResolveEndpoint = "resolve_endpoint"
	StrategyListing         = "listing"
	StrategyCurrentMonth    = "current_month"
)

// Criteria identifies the window a caller is looking for. An invalid
// SemesterID matches any semester.
type Criteria struct {
	SemesterID   null.Int64
	ScheduleType models.ScheduleType
}

// Strategy fetches candidate windows for the criteria. A not-found error hands
// resolution to the next strategy; any other error aborts it.
type Strategy struct {
	Name  string
	Fetch func(ctx context.Context, c Criteria) ([]models.ScheduleWindow, error)
}

// ScheduleResolver finds the single applicable window for an action type.
type ScheduleResolver struct {
	strategies []Strategy
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewScheduleResolver wires the default strategy chain against the portal API.
func NewScheduleResolver(api portalClient, metrics *MetricsService, logger *zap.Logger) *ScheduleResolver {
	return NewScheduleResolverWithStrategies(DefaultStrategies(api, time.Now), metrics, logger)
}

// NewScheduleResolverWithStrategies builds a resolver over an explicit chain.
func NewScheduleResolverWithStrategies(strategies []Strategy, metrics *MetricsService, logger *zap.Logger) *ScheduleResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleResolver{strategies: strategies, metrics: metrics, logger: logger}
}

// DefaultStrategies returns the resolve endpoint, the filtered listing and the
// current-month listing, in that order.
func DefaultStrategies(api portalClient, now func() time.Time) []Strategy {
	return []Strategy{
		{
			Name: StrategyResolveEndpoint,
			Fetch: func(ctx context.Context, c Criteria) ([]models.ScheduleWindow, error) {
				payload, err := api.Get(ctx, "/schedule/for", criteriaQuery(c))
				if err != nil {
					return nil, err
				}
				return windowsFrom(payload), nil
			},
		},
		{
			Name: StrategyListing,
			Fetch: func(ctx context.Context, c Criteria) ([]models.ScheduleWindow, error) {
				payload, err := api.Get(ctx, "/schedule", criteriaQuery(c))
				if err != nil {
					return nil, err
				}
				return normalize.Schedules(payload), nil
			},
		},
		{
			Name: StrategyCurrentMonth,
			Fetch: func(ctx context.Context, c Criteria) ([]models.ScheduleWindow, error) {
				query := url.Values{"month": {now().Format("2006-01")}}
				if c.SemesterID.Valid {
					query.Set("semesterId", strconv.FormatInt(c.SemesterID.Int64, 10))
				}
				payload, err := api.Get(ctx, "/schedule", query)
				if err != nil {
					return nil, err
				}
				return normalize.Schedules(payload), nil
			},
		},
	}
}

// Resolve returns the earliest-starting window matching the semester and type,
// or nil when no window is open. An empty scheduleType is rejected before any
// request is made. Non-numeric semester input matches any semester.
func (r *ScheduleResolver) Resolve(ctx context.Context, semesterID interface{}, scheduleType string) (*models.ScheduleWindow, error) {
	if strings.TrimSpace(scheduleType) == "" {
		return nil, appErrors.Clone(appErrors.ErrScheduleTypeNeeded, "")
	}
	t, _ := models.ParseScheduleType(scheduleType)
	criteria := Criteria{SemesterID: CoerceSemesterID(semesterID), ScheduleType: t}

	window, strategy, err := firstSuccess(ctx, criteria, r.strategies, r.metrics.RecordStrategyFailure)
	if err != nil {
		r.metrics.RecordResolutionFailure(strategy)
		r.logger.Warn("schedule resolution failed",
			zap.String("schedule_type", string(t)),
			zap.String("strategy", strategy),
			zap.Error(err),
		)
		return nil, err
	}
	r.metrics.RecordResolution(strategy)
	if window == nil {
		r.logger.Debug("no schedule window open", zap.String("schedule_type", string(t)))
		return nil, nil
	}
	r.logger.Debug("schedule window resolved",
		zap.String("schedule_type", string(t)),
		zap.String("schedule_id", window.ScheduleID),
		zap.String("strategy", strategy),
	)
	return window, nil
}

// firstSuccess runs strategies in order and stops at the first one whose
// filtered candidates are non-empty. onFailure, when set, sees every strategy
// error including the 404s that fall through. On a hard failure the failing
// strategy name is returned with the error.
func firstSuccess(ctx context.Context, c Criteria, strategies []Strategy, onFailure func(strategy string, notFound bool)) (*models.ScheduleWindow, string, error) {
	for _, s := range strategies {
		rows, err := s.Fetch(ctx, c)
		if err != nil {
			notFound := appErrors.IsNotFound(err)
			if onFailure != nil {
				onFailure(s.Name, notFound)
			}
			if notFound {
				continue
			}
			return nil, s.Name, err
		}
		if w := Earliest(FilterWindows(rows, c)); w != nil {
			return w, s.Name, nil
		}
	}
	return nil, "", nil
}

// FilterWindows keeps windows whose semester (when both sides carry one) and
// type match the criteria.
func FilterWindows(rows []models.ScheduleWindow, c Criteria) []models.ScheduleWindow {
	out := make([]models.ScheduleWindow, 0, len(rows))
	for _, w := range rows {
		if c.SemesterID.Valid && w.SemesterID.Valid && c.SemesterID.Int64 != w.SemesterID.Int64 {
			continue
		}
		if !c.ScheduleType.Matches(string(w.ScheduleType)) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// Earliest returns the window with the lexicographically smallest start date.
// Windows without a start date sort last; ties keep input order.
func Earliest(rows []models.ScheduleWindow) *models.ScheduleWindow {
	if len(rows) == 0 {
		return nil
	}
	sorted := make([]models.ScheduleWindow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].StartDate, sorted[j].StartDate
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.String < b.String
	})
	w := sorted[0]
	return &w
}

// CoerceSemesterID turns loose input into a semester identifier. Anything that
// is not a positive integer is treated as absent.
func CoerceSemesterID(v interface{}) null.Int64 {
	n, ok := normalize.Int64(v)
	if !ok || n <= 0 {
		return null.Int64{}
	}
	return null.Int64From(n)
}

func criteriaQuery(c Criteria) url.Values {
	query := url.Values{"scheduleType": {c.ScheduleType.Label()}}
	if c.SemesterID.Valid {
		query.Set("semesterId", strconv.FormatInt(c.SemesterID.Int64, 10))
	}
	return query
}

// windowsFrom accepts either a list payload or a single window object.
func windowsFrom(payload interface{}) []models.ScheduleWindow {
	if rows := normalize.Schedules(payload); len(rows) > 0 {
		return rows
	}
	if w, ok := normalize.Schedule(payload); ok {
		return []models.ScheduleWindow{w}
	}
	return nil
}
