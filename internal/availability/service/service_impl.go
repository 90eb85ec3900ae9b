package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/chairbook/chairbook/internal/availability/domain"
	"github.com/chairbook/chairbook/pkg/db"
)

type service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(log *zap.Logger, repo domain.Repository, genID *snowflake.Node) domain.Service {
	return &service{
		log:   log.Named("availability.service"),
		repo:  repo,
		genID: genID,
	}
}

func (s *service) GetWeek(ctx context.Context, tenantID, staffID snowflake.ID, date string) (*domain.WeeklyTemplate, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	return s.materializeWeek(ctx, tenantID, staffID, day)
}

// materializeWeek is insert-or-get: first touch writes the default pattern,
// a concurrent first touch loses on the unique index and reads the winner.
func (s *service) materializeWeek(ctx context.Context, tenantID, staffID snowflake.ID, day time.Time) (*domain.WeeklyTemplate, error) {
	weekStart := domain.WeekStartFor(day)

	existing, err := s.repo.Find(ctx, tenantID, staffID, weekStart)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrTemplateNotFound) {
		return nil, err
	}

	t := &domain.WeeklyTemplate{
		ID:        s.genID.Generate(),
		TenantID:  tenantID,
		StaffID:   staffID,
		WeekStart: weekStart,
		WeekEnd:   domain.WeekEndFor(day),
	}
	if err := t.SetPattern(domain.DefaultWeekPattern()); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, t); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return s.repo.Find(ctx, tenantID, staffID, weekStart)
		}
		return nil, err
	}
	s.log.Info("weekly template materialized",
		zap.Int64("tenant_id", tenantID.Int64()),
		zap.String("week_start", weekStart),
	)
	return t, nil
}

func (s *service) SlotsFor(ctx context.Context, tenantID, staffID snowflake.ID, date string) ([]string, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, err
	}

	// A staff override only applies when it was explicitly written; reading
	// never materializes a per-staff week.
	var tpl *domain.WeeklyTemplate
	if staffID != 0 {
		tpl, err = s.repo.Find(ctx, tenantID, staffID, domain.WeekStartFor(day))
		if err != nil && !errors.Is(err, domain.ErrTemplateNotFound) {
			return nil, err
		}
	}
	if tpl == nil {
		tpl, err = s.materializeWeek(ctx, tenantID, 0, day)
		if err != nil {
			return nil, err
		}
	}

	pattern, err := tpl.Pattern()
	if err != nil {
		return nil, err
	}
	schedule, ok := pattern[domain.DayNameFor(day)]
	if !ok || !schedule.Active {
		return []string{}, nil
	}
	return schedule.Slots, nil
}

func (s *service) SetDay(ctx context.Context, tenantID, staffID snowflake.ID, date string, day domain.DaySchedule) (*domain.WeeklyTemplate, error) {
	parsed, err := parseDate(date)
	if err != nil {
		return nil, err
	}
	slots, err := normalizeSlots(day.Slots)
	if err != nil {
		return nil, err
	}

	tpl, err := s.materializeWeek(ctx, tenantID, staffID, parsed)
	if err != nil {
		return nil, err
	}
	pattern, err := tpl.Pattern()
	if err != nil {
		return nil, err
	}
	pattern[domain.DayNameFor(parsed)] = domain.DaySchedule{Active: day.Active, Slots: slots}
	if err := tpl.SetPattern(pattern); err != nil {
		return nil, err
	}
	tpl.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *service) SetWeek(ctx context.Context, tenantID, staffID snowflake.ID, weekStart string, pattern domain.WeekPattern) (*domain.WeeklyTemplate, error) {
	parsed, err := parseDate(weekStart)
	if err != nil {
		return nil, err
	}
	if domain.WeekStartFor(parsed) != weekStart {
		return nil, domain.ErrNotWeekStart
	}

	normalized := make(domain.WeekPattern, len(domain.DayNames))
	known := make(map[string]bool, len(domain.DayNames))
	for _, name := range domain.DayNames {
		known[name] = true
		normalized[name] = domain.DaySchedule{Active: false, Slots: []string{}}
	}
	for name, day := range pattern {
		if !known[name] {
			return nil, domain.ErrUnknownDay
		}
		slots, err := normalizeSlots(day.Slots)
		if err != nil {
			return nil, err
		}
		normalized[name] = domain.DaySchedule{Active: day.Active, Slots: slots}
	}

	tpl, err := s.materializeWeek(ctx, tenantID, staffID, parsed)
	if err != nil {
		return nil, err
	}
	if err := tpl.SetPattern(normalized); err != nil {
		return nil, err
	}
	tpl.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func parseDate(date string) (time.Time, error) {
	parsed, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return time.Time{}, domain.ErrInvalidDate
	}
	return parsed, nil
}

// normalizeSlots enforces zero-padded HH:MM, drops duplicates and sorts.
func normalizeSlots(slots []string) ([]string, error) {
	seen := make(map[string]bool, len(slots))
	out := make([]string, 0, len(slots))
	for _, raw := range slots {
		parsed, err := time.Parse(domain.TimeLayout, raw)
		if err != nil || parsed.Format(domain.TimeLayout) != raw {
			return nil, domain.ErrInvalidTimeSlot
		}
		if seen[raw] {
			continue
		}
		seen[raw] = true
		out = append(out, raw)
	}
	sort.Strings(out)
	return out, nil
}
