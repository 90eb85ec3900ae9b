// Package domain contains the weekly availability template models.
package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// DaySchedule is the opening state of a single weekday.
type DaySchedule struct {
	Active bool     `json:"active"`
	Slots  []string `json:"slots"`
}

// WeekPattern maps lowercase English day names ("monday".."sunday") to their
// schedules. Every template carries all seven days.
type WeekPattern map[string]DaySchedule

// DayNames lists the week in template order, Monday first.
var DayNames = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// DefaultSlots is the opening grid a fresh week starts from: three morning
// and three afternoon timeslots.
var DefaultSlots = []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00"}

// DefaultWeekPattern returns the pattern applied when a week is first
// touched: weekdays open on the default grid, weekend closed.
func DefaultWeekPattern() WeekPattern {
	p := make(WeekPattern, len(DayNames))
	for i, name := range DayNames {
		day := DaySchedule{Active: i < 5}
		if day.Active {
			day.Slots = append([]string(nil), DefaultSlots...)
		} else {
			day.Slots = []string{}
		}
		p[name] = day
	}
	return p
}

// WeeklyTemplate is the persisted opening schedule for one tenant week.
// StaffID zero means the tenant-wide template; a non-zero value overrides it
// for that staff member. WeekStart is always a Monday in "2006-01-02" form.
type WeeklyTemplate struct {
	ID        snowflake.ID   `gorm:"primaryKey" json:"id"`
	TenantID  snowflake.ID   `gorm:"not null;uniqueIndex:ux_templates_tenant_staff_week,priority:1" json:"tenant_id"`
	StaffID   snowflake.ID   `gorm:"not null;default:0;uniqueIndex:ux_templates_tenant_staff_week,priority:2" json:"staff_id"`
	WeekStart string         `gorm:"type:text;not null;uniqueIndex:ux_templates_tenant_staff_week,priority:3" json:"week_start"`
	WeekEnd   string         `gorm:"type:text;not null" json:"week_end"`
	Days      datatypes.JSON `gorm:"type:jsonb;not null" json:"days"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (WeeklyTemplate) TableName() string { return "weekly_templates" }

// Pattern decodes the stored days column.
func (t *WeeklyTemplate) Pattern() (WeekPattern, error) {
	var p WeekPattern
	if err := json.Unmarshal(t.Days, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetPattern encodes and stores the days column.
func (t *WeeklyTemplate) SetPattern(p WeekPattern) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	t.Days = datatypes.JSON(raw)
	return nil
}

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// TimeLayout is the wire and storage format for times of day.
const TimeLayout = "15:04"

// WeekStartFor returns the Monday of the week containing date, in DateLayout.
func WeekStartFor(date time.Time) string {
	offset := (int(date.Weekday()) + 6) % 7
	return date.AddDate(0, 0, -offset).Format(DateLayout)
}

// WeekEndFor returns the Sunday of the week containing date, in DateLayout.
func WeekEndFor(date time.Time) string {
	offset := (int(date.Weekday()) + 6) % 7
	return date.AddDate(0, 0, 6-offset).Format(DateLayout)
}

// DayNameFor returns the pattern key for a date.
func DayNameFor(date time.Time) string {
	return DayNames[(int(date.Weekday())+6)%7]
}
