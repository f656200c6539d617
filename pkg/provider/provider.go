package provider

import (
	"time"

	"github.com/dmitrymomot/notifykit"
)

// HealthStatus represents a provider's operational state as reported by
// health checks.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthDown     HealthStatus = "down"
)

// Limits bounds how many sends a provider accepts per period.
// A zero limit means unlimited.
type Limits struct {
	PerMinute int `json:"per_minute,omitempty"`
	Daily     int `json:"daily,omitempty"`
	Monthly   int `json:"monthly,omitempty"`
}

// Usage tracks running send counters per period. Counters reset lazily when
// the respective period boundary rolls over.
type Usage struct {
	Minute      int       `json:"minute"`
	Day         int       `json:"day"`
	Month       int       `json:"month"`
	MinuteStart time.Time `json:"minute_start"`
	DayStart    time.Time `json:"day_start"`
	MonthStart  time.Time `json:"month_start"`
}

// Provider is the configuration and live state of one external delivery
// service bound to a single channel.
type Provider struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Channel           notifykit.Channel `json:"channel"`
	Active            bool              `json:"active"`
	Primary           bool              `json:"primary"`
	Limits            Limits            `json:"limits"`
	Usage             Usage             `json:"usage"`
	Health            HealthStatus      `json:"health"`
	LastHealthCheckAt time.Time         `json:"last_health_check_at,omitempty"`
}

// Available reports whether the provider can accept a send right now:
// active, healthy and under every configured limit.
func (p *Provider) Available(now time.Time) bool {
	if !p.Active || p.Health != HealthHealthy {
		return false
	}
	usage := p.Usage.rolled(now)
	if p.Limits.PerMinute > 0 && usage.Minute >= p.Limits.PerMinute {
		return false
	}
	if p.Limits.Daily > 0 && usage.Day >= p.Limits.Daily {
		return false
	}
	if p.Limits.Monthly > 0 && usage.Month >= p.Limits.Monthly {
		return false
	}
	return true
}

// rolled returns the usage with any elapsed periods reset to zero.
func (u Usage) rolled(now time.Time) Usage {
	if now.Sub(u.MinuteStart) >= time.Minute {
		u.Minute = 0
		u.MinuteStart = now.Truncate(time.Minute)
	}
	if u.DayStart.IsZero() || now.YearDay() != u.DayStart.YearDay() || now.Year() != u.DayStart.Year() {
		u.Day = 0
		u.DayStart = now
	}
	if u.MonthStart.IsZero() || now.Month() != u.MonthStart.Month() || now.Year() != u.MonthStart.Year() {
		u.Month = 0
		u.MonthStart = now
	}
	return u
}
