package model

import "time"

// Colors is the fixed palette a project color may be drawn from.
var Colors = []string{
	"Pink",
	"Purple",
	"Red",
	"Orange",
	"Gold",
	"Green",
	"Teal",
	"Light Blue",
	"Dark Blue",
	"Midnight",
	"Dark Gray",
	"Gray",
}

// DefaultColor is used when a project has no color or an unknown one.
const DefaultColor = "Light Blue"

// Project represents a collection of items
type Project struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Detail          string     `json:"detail"`
	Color           string     `json:"color"`
	Closed          bool       `json:"closed"`
	CreatedAt       time.Time  `json:"created_at"`
	ReminderEnabled bool       `json:"reminder_enabled"`
	ReminderTime    *time.Time `json:"reminder_time,omitempty"`
}

// DisplayTitle returns the title, falling back to a placeholder for
// projects saved without one.
func (p *Project) DisplayTitle() string {
	if p.Title == "" {
		return "New Project"
	}
	return p.Title
}

// DisplayColor resolves an empty or unknown color tag to DefaultColor.
func (p *Project) DisplayColor() string {
	if ValidColor(p.Color) {
		return p.Color
	}
	return DefaultColor
}

// ValidColor reports whether tag is part of the palette.
func ValidColor(tag string) bool {
	for _, c := range Colors {
		if tag == c {
			return true
		}
	}
	return false
}

// CompletionAmount returns the fraction of items that are completed,
// or 0 for an empty item list.
func CompletionAmount(items []Item) float64 {
	if len(items) == 0 {
		return 0
	}
	completed := 0
	for _, it := range items {
		if it.Completed {
			completed++
		}
	}
	return float64(completed) / float64(len(items))
}
