// Package slots defines the bookable pickup window: one-hour slots between a
// configured start hour and end hour, addressed by their clock label
// (e.g. "8:00 AM", "1:00 PM").
package slots

import "time"

type Window struct {
	startHour int
	endHour   int
	labels    []string
	index     map[string]int
}

// NewWindow builds the slot set for [startHour, endHour] inclusive, hours in
// 24h clock. Out-of-range or inverted bounds fall back to 8..18.
func NewWindow(startHour, endHour int) *Window {
	if startHour < 0 || startHour > 23 || endHour < 0 || endHour > 23 || endHour <= startHour {
		startHour, endHour = 8, 18
	}

	w := &Window{
		startHour: startHour,
		endHour:   endHour,
		index:     make(map[string]int),
	}
	for h := startHour; h <= endHour; h++ {
		label := hourLabel(h)
		w.index[label] = len(w.labels)
		w.labels = append(w.labels, label)
	}
	return w
}

// Labels returns all slot labels in chronological order.
func (w *Window) Labels() []string {
	out := make([]string, len(w.labels))
	copy(out, w.labels)
	return out
}

// Contains reports whether label names a slot inside the window.
func (w *Window) Contains(label string) bool {
	_, ok := w.index[label]
	return ok
}

// Available returns the window's labels minus the booked set, preserving
// chronological order.
func (w *Window) Available(booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}

	var free []string
	for _, label := range w.labels {
		if _, ok := taken[label]; !ok {
			free = append(free, label)
		}
	}
	return free
}

func hourLabel(hour int) string {
	t := time.Date(2000, 1, 1, hour, 0, 0, 0, time.UTC)
	return t.Format("3:04 PM")
}
