package scheduling

import "fmt"

// SlotGranularityMinutes is the fixed width of every bookable slot.
const SlotGranularityMinutes = 15

// Slots generates the ordered sequence of candidate slots inside a working
// window. The first slot starts exactly at start; a trailing partial slot
// that would cross end is dropped. Day-of-week filtering is not this
// function's concern.
func Slots(start, end string) []TimeSlot {
	startMin, ok := parseTimeOfDay(start)
	if !ok {
		return nil
	}
	endMin, ok := parseTimeOfDay(end)
	if !ok {
		return nil
	}

	var slots []TimeSlot
	for cur := startMin; cur+SlotGranularityMinutes <= endMin; cur += SlotGranularityMinutes {
		slots = append(slots, TimeSlot{
			Start: formatTimeOfDay(cur),
			End:   formatTimeOfDay(cur + SlotGranularityMinutes),
		})
	}
	return slots
}

// parseTimeOfDay converts a zero-padded HH:MM string to minutes since
// midnight. Returns false on malformed input.
func parseTimeOfDay(s string) (int, bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, false
	}
	var h, m int
	if _, err := fmt.Sscanf(s, "%02d:%02d", &h, &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func formatTimeOfDay(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AlignsToGrid reports whether the slot matches the fixed granularity grid
// anchored at the working window start.
func AlignsToGrid(slot TimeSlot, windowStart string) bool {
	slotStart, ok := parseTimeOfDay(slot.Start)
	if !ok {
		return false
	}
	slotEnd, ok := parseTimeOfDay(slot.End)
	if !ok {
		return false
	}
	anchor, ok := parseTimeOfDay(windowStart)
	if !ok {
		return false
	}
	if slotEnd-slotStart != SlotGranularityMinutes {
		return false
	}
	return (slotStart-anchor)%SlotGranularityMinutes == 0 && slotStart >= anchor
}
