package ledger

import (
	"strings"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
	"carpool/internal/utils"
)

// DefaultMaxRoutesPerDay caps how many routes one owner may publish for a travel date.
const DefaultMaxRoutesPerDay = 2

// Window is a half-open [Start, End) interval in minutes since midnight.
type Window struct {
	Start int
	End   int
}

func (w Window) Overlaps(o Window) bool {
	return w.Start < o.End && o.Start < w.End
}

// WindowOf parses the departure/arrival clocks of a route.
func WindowOf(r models.Route) (Window, error) {
	dep, err := utils.ParseClock(r.DepartureTime)
	if err != nil {
		return Window{}, domain.ValidationError{Field: "departure_time", Msg: err.Error()}
	}
	arr, err := utils.ParseClock(r.ArrivalTime)
	if err != nil {
		return Window{}, domain.ValidationError{Field: "arrival_time", Msg: err.Error()}
	}
	if arr <= dep {
		return Window{}, domain.ValidationError{Field: "arrival_time", Msg: "must be after departure_time"}
	}
	return Window{Start: dep, End: arr}, nil
}

// CheckSchedule validates a candidate route against the owner's other routes.
// existing may contain routes of other days or the candidate itself (when
// editing); both are ignored.
func CheckSchedule(existing []models.Route, candidate models.Route, maxPerDay int) error {
	win, err := WindowOf(candidate)
	if err != nil {
		return err
	}
	if maxPerDay <= 0 {
		maxPerDay = DefaultMaxRoutesPerDay
	}

	sameDay := 0
	for _, r := range existing {
		if candidate.ID != "" && r.ID == candidate.ID {
			continue
		}
		if !strings.EqualFold(r.OwnerEmail, candidate.OwnerEmail) || r.TravelDate != candidate.TravelDate {
			continue
		}
		sameDay++
		other, err := WindowOf(r)
		if err != nil {
			// stored routes with broken clocks cannot block new ones
			continue
		}
		if win.Overlaps(other) {
			return domain.ConflictError{
				Resource: "route",
				Msg:      domain.ErrRouteOverlap.Error() + " (" + r.DepartureTime + "-" + r.ArrivalTime + ")",
				Err:      domain.ErrRouteOverlap,
			}
		}
	}
	if sameDay >= maxPerDay {
		return domain.ConflictError{Resource: "route", Err: domain.ErrDailyRouteLimit}
	}
	return nil
}
