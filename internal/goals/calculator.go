// Package goals converts between progress units and time.
//
// Every function is pure and total over non-negative, finite inputs. Anything else is
// rejected with a ValidationError so that a bad reading speed or runtime never leaks a NaN
// into an aggregate.
package goals

import (
	"math"

	apperrors "github.com/WayneDavenport/Mediaq-sub000/internal/errors"
)

// ReadingIntervalMinutes is the fixed interval a reading speed is expressed against:
// a speed of 20 means 20 pages per 30 minutes.
const ReadingIntervalMinutes = 30

// ReadingTime converts pages into minutes at the given reading speed.
func ReadingTime(pages, pagesPerInterval float64) (int, error) {
	if err := checkAmount("pages", pages); err != nil {
		return 0, err
	}
	if err := checkDivisor("pages_per_interval", pagesPerInterval); err != nil {
		return 0, err
	}
	return round(pages / pagesPerInterval * ReadingIntervalMinutes), nil
}

// PagesFromTime converts minutes into pages at the given reading speed.
// It is the inverse of ReadingTime up to rounding.
func PagesFromTime(minutes, pagesPerInterval float64) (int, error) {
	if err := checkAmount("minutes", minutes); err != nil {
		return 0, err
	}
	if err := checkDivisor("pages_per_interval", pagesPerInterval); err != nil {
		return 0, err
	}
	return round(minutes / ReadingIntervalMinutes * pagesPerInterval), nil
}

// TVDuration returns the minutes spent on a number of episodes.
func TVDuration(episodes, avgEpisodeRuntime float64) (int, error) {
	if err := checkAmount("episodes", episodes); err != nil {
		return 0, err
	}
	if err := checkAmount("episode_runtime", avgEpisodeRuntime); err != nil {
		return 0, err
	}
	return round(episodes * avgEpisodeRuntime), nil
}

// EpisodesFromTime converts minutes into whole episodes of the given runtime.
func EpisodesFromTime(minutes, avgEpisodeRuntime float64) (int, error) {
	if err := checkAmount("minutes", minutes); err != nil {
		return 0, err
	}
	if err := checkDivisor("episode_runtime", avgEpisodeRuntime); err != nil {
		return 0, err
	}
	return round(minutes / avgEpisodeRuntime), nil
}

// UnitsToTime returns the share of a task's duration covered by completed units.
func UnitsToTime(units, unitRange, duration float64) (int, error) {
	if err := checkAmount("units", units); err != nil {
		return 0, err
	}
	if err := checkDivisor("unit_range", unitRange); err != nil {
		return 0, err
	}
	if err := checkAmount("duration", duration); err != nil {
		return 0, err
	}
	return round(units / unitRange * duration), nil
}

func checkAmount(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return apperrors.NewValidationError(field, "must be a finite number")
	}
	if v < 0 {
		return apperrors.NewValidationError(field, "must not be negative, got %g", v)
	}
	return nil
}

func checkDivisor(field string, v float64) error {
	if err := checkAmount(field, v); err != nil {
		return err
	}
	if v == 0 {
		return apperrors.NewValidationError(field, "must be greater than zero")
	}
	return nil
}

func round(v float64) int {
	return int(math.Round(v))
}
