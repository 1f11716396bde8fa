package progress

import (
	"sort"

	"github.com/s/learnhub/internal/models"
)

// CompletedSet holds the ids of the videos a user has finished in a course.
type CompletedSet map[models.ID]struct{}

func NewCompletedSet(ids ...models.ID) CompletedSet {
	set := make(CompletedSet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}
	return set
}

func (s CompletedSet) Has(id models.ID) bool {
	_, ok := s[id]
	return ok
}

func (s CompletedSet) Add(id models.ID) {
	if !id.IsZero() {
		s[id] = struct{}{}
	}
}

func (s CompletedSet) IDs() []models.ID {
	out := make([]models.ID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SortBySequence orders videos by sequence number in place. Videos with the
// same number keep their relative order.
func SortBySequence(videos []models.Video) {
	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].SequenceNumber < videos[j].SequenceNumber
	})
}

// IsUnlocked reports whether videos[index] may be played. videos must already
// be in playback order. The first video is always open once the course is
// accessible; every later one opens when its predecessor is completed.
func IsUnlocked(videos []models.Video, completed CompletedSet, index int) bool {
	if index < 0 || index >= len(videos) {
		return false
	}
	if index == 0 {
		return true
	}
	return completed.Has(videos[index-1].ID)
}

// Entry is one row of a course playlist.
type Entry struct {
	Video     models.Video `json:"video"`
	Index     int          `json:"index"`
	Unlocked  bool         `json:"unlocked"`
	Completed bool         `json:"completed"`
}

func Playlist(videos []models.Video, completed CompletedSet) []Entry {
	out := make([]Entry, len(videos))
	for i, v := range videos {
		out[i] = Entry{
			Video:     v,
			Index:     i,
			Unlocked:  IsUnlocked(videos, completed, i),
			Completed: completed.Has(v.ID),
		}
	}
	return out
}

// NextPlayable returns the index of the first unlocked video that is not yet
// completed, or -1 when there is none.
func NextPlayable(videos []models.Video, completed CompletedSet) int {
	for i, v := range videos {
		if IsUnlocked(videos, completed, i) && !completed.Has(v.ID) {
			return i
		}
	}
	return -1
}

// Percent is the share of the course's videos that are completed. Ids in
// completed that are not part of videos are ignored.
func Percent(videos []models.Video, completed CompletedSet) int {
	if len(videos) == 0 {
		return 0
	}
	done := 0
	for _, v := range videos {
		if completed.Has(v.ID) {
			done++
		}
	}
	return done * 100 / len(videos)
}

// Playback is a player's position report, in seconds.
type Playback struct {
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
	Ended    bool    `json:"ended"`
}

// DefaultThreshold is the watched share at which a video counts as completed.
const DefaultThreshold = 0.9

// ShouldComplete reports whether the playback has gone far enough to mark the
// video completed. A threshold outside (0, 1] falls back to DefaultThreshold.
func ShouldComplete(p Playback, threshold float64) bool {
	if p.Ended {
		return true
	}
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	if p.Duration <= 0 || p.Position <= 0 {
		return false
	}
	return p.Position/p.Duration >= threshold
}
