// Package gamification holds the point, level and badge rules applied to voters.
// Functions mutate the passed *model.User in memory; persistence is the caller's job.
package gamification

import "quantumvision/internal/model"

// PointsPerVote is awarded to the voter for every successful vote.
const PointsPerVote = 10

// MaxLevel is the highest reachable level.
const MaxLevel = 10

// LevelThresholds[i] is the minimum points for level i+1.
var LevelThresholds = []int{0, 100, 300, 600, 1000, 1500, 2100, 2800, 3600, 4500}

var levelBadges = []struct {
	level int
	badge model.Badge
}{
	{3, model.BadgeRegularVoter},
	{5, model.BadgeSuperVoter},
}

var milestoneBadges = []struct {
	votes int
	badge model.Badge
}{
	{10, model.BadgeVoter10},
	{50, model.BadgeVoter50},
	{100, model.BadgeVoter100},
}

// Outcome describes what changed while settling a user's progress.
type Outcome struct {
	LeveledUp     bool          `json:"leveled_up"`
	PreviousLevel int           `json:"previous_level"`
	NewLevel      int           `json:"new_level"`
	NewBadges     []model.Badge `json:"new_badges"`
}

// Changed reports whether the level or badge set moved.
func (o Outcome) Changed() bool {
	return o.LeveledUp || len(o.NewBadges) > 0
}

func (o *Outcome) merge(other Outcome) {
	if other.LeveledUp {
		o.LeveledUp = true
	}
	o.NewLevel = other.NewLevel
	o.NewBadges = append(o.NewBadges, other.NewBadges...)
}

// LevelForPoints returns the level a points total qualifies for.
func LevelForPoints(points int) int {
	for i := len(LevelThresholds) - 1; i >= 0; i-- {
		if points >= LevelThresholds[i] {
			return i + 1
		}
	}
	return 1
}

// GrantBadge appends b unless the user already holds it. It reports whether b was added.
func GrantBadge(u *model.User, b model.Badge) bool {
	if u.HasBadge(b) {
		return false
	}
	u.Badges = append(u.Badges, b)
	return true
}

// AddPoints credits n points and settles level and level badges.
func AddPoints(u *model.User, n int) Outcome {
	u.Points += n
	return ApplyLevel(u)
}

// ApplyLevel raises the level to match the current points and grants level badges
// against the final level. The level is never lowered.
func ApplyLevel(u *model.User) Outcome {
	out := Outcome{PreviousLevel: u.Level, NewLevel: u.Level}
	if target := LevelForPoints(u.Points); target > u.Level {
		u.Level = target
		out.LeveledUp = true
		out.NewLevel = target
	}
	for _, lb := range levelBadges {
		if u.Level >= lb.level && GrantBadge(u, lb.badge) {
			out.NewBadges = append(out.NewBadges, lb.badge)
		}
	}
	return out
}

// RecordVote increments the lifetime vote count and grants milestone badges.
func RecordVote(u *model.User) Outcome {
	u.VotesUsed++
	return SettleMilestones(u)
}

// SettleMilestones grants every milestone badge the current vote count has reached,
// in ascending order, without incrementing anything.
func SettleMilestones(u *model.User) Outcome {
	out := Outcome{PreviousLevel: u.Level, NewLevel: u.Level}
	for _, mb := range milestoneBadges {
		if u.VotesUsed >= mb.votes && GrantBadge(u, mb.badge) {
			out.NewBadges = append(out.NewBadges, mb.badge)
		}
	}
	return out
}

// Settle reconciles level, level badges and milestone badges with the counters
// already stored on the user. Used after the counters were bumped in SQL.
func Settle(u *model.User) Outcome {
	out := ApplyLevel(u)
	out.merge(SettleMilestones(u))
	return out
}
