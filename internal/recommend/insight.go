// Soundprint - Listening Taste Statistics and Track Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/soundprint

package recommend

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
)

// Insight thresholds.
const (
	tightTempoSpan   = 25
	wideTempoSpan    = 50
	rangeTempoSpan   = 40
	highEnergy       = 0.7
	highValence      = 0.6
	highDanceability = 0.7

	highEnergyShare = 0.7
	inRangeShare    = 0.6
	recTempoSlack   = 10
	recTempoClose   = 15

	minObservations = 2
	maxObservations = 4
)

type headlineKind int

const (
	headlineDefault headlineKind = iota
	headlineTightTempo
	headlineWideTempo
	headlineHighEnergy
	headlineUpbeat
)

// phraser picks phrasing variants from a generator seeded by the input, so
// the same stats always produce the same text.
type phraser struct {
	rng *rand.Rand
}

func newPhraser(stats *TasteStats) *phraser {
	h := fnv.New64a()
	for i := range stats.Tracks {
		t := &stats.Tracks[i]
		fmt.Fprintf(h, "%s\x00%s\x00%d\x00", t.TrackName, t.ArtistName, t.Tempo) //nolint:errcheck // hash writes never fail
	}
	return &phraser{
		rng: rand.New(rand.NewSource(int64(h.Sum64()))), //nolint:gosec // phrasing choice, not security sensitive
	}
}

func (p *phraser) pick(options ...string) string {
	return options[p.rng.Intn(len(options))]
}

func (p *phraser) pickN(pool []string, n int) []string {
	out := make([]string, 0, n)
	for _, i := range p.rng.Perm(len(pool)) {
		if len(out) == n {
			break
		}
		out = append(out, pool[i])
	}
	return out
}

// trackShape holds the per-set counts the insight rules look at.
type trackShape struct {
	n               int
	bpm             int
	tempoMin        int
	tempoMax        int
	tempoSpan       int
	highEnergyCount int
	highValence     int
	highDance       int
	topArtist       string
	topArtistCount  int
	mostIntense     *StatsTrack
	slowest         *StatsTrack
	fastest         *StatsTrack
}

func shapeOf(stats *TasteStats) trackShape {
	s := trackShape{
		n:        len(stats.Tracks),
		bpm:      int(math.Round(stats.TempoAvg)),
		tempoMin: stats.TempoRange[0],
		tempoMax: stats.TempoRange[1],
	}
	s.tempoSpan = s.tempoMax - s.tempoMin

	counts := make(map[string]int)
	var order []string
	for i := range stats.Tracks {
		t := &stats.Tracks[i]

		name := t.ArtistName
		if name == "" {
			name = "Unknown"
		}
		if counts[name] == 0 {
			order = append(order, name)
		}
		counts[name]++

		if t.Energy >= highEnergy {
			s.highEnergyCount++
		}
		if t.Valence >= highValence {
			s.highValence++
		}
		if t.Danceability >= highDanceability {
			s.highDance++
		}

		if t.Energy > 0 && (s.mostIntense == nil || t.Energy > s.mostIntense.Energy) {
			s.mostIntense = t
		}
		if s.slowest == nil || t.Tempo < s.slowest.Tempo {
			s.slowest = t
		}
		if s.fastest == nil || t.Tempo > s.fastest.Tempo {
			s.fastest = t
		}
	}

	// Stable sort keeps first-seen order among equally frequent artists.
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > 0 {
		s.topArtist = order[0]
		s.topArtistCount = counts[order[0]]
	}
	return s
}

// GenerateInsight describes the listener's taste in a few sentences. It
// returns false when stats has no tracks.
func GenerateInsight(stats *TasteStats, recs []RecommendationItem) (Insight, bool) {
	if stats == nil || len(stats.Tracks) == 0 {
		return Insight{}, false
	}

	p := newPhraser(stats)
	s := shapeOf(stats)

	kind, headline := chooseHeadline(p, &s)
	return Insight{
		Headline:     headline,
		Observations: observations(p, &s, kind),
		Suggestion:   suggestion(p, stats, recs),
		CTA:          cta(p, len(recs) > 0),
	}, true
}

func chooseHeadline(p *phraser, s *trackShape) (headlineKind, string) {
	n := float64(s.n)
	switch {
	case s.tempoSpan <= tightTempoSpan && s.n >= 3:
		return headlineTightTempo, p.pick(
			fmt.Sprintf("You know which groove you like: your top tracks sit in a tight pocket around %d BPM.", s.bpm),
			fmt.Sprintf("Clear tempo lane. Most of this set hovers around %d BPM, so you have a type.", s.bpm),
			fmt.Sprintf("Your top tracks share a similar pulse, right around %d BPM.", s.bpm),
		)
	case s.tempoSpan > wideTempoSpan && s.n >= 3:
		return headlineWideTempo, p.pick(
			"Your taste runs the gamut, from slow burns to high-energy tracks in the same rotation.",
			fmt.Sprintf("You don't stick to one speed. This set goes from %d to %d BPM.", s.tempoMin, s.tempoMax),
			"Wide range here. You like the contrast between laid-back and full throttle.",
		)
	case float64(s.highEnergyCount) >= n*highEnergyShare:
		return headlineHighEnergy, p.pick(
			"Your top set leans into high energy, the kind of music that keeps the momentum up.",
			"This is a high-octane set. Almost everything goes hard.",
			"Energy is the common thread. Your picks are consistently intense.",
		)
	case float64(s.highValence) >= n/2:
		return headlineUpbeat, p.pick(
			"Your rotation skews upbeat, more bright than broody.",
			"Most of these lean positive. Good-vibe territory.",
			"Your top tracks tilt toward the brighter side of the mood spectrum.",
		)
	default:
		plural := "s"
		if s.n == 1 {
			plural = ""
		}
		return headlineDefault, p.pick(
			fmt.Sprintf("From %d track%s we picked up a clear vibe: around %d BPM, with a mood that is distinctly yours.", s.n, plural, s.bpm),
			fmt.Sprintf("This set has a personality: %d BPM on average, and a mood to match.", s.bpm),
			fmt.Sprintf("Your top tracks hang around %d BPM. The rest is your call.", s.bpm),
		)
	}
}

func observations(p *phraser, s *trackShape, kind headlineKind) []string {
	n := float64(s.n)
	var pool []string

	if s.topArtistCount > 1 {
		name, count := s.topArtist, s.topArtistCount
		if count >= 3 {
			pool = append(pool, p.pick(
				fmt.Sprintf("You keep coming back to %s, who shows up %d times in this set.", name, count),
				fmt.Sprintf("%s dominates this list with %d tracks.", name, count),
				fmt.Sprintf("Clear favorite in this set: %s, with %d appearances.", name, count),
			))
		} else {
			pool = append(pool, p.pick(
				fmt.Sprintf("%s shows up more than anyone else here.", name),
				fmt.Sprintf("If this set has a star, it is %s.", name),
			))
		}
	}

	switch {
	case s.tempoSpan <= tightTempoSpan && s.n >= 3 && kind != headlineTightTempo:
		pool = append(pool, p.pick(
			"Your tempo range is pretty consistent. You found a groove and stuck with it.",
			"Not much spread in BPM. You know what pace you like.",
			"Tight tempo range. This is a coherent groove.",
		))
	case s.tempoSpan > wideTempoSpan && s.n >= 3 && kind != headlineWideTempo:
		pool = append(pool, p.pick(
			"You don't lock into one speed. You like the contrast between slow and fast.",
			"Big spread in tempo. You are not married to one BPM.",
			"Slow and fast both get a seat at the table.",
		))
	}

	switch {
	case s.highEnergyCount == s.n && s.n >= 3:
		pool = append(pool, p.pick(
			"Everything in this set goes hard. No filler.",
			"Zero low-energy tracks. It is all gas.",
			"This whole set is high energy and consistently intense.",
		))
	case s.mostIntense != nil && s.highEnergyCount >= 2:
		t := s.mostIntense
		pool = append(pool, p.pick(
			fmt.Sprintf("The peak of the set might be %q, the most intense of the bunch.", t.TrackName),
			fmt.Sprintf("%q by %s is the highest-energy track here.", t.TrackName, t.ArtistName),
			fmt.Sprintf("For pure intensity, %q leads the pack.", t.TrackName),
		))
	}

	switch {
	case float64(s.highValence) >= n/2 && s.highValence < s.n:
		pool = append(pool, p.pick(
			"Most of these lean positive, and a few bring the mood down in a good way.",
			"Generally upbeat, with a couple of moodier cuts in the mix.",
			"Bright overall, but not one-note. There is some shade in there.",
		))
	case float64(s.highValence) < n/2 && s.highValence > 0:
		pool = append(pool, p.pick(
			"You have a mix of moods. Not all sunshine, which makes the brighter tracks hit harder.",
			"A good balance of light and dark. The contrast works.",
			"Mood-wise you are all over the map, in a good way.",
		))
	}

	if float64(s.highDance) >= n/2 {
		pool = append(pool, p.pick(
			"This is move-your-body music. Very danceable.",
			"Most of these are built for the floor.",
			"High danceability across the set. You like to move.",
		))
	}

	if s.slowest != nil && s.fastest != nil && s.slowest != s.fastest && s.tempoSpan > rangeTempoSpan {
		slow, fast := s.slowest, s.fastest
		pool = append(pool, p.pick(
			fmt.Sprintf("You go from %q (%d BPM) all the way to %q (%d BPM). That is a real range.",
				slow.TrackName, slow.Tempo, fast.TrackName, fast.Tempo),
			fmt.Sprintf("Slowest: %q. Fastest: %q. You cover a lot of ground.", slow.TrackName, fast.TrackName),
			fmt.Sprintf("The spread from %d to %d BPM says you like variety in tempo.", slow.Tempo, fast.Tempo),
		))
	}

	if len(pool) == 0 {
		return []string{fmt.Sprintf(
			"Your top tracks sit around %d BPM with a balanced mix of energy and mood. No single note dominates.", s.bpm)}
	}
	want := min(maxObservations, max(minObservations, len(pool)))
	return p.pickN(pool, want)
}

func suggestion(p *phraser, stats *TasteStats, recs []RecommendationItem) string {
	if len(recs) == 0 {
		return p.pick(
			"The picks below were chosen to match this profile, so they should slot right into your taste.",
			"Everything below is aligned with what we see in your top tracks.",
			"These should feel like they belong in the same playlist.",
		)
	}

	var sum float64
	inRange := 0
	lo := float64(stats.TempoRange[0] - recTempoSlack)
	hi := float64(stats.TempoRange[1] + recTempoSlack)
	for i := range recs {
		sum += recs[i].Tempo
		if recs[i].Tempo >= lo && recs[i].Tempo <= hi {
			inRange++
		}
	}
	recAvg := sum / float64(len(recs))

	if math.Abs(recAvg-stats.TempoAvg) >= recTempoClose {
		return p.pick(
			"The recommendations sit in a similar zone to what you already love: same energy, similar pace.",
			"These picks are tuned to your profile. Same vibe, new names.",
			"We matched the energy and pace to what you are already playing.",
		)
	}
	if float64(inRange) >= float64(len(recs))*inRangeShare {
		return p.pick(
			"We kept the picks in your wheelhouse. Same kind of groove, so they should feel familiar but fresh.",
			"The list below matches your tempo zone and should slot in nicely.",
			"These sit in the same BPM neighborhood as what you already love.",
		)
	}
	return p.pick(
		"The list below mixes tracks that match your tempo with a few that nudge you slightly out of it.",
		"Most of these match your groove, and a couple stretch the tempo a bit.",
		"We stayed close to your lane with a few curveballs.",
	)
}

func cta(p *phraser, haveRecs bool) string {
	if !haveRecs {
		return "Load your recommendations to see picks that match this profile."
	}
	return p.pick(
		"Here are some picks we think you'll like:",
		"Some recommendations based on this set:",
		"Picks that match your vibe:",
	)
}
