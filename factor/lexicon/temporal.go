package lexicon

import (
	"regexp"
	"strings"
)

// Vocabulary is a canonical key with the phrases that denote it
type Vocabulary struct {
	Key     string
	Aliases []string
}

// TimeFrames in priority order, highest first
var TimeFrames = []Vocabulary{
	{"specific", []string{"at the buzzer", "buzzer beater", "final seconds", "final whistle", "minute mark", "last second", "stoppage time", "injury time"}},
	{"minute", []string{"minute", "minutes", "min", "mins"}},
	{"quarter", []string{"quarter", "quarters", "q1", "q2", "q3", "q4", "1st quarter", "2nd quarter", "3rd quarter", "4th quarter"}},
	{"half", []string{"half", "halves", "halftime", "half-time", "1st half", "2nd half"}},
	{"period", []string{"period", "periods", "1st period", "2nd period", "3rd period"}},
	{"inning", []string{"inning", "innings", "frame", "top of the", "bottom of the"}},
	{"overtime", []string{"overtime", "ot", "extra time", "extra innings"}},
	{"shootout", []string{"shootout", "penalty shootout", "penalties"}},
	{"game", []string{"game", "games", "match", "matches", "contest", "fixture", "fixtures", "outing", "outings"}},
	{"week", []string{"week", "weeks", "weekend"}},
	{"month", []string{"month", "months"}},
	{"season", []string{"season", "seasons", "regular season", "campaign", "year"}},
	{"tournament", []string{"tournament", "playoffs", "playoff", "postseason", "cup", "finals", "series"}},
	{"career", []string{"career", "all-time", "lifetime"}},
	{"stretch", []string{"stretch", "streak", "run", "span"}},
}

// TimePositions locate a point within a frame
var TimePositions = []Vocabulary{
	{"first", []string{"first", "1st", "opening", "early"}},
	{"second", []string{"second", "2nd"}},
	{"third", []string{"third", "3rd"}},
	{"fourth", []string{"fourth", "4th"}},
	{"fifth", []string{"fifth", "5th"}},
	{"sixth", []string{"sixth", "6th"}},
	{"seventh", []string{"seventh", "7th"}},
	{"eighth", []string{"eighth", "8th"}},
	{"ninth", []string{"ninth", "9th"}},
	{"last", []string{"last", "final", "closing", "late"}},
	{"entire", []string{"entire", "whole", "full", "complete"}},
	{"current", []string{"current", "this", "ongoing"}},
	{"upcoming", []string{"upcoming", "next", "coming", "future"}},
	{"past", []string{"past", "previous", "recent", "prior"}},
}

// TimeQuantifiers describe how many frames a statement covers
var TimeQuantifiers = []Vocabulary{
	{"single", []string{"single", "one", "lone"}},
	{"couple", []string{"couple", "pair", "two"}},
	{"few", []string{"few", "several", "handful"}},
	{"many", []string{"many", "numerous", "lots of", "plenty of"}},
	{"all", []string{"all", "every", "each"}},
	{"most", []string{"most", "majority"}},
	{"exact", []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12", "13", "14", "15", "16", "17", "18", "19", "20"}},
}

// TimeUnits are the nouns a number must precede to be a time value
// ("last 5 games") rather than a stat threshold.
var TimeUnits = map[string]string{
	"minute": "minute", "minutes": "minute", "min": "minute", "mins": "minute",
	"second": "second", "seconds": "second",
	"game": "game", "games": "game", "match": "game", "matches": "game",
	"quarter": "quarter", "quarters": "quarter",
	"half": "half", "halves": "half",
	"period": "period", "periods": "period",
	"inning": "inning", "innings": "inning",
	"week": "week", "weeks": "week",
	"month": "month", "months": "month",
	"season": "season", "seasons": "season",
	"set": "set", "sets": "set",
	"lap": "lap", "laps": "lap",
	"round": "round", "rounds": "round",
	"start": "game", "starts": "game",
	"outing": "game", "outings": "game",
}

// AliasMatch is one vocabulary alias found in text
type AliasMatch struct {
	Key   string
	Alias string
	Start int
	End   int
}

type compiledVocabulary struct {
	key     string
	aliases []string
	res     []*regexp.Regexp
}

var (
	frameTable      []compiledVocabulary
	positionTable   []compiledVocabulary
	quantifierTable []compiledVocabulary
)

func init() {
	frameTable = compileVocabulary(TimeFrames)
	positionTable = compileVocabulary(TimePositions)
	quantifierTable = compileVocabulary(TimeQuantifiers)
}

func compileVocabulary(vocab []Vocabulary) []compiledVocabulary {
	out := make([]compiledVocabulary, len(vocab))
	for i, v := range vocab {
		out[i] = compiledVocabulary{key: v.Key, aliases: v.Aliases}
		for _, a := range v.Aliases {
			out[i].res = append(out[i].res, PhraseRegexp(a))
		}
	}
	return out
}

// matchAll returns every alias occurrence, in table order then position
func matchAll(table []compiledVocabulary, text string) []AliasMatch {
	var out []AliasMatch
	for _, v := range table {
		for i, re := range v.res {
			for _, loc := range re.FindAllStringIndex(text, -1) {
				out = append(out, AliasMatch{Key: v.key, Alias: v.aliases[i], Start: loc[0], End: loc[1]})
			}
		}
	}
	return out
}

// MatchFrames returns frame matches; table order is the frame priority
func MatchFrames(text string) []AliasMatch {
	return matchAll(frameTable, text)
}

// MatchPositions returns position matches in table order
func MatchPositions(text string) []AliasMatch {
	return matchAll(positionTable, text)
}

// MatchQuantifiers returns quantifier matches in table order
func MatchQuantifiers(text string) []AliasMatch {
	return matchAll(quantifierTable, text)
}

// TimeUnit returns the canonical unit for a token like "games"
func TimeUnit(token string) (string, bool) {
	unit, ok := TimeUnits[strings.ToLower(strings.Trim(token, ".,;:!?"))]
	return unit, ok
}

// FramePriority returns the index of a frame key in TimeFrames, or -1
func FramePriority(key string) int {
	for i, f := range TimeFrames {
		if f.Key == key {
			return i
		}
	}
	return -1
}
