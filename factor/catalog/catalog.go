// Package catalog is the read-only index of leagues, teams, players and
// condition vocabulary the factor parser resolves mentions against.
//
// A Catalog is built once from YAML and never mutated afterwards, so it is
// safe to share between goroutines without locking.
package catalog

import (
	"regexp"
	"strings"

	"github.com/teranos/qfactor/factor/lexicon"
	"github.com/teranos/qfactor/factor/types"
	"github.com/teranos/qfactor/internal/util"
)

// DefaultThreshold is the minimum similarity FindEntity accepts by default
const DefaultThreshold = 0.75

// Kind is the catalog section an entry belongs to
type Kind string

const (
	KindLeague    Kind = "league"
	KindTeam      Kind = "team"
	KindPlayer    Kind = "player"
	KindCondition Kind = "condition"
)

// ParseKind maps user input ("team", "players", "") to a Kind.
// The empty Kind means "any entity".
func ParseKind(s string) (Kind, bool) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") {
	case "", "any", "all":
		return "", true
	case "league":
		return KindLeague, true
	case "team":
		return KindTeam, true
	case "player":
		return KindPlayer, true
	case "condition":
		return KindCondition, true
	}
	return "", false
}

type League struct {
	ID      string   `yaml:"id" json:"id"`
	Name    string   `yaml:"name" json:"name"`
	Sport   string   `yaml:"sport" json:"sport"`
	Aliases []string `yaml:"aliases" json:"aliases,omitempty"`
}

type Team struct {
	ID      string   `yaml:"id" json:"id"`
	Name    string   `yaml:"name" json:"name"`
	League  string   `yaml:"league" json:"league"`
	Aliases []string `yaml:"aliases" json:"aliases,omitempty"`
}

type Player struct {
	ID      string   `yaml:"id" json:"id"`
	Name    string   `yaml:"name" json:"name"`
	League  string   `yaml:"league" json:"league"`
	Team    string   `yaml:"team" json:"team,omitempty"`
	Aliases []string `yaml:"aliases" json:"aliases,omitempty"`
}

// Condition is one entry of the stat/outcome vocabulary
type Condition struct {
	ID      string              `yaml:"id" json:"id"`
	Name    string              `yaml:"name" json:"name"`
	Type    types.ConditionType `yaml:"type" json:"type"`
	Aliases []string            `yaml:"aliases" json:"aliases,omitempty"`
}

// Data is the serialized form of a catalog
type Data struct {
	Leagues    []League    `yaml:"leagues"`
	Teams      []Team      `yaml:"teams"`
	Players    []Player    `yaml:"players"`
	Conditions []Condition `yaml:"conditions"`
}

// Entry is one resolvable record as seen by the alias index
type Entry struct {
	ID     string
	Name   string
	Kind   Kind
	League string // league ID, empty for leagues and conditions
}

// Match is the result of FindEntity. An empty ID means nothing cleared the threshold.
type Match struct {
	ID    string  `json:"resolved_id,omitempty"`
	Name  string  `json:"resolved_name,omitempty"`
	Type  Kind    `json:"resolved_type,omitempty"`
	Score float64 `json:"similarity_score"`
}

// Found reports whether the match resolved to a catalog entry
func (m Match) Found() bool {
	return m.ID != ""
}

// ConditionPhrase is one alias of a condition, compiled for whole-word search
type ConditionPhrase struct {
	Condition *Condition
	Index     int // position of Condition in catalog order
	Phrase    string
	Words     int
	re        *regexp.Regexp
}

// FindAllIndex returns the byte spans of every occurrence of the phrase
func (p ConditionPhrase) FindAllIndex(text string) [][]int {
	return p.re.FindAllStringIndex(text, -1)
}

type candidate struct {
	entry Entry
	name  string   // normalized canonical name
	forms []string // normalized name followed by aliases
}

// Catalog indexes the loaded records
type Catalog struct {
	leagues    []League
	teams      []Team
	players    []Player
	conditions []Condition

	leagueIdx    map[string]int
	teamIdx      map[string]int
	playerIdx    map[string]int
	conditionIdx map[string]int

	entities      []candidate // leagues, then teams, then players
	conditionCand []candidate
	aliases       map[string][]Entry
	phrases       []ConditionPhrase
	maxAliasWords int

	comparator Comparator
}

// New validates d and builds the indexes
func New(d Data) (*Catalog, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	c := &Catalog{
		leagues:      d.Leagues,
		teams:        d.Teams,
		players:      d.Players,
		conditions:   d.Conditions,
		leagueIdx:    make(map[string]int, len(d.Leagues)),
		teamIdx:      make(map[string]int, len(d.Teams)),
		playerIdx:    make(map[string]int, len(d.Players)),
		conditionIdx: make(map[string]int, len(d.Conditions)),
		aliases:      make(map[string][]Entry),
		comparator:   EditDistance{},
	}

	for i, l := range c.leagues {
		c.leagueIdx[l.ID] = i
		c.addEntity(Entry{ID: l.ID, Name: l.Name, Kind: KindLeague}, l.Aliases)
	}
	for i, t := range c.teams {
		c.teamIdx[t.ID] = i
		c.addEntity(Entry{ID: t.ID, Name: t.Name, Kind: KindTeam, League: t.League}, t.Aliases)
	}
	for i, p := range c.players {
		c.playerIdx[p.ID] = i
		c.addEntity(Entry{ID: p.ID, Name: p.Name, Kind: KindPlayer, League: p.League}, p.Aliases)
	}
	for i := range c.conditions {
		cond := &c.conditions[i]
		c.conditionIdx[cond.ID] = i
		c.conditionCand = append(c.conditionCand, newCandidate(
			Entry{ID: cond.ID, Name: cond.Name, Kind: KindCondition}, cond.Aliases))
		for _, alias := range uniqueForms(cond.Name, cond.Aliases) {
			c.phrases = append(c.phrases, ConditionPhrase{
				Condition: cond,
				Index:     i,
				Phrase:    alias,
				Words:     len(strings.Fields(alias)),
				re:        lexicon.AliasRegexp(alias),
			})
		}
	}
	return c, nil
}

func (c *Catalog) addEntity(e Entry, aliases []string) {
	cand := newCandidate(e, aliases)
	c.entities = append(c.entities, cand)
	for _, form := range cand.forms {
		c.aliases[form] = append(c.aliases[form], e)
		if n := len(strings.Fields(form)); n > c.maxAliasWords {
			c.maxAliasWords = n
		}
	}
}

func newCandidate(e Entry, aliases []string) candidate {
	return candidate{
		entry: e,
		name:  util.Normalize(e.Name),
		forms: uniqueForms(e.Name, aliases),
	}
}

// uniqueForms normalizes name and aliases, dropping duplicates like
// "Jokic" next to "Jokić".
func uniqueForms(name string, aliases []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range append([]string{name}, aliases...) {
		n := util.Normalize(s)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// WithComparator returns a catalog sharing c's data that scores fuzzy
// matches with cmp. A nil cmp restores edit distance.
func (c *Catalog) WithComparator(cmp Comparator) *Catalog {
	out := *c
	if cmp == nil {
		cmp = EditDistance{}
	}
	out.comparator = cmp
	return &out
}

// FindEntity resolves text to the most similar catalog entry of kind (any
// entity kind when empty). An exact canonical-name match returns score 1.0
// immediately; otherwise every name and alias is scored and the first best
// candidate wins. Returns a zero Match when the best score is below
// threshold. Never fails.
func (c *Catalog) FindEntity(text string, kind Kind, threshold float64) Match {
	query := util.Normalize(text)
	if query == "" {
		return Match{}
	}

	pool := c.entities
	if kind == KindCondition {
		pool = c.conditionCand
	}

	for _, cand := range pool {
		if kind != "" && cand.entry.Kind != kind {
			continue
		}
		if cand.name == query {
			return Match{ID: cand.entry.ID, Name: cand.entry.Name, Type: cand.entry.Kind, Score: 1.0}
		}
	}

	var best Match
	for _, cand := range pool {
		if kind != "" && cand.entry.Kind != kind {
			continue
		}
		for _, form := range cand.forms {
			score := c.comparator.Similarity(query, form)
			if score > best.Score {
				best = Match{ID: cand.entry.ID, Name: cand.entry.Name, Type: cand.entry.Kind, Score: score}
			}
		}
	}
	if best.Score < threshold {
		return Match{}
	}
	return best
}

// LookupAlias returns the entities whose name or alias equals phrase after
// normalization, in catalog order.
func (c *Catalog) LookupAlias(phrase string) []Entry {
	return c.aliases[util.Normalize(phrase)]
}

// MaxAliasWords is the word count of the longest entity name or alias
func (c *Catalog) MaxAliasWords() int {
	return c.maxAliasWords
}

// ConditionPhrases returns every condition alias in catalog order
func (c *Catalog) ConditionPhrases() []ConditionPhrase {
	return c.phrases
}

// Conditions returns the condition vocabulary in catalog order
func (c *Catalog) Conditions() []Condition {
	return c.conditions
}

func (c *Catalog) Leagues() []League { return c.leagues }
func (c *Catalog) Teams() []Team     { return c.teams }
func (c *Catalog) Players() []Player { return c.players }

func (c *Catalog) LeagueByID(id string) (League, bool) {
	if i, ok := c.leagueIdx[id]; ok {
		return c.leagues[i], true
	}
	return League{}, false
}

func (c *Catalog) TeamByID(id string) (Team, bool) {
	if i, ok := c.teamIdx[id]; ok {
		return c.teams[i], true
	}
	return Team{}, false
}

func (c *Catalog) PlayerByID(id string) (Player, bool) {
	if i, ok := c.playerIdx[id]; ok {
		return c.players[i], true
	}
	return Player{}, false
}

func (c *Catalog) ConditionByID(id string) (Condition, bool) {
	if i, ok := c.conditionIdx[id]; ok {
		return c.conditions[i], true
	}
	return Condition{}, false
}

// LeagueName returns the display name of a league ID, or "" when unknown
func (c *Catalog) LeagueName(id string) string {
	if l, ok := c.LeagueByID(id); ok {
		return l.Name
	}
	return ""
}

// FindLeague resolves a league by ID, name or alias
func (c *Catalog) FindLeague(s string) (League, bool) {
	if l, ok := c.LeagueByID(strings.ToLower(strings.TrimSpace(s))); ok {
		return l, true
	}
	for _, e := range c.LookupAlias(s) {
		if e.Kind == KindLeague {
			return c.LeagueByID(e.ID)
		}
	}
	return League{}, false
}

// Counts reports how many records of each kind are loaded
func (c *Catalog) Counts() map[Kind]int {
	return map[Kind]int{
		KindLeague:    len(c.leagues),
		KindTeam:      len(c.teams),
		KindPlayer:    len(c.players),
		KindCondition: len(c.conditions),
	}
}
