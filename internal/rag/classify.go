package rag

import "strings"

// Tournament pages that classified documents resolve to. The index stores
// internal chunk IDs that are not externally resolvable, so citations map
// back to canonical fifa.com pages by content keywords instead.
const (
	tournamentURL   = "https://www.fifa.com/en/tournaments/mens/worldcup/canadamexicousa2026"
	groupsURL       = tournamentURL + "/groups"
	ticketsURL      = tournamentURL + "/tickets"
	destinationsURL = tournamentURL + "/destinations"

	aztecaURL   = tournamentURL + "/articles/estadio-azteca-mexico-city"
	metlifeURL  = tournamentURL + "/articles/metlife-stadium-new-york-new-jersey"
	sofiURL     = tournamentURL + "/articles/sofi-stadium-los-angeles"
	bmoFieldURL = tournamentURL + "/articles/bmo-field-toronto"
	akronURL    = tournamentURL + "/articles/estadio-akron-guadalajara"
)

// urlRule maps content keywords to the canonical page for that content.
type urlRule struct {
	// keywords match case-insensitively against the document content.
	// Any single match selects the rule.
	keywords []string

	// url is the canonical page returned when the rule matches.
	url string
}

// urlRules is evaluated top to bottom; the first matching rule wins, so
// order carries meaning. Specific venues (including capacity figures that
// identify them) come before group/stage and ticket keywords, which come
// before the generic stadium catch-all. A stadium page that also mentions
// "tickets" must still resolve to the venue page, not the tickets page.
var urlRules = []urlRule{
	{keywords: []string{"estadio azteca", "azteca", "87,523"}, url: aztecaURL},
	{keywords: []string{"metlife"}, url: metlifeURL},
	{keywords: []string{"sofi stadium", "sofi"}, url: sofiURL},
	{keywords: []string{"bmo field"}, url: bmoFieldURL},
	{keywords: []string{"estadio akron", "akron"}, url: akronURL},
	{keywords: []string{"group stage", "group", "draw"}, url: groupsURL},
	{keywords: []string{"ticket", "price", "hospitality", "usd"}, url: ticketsURL},
	{keywords: []string{"stadium", "venue", "arena"}, url: destinationsURL},
}

// ClassifyURL maps an internal document identifier and its content to a
// public fifa.com page. It is a pure function: same input, same output.
// A wrong match degrades citation quality but never breaks the pipeline,
// so unmatched content falls through to the tournament landing page.
func ClassifyURL(docID, content string) string {
	haystack := strings.ToLower(docID + " " + content)
	for _, rule := range urlRules {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, kw) {
				return rule.url
			}
		}
	}
	return tournamentURL
}
