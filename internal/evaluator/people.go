package evaluator

import (
	"regexp"
	"strings"
)

const maxKeyPeople = 5

var (
	// verb-first: "appoints Jane Doe as CEO"
	verbNameRE = regexp.MustCompile(
		`(?:appoints|appointed|names|named|hires|hired|promotes|promoted)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,2})`)

	// name-first: "Jane Doe joins the firm", "Jane Doe was appointed"
	nameVerbRE = regexp.MustCompile(
		`([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,2})\s+(?:joins|joined|has joined|was appointed|was named|is appointed|is named)\b`)
)

// titleWords are role tokens the greedy name captures drag in; they are
// trimmed off the tail of a captured name.
var titleWords = map[string]struct{}{
	"chief": {}, "executive": {}, "officer": {}, "ceo": {}, "cfo": {},
	"coo": {}, "managing": {}, "partner": {}, "director": {}, "head": {},
	"president": {}, "chair": {}, "chairman": {}, "chairwoman": {},
}

// extractKeyPeople merges caller-supplied names with names matched in the
// text. Supplied names keep their position; duplicates are folded
// case-insensitively and the list is capped at five.
func extractKeyPeople(supplied []string, text string) []string {
	people := make([]string, 0, maxKeyPeople)
	seen := make(map[string]struct{})

	add := func(raw string) {
		name := strings.TrimSpace(raw)
		if name == "" || len(people) >= maxKeyPeople {
			return
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		people = append(people, name)
	}

	for _, name := range supplied {
		add(name)
	}
	for _, re := range []*regexp.Regexp{verbNameRE, nameVerbRE} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			add(trimTitleTail(m[1]))
		}
	}

	if len(people) == 0 {
		return nil
	}
	return people
}

// trimTitleTail strips trailing role words from a captured name and
// requires at least a first and last name to remain.
func trimTitleTail(name string) string {
	tokens := strings.Fields(name)
	for len(tokens) > 0 {
		if _, isTitle := titleWords[strings.ToLower(tokens[len(tokens)-1])]; !isTitle {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}
	if len(tokens) < 2 {
		return ""
	}
	return strings.Join(tokens, " ")
}
