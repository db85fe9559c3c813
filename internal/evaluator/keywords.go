package evaluator

import "github.com/talentradar/signal-engine/internal/domain"

// denylistTerms flag off-topic content regardless of anything else the text
// says. They cover politics, weather, sports, celebrity, violent crime and
// macro-economic news. Matched against normalized text with word boundaries.
var denylistTerms = []string{
	// politics
	"election", "parliament", "prime minister", "white house", "congress",
	"senate", "referendum", "legislation", "political party",
	// weather
	"weather", "storm", "rainfall", "flooding", "heatwave", "snowfall",
	"hurricane", "wildfire",
	// sports
	"football", "soccer", "basketball", "cricket", "tennis", "rugby",
	"olympics", "premier league", "championship", "world cup",
	// celebrity / entertainment
	"celebrity", "actor", "actress", "singer", "box office", "film premiere",
	"red carpet", "reality tv",
	// violence / crime
	"murder", "shooting", "stabbing", "assault", "terror attack", "war",
	// macro-economic news
	"inflation rate", "interest rate decision", "gdp growth", "central bank",
	"unemployment rate", "consumer price index",
}

// sectorTerms is the generic relevance gate for non-must-have items: at
// least one must appear or the candidate is rejected as off-sector.
var sectorTerms = []string{
	"private equity", "buyout", "lbo", "venture capital", "vc firm",
	"pe firm", "family office", "credit fund", "private credit",
	"hedge fund", "infrastructure fund", "growth equity", "real assets",
	"asset management", "asset manager", "fund close", "fund closing",
	"final close", "first close", "fundraise", "fundraising",
	"capital raise", "acquisition", "merger", "m a", "portfolio company",
	"limited partners", "general partner", "aum", "investment firm",
	"fund manager", "sovereign wealth",
}

// regionTerms maps each region to the keywords that text-confirm it. The
// london and europe tables deliberately share no terms; the london score
// multiplier depends on that separation.
var regionTerms = map[domain.Region][]string{
	domain.RegionLondon: {
		"london", "uk", "united kingdom", "britain", "british", "england",
		"mayfair", "canary wharf", "city of london", "ftse",
	},
	domain.RegionEurope: {
		"europe", "european", "eu", "frankfurt", "paris", "berlin",
		"munich", "amsterdam", "madrid", "milan", "zurich", "geneva",
		"stockholm", "copenhagen", "dublin", "luxembourg", "brussels",
		"germany", "france", "spain", "italy", "netherlands",
		"switzerland", "nordic", "dach", "benelux",
	},
	domain.RegionUAE: {
		"uae", "dubai", "abu dhabi", "emirates", "difc", "adgm",
		"sharjah", "middle east", "gulf", "gcc", "saudi", "riyadh",
		"qatar", "doha", "mena",
	},
	domain.RegionUSA: {
		"usa", "us", "united states", "america", "american", "new york",
		"manhattan", "boston", "chicago", "san francisco",
		"silicon valley", "los angeles", "miami", "texas", "dallas",
		"houston", "washington", "nasdaq", "wall street",
	},
}

// regionAliases normalizes caller-supplied expected-region variants onto
// the fixed enum. Unrecognized or empty values default to europe.
var regionAliases = map[string]domain.Region{
	"london":         domain.RegionLondon,
	"uk":             domain.RegionLondon,
	"gb":             domain.RegionLondon,
	"england":        domain.RegionLondon,
	"united kingdom": domain.RegionLondon,
	"britain":        domain.RegionLondon,
	"europe":         domain.RegionEurope,
	"eu":             domain.RegionEurope,
	"emea":           domain.RegionEurope,
	"uae":            domain.RegionUAE,
	"dubai":          domain.RegionUAE,
	"abu dhabi":      domain.RegionUAE,
	"mena":           domain.RegionUAE,
	"gulf":           domain.RegionUAE,
	"middle east":    domain.RegionUAE,
	"usa":            domain.RegionUSA,
	"us":             domain.RegionUSA,
	"america":        domain.RegionUSA,
	"united states":  domain.RegionUSA,
	"north america":  domain.RegionUSA,
}
