package slug

// DefaultLeagueMap canonicalizes reference-feed league names to target-feed league slugs.
var DefaultLeagueMap = map[string]string{
	"epl":              "england-premier-league",
	"pl":               "england-premier-league",
	"la-liga":          "spain-laliga",
	"laliga":           "spain-laliga",
	"bundesliga":       "germany-bundesliga",
	"nba":              "national-basketball-association",
	"ncaab":            "ncaa-mens-basketball",
	"ncaab-women":      "ncaa-womens-basketball",
	"wnba":             "womens-national-basketball-association",
	"nfl":              "national-football-league",
	"cfl":              "canadian-football-league",
	"nhl":              "national-hockey-league",
	"mls":              "major-league-soccer",
	"efl-championship": "english-football-league-championship",
	"mlb":              "major-league-baseball",
	"ncaa-hockey":      "national-collegiate-athletic-association-hockey",
	"ncaa-baseball":    "national-collegiate-athletic-association-baseball",
	"atp":              "association-of-tennis-professionals",
	"wta":              "womens-tennis-association",
	"ncaa-football":    "national-collegiate-athletic-association-football",
	"primeira-liga":    "portugal-liga-portugal",
	"champions-league": "international-clubs-uefa-champions-league",
}

// DefaultTeamMap canonicalizes short team names used by the reference feed.
var DefaultTeamMap = map[string]string{
	"estrela": "estrela-amadora",
	"estoril": "estoril-praia",
	"verona":  "hellas-verona",
}

// DefaultSportByLeague maps canonical league slugs to target-feed sport slugs.
var DefaultSportByLeague = map[string]string{
	"national-hockey-league":                          "ice-hockey",
	"national-collegiate-athletic-association-hockey": "ice-hockey",

	"national-basketball-association":        "basketball",
	"ncaa-mens-basketball":                   "basketball",
	"ncaa-womens-basketball":                 "basketball",
	"womens-national-basketball-association": "basketball",
	"euroleague":                             "basketball",
	"nba-summer":                             "basketball",
	"nba-preseason":                          "basketball",

	"major-league-baseball":                             "baseball",
	"national-collegiate-athletic-association-baseball": "baseball",

	"association-of-tennis-professionals": "tennis",
	"womens-tennis-association":           "tennis",
	"grand-slams":                         "tennis",
	"challenger-tournaments":              "tennis",
	"itf-events":                          "tennis",
	"atp-wta-tours":                       "tennis",

	"national-football-league":                          "american-football",
	"canadian-football-league":                          "american-football",
	"national-collegiate-athletic-association-football": "american-football",
	"nfl-preseason":                                     "american-football",

	"england-premier-league":                    "football",
	"spain-laliga":                              "football",
	"germany-bundesliga":                        "football",
	"major-league-soccer":                       "football",
	"english-football-league-championship":      "football",
	"portugal-liga-portugal":                    "football",
	"international-clubs-uefa-champions-league": "football",
	"ligue-1":                                   "football",
	"serie-a":                                   "football",
}
