package location

// DefaultAliases is the production alias table: canonical place name →
// known aliases, abbreviations and regional codes. Entries are already
// lower-case so they compare directly against normalized tokens.
func DefaultAliases() AliasTable {
	return AliasTable{
		// US cities and states
		"chicago":        {"chicago", "chi", "illinois", "il"},
		"new york":       {"new york", "nyc", "ny", "new york city", "manhattan"},
		"san francisco":  {"san francisco", "sf", "ssf", "south san francisco"},
		"seattle":        {"seattle", "sea", "washington", "wa"},
		"atlanta":        {"atlanta", "atl", "georgia", "ga"},
		"boston":         {"boston", "massachusetts", "ma"},
		"texas":          {"texas", "tx", "dallas", "austin", "houston"},
		"california":     {"california", "ca", "calif"},
		"los angeles":    {"los angeles", "la", "los angeles county"},
		"denver":         {"denver", "colorado", "co"},
		"phoenix":        {"phoenix", "arizona", "az"},
		"portland":       {"portland", "oregon", "or"},
		"miami":          {"miami", "florida", "fl"},
		"philadelphia":   {"philadelphia", "philly", "pennsylvania", "pa"},
		"detroit":        {"detroit", "michigan", "mi"},
		"las vegas":      {"las vegas", "vegas", "nevada", "nv"},
		"salt lake city": {"salt lake city", "slc", "utah", "ut"},
		"minneapolis":    {"minneapolis", "minnesota", "mn"},
		"nashville":      {"nashville", "tennessee", "tn"},
		"raleigh":        {"raleigh", "north carolina", "nc"},
		"charlotte":      {"charlotte", "north carolina", "nc"},
		"richmond":       {"richmond", "virginia", "va"},
		"pittsburgh":     {"pittsburgh", "pennsylvania", "pa"},

		// US regions / remote
		"remote": {
			"remote", "us-remote", "us remote", "remote us", "remote in us",
			"remote in the us", "work from home", "wfh", "telecommute",
			"distributed", "anywhere",
		},
		"us": {"us", "usa", "united states", "america", "amer", "national us"},
		"canada": {
			"canada", "toronto", "ca-remote", "can-remote",
			"ca-toronto", "vancouver", "montreal", "ottawa", "calgary",
		},

		// Europe
		"london":     {"london", "uk", "united kingdom", "england", "great britain"},
		"dublin":     {"dublin", "ireland", "dublin hq"},
		"berlin":     {"berlin", "germany", "de-berlin", "deutschland"},
		"paris":      {"paris", "france"},
		"madrid":     {"madrid", "spain"},
		"barcelona":  {"barcelona", "spain"},
		"bucharest":  {"bucharest", "romania"},
		"amsterdam":  {"amsterdam", "netherlands", "holland"},
		"zurich":     {"zurich", "switzerland"},
		"stockholm":  {"stockholm", "sweden"},
		"oslo":       {"oslo", "norway"},
		"copenhagen": {"copenhagen", "denmark"},
		"helsinki":   {"helsinki", "finland"},
		"vienna":     {"vienna", "austria"},
		"warsaw":     {"warsaw", "poland"},
		"prague":     {"prague", "czech republic"},
		"budapest":   {"budapest", "hungary"},
		"lisbon":     {"lisbon", "portugal"},
		"rome":       {"rome", "italy"},
		"milan":      {"milan", "italy"},

		// Asia Pacific
		"tokyo":        {"tokyo", "japan"},
		"singapore":    {"singapore"},
		"sydney":       {"sydney", "australia"},
		"melbourne":    {"melbourne", "australia"},
		"bangalore":    {"bangalore", "bengaluru", "india"},
		"mumbai":       {"mumbai", "bombay", "india"},
		"delhi":        {"delhi", "new delhi", "india"},
		"hyderabad":    {"hyderabad", "india"},
		"pune":         {"pune", "india"},
		"chennai":      {"chennai", "madras", "india"},
		"hong kong":    {"hong kong", "hk"},
		"seoul":        {"seoul", "south korea", "korea"},
		"beijing":      {"beijing", "china"},
		"shanghai":     {"shanghai", "china"},
		"taipei":       {"taipei", "taiwan"},
		"bangkok":      {"bangkok", "thailand"},
		"manila":       {"manila", "philippines"},
		"jakarta":      {"jakarta", "indonesia"},
		"kuala lumpur": {"kuala lumpur", "malaysia"},

		// Latin America
		"mexico city":  {"mexico city", "mexico", "mx", "cdmx"},
		"sao paulo":    {"sao paulo", "brazil"},
		"buenos aires": {"buenos aires", "argentina"},
		"santiago":     {"santiago", "chile"},
		"bogota":       {"bogota", "colombia"},

		// Other patterns
		"tel aviv": {"tel aviv", "israel"},
		"emea":     {"emea", "europe", "europe middle east africa"},
		"apac":     {"apac", "asia pacific", "asia-pacific"},
		"latam":    {"latam", "latin america"},
		"mena":     {"mena", "middle east north africa"},
	}
}
