package market

import (
	"sort"
	"strings"
	"time"

	"arthagpt/internal/domain"
)

// staticAsOf is the date the bundled reference figures were taken.
var staticAsOf = time.Date(2025, time.January, 31, 15, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))

// staticQuotes are indicative figures used when live data is unavailable.
var staticQuotes = map[string]domain.Quote{
	"NIFTY50":       {Symbol: "NIFTY50", Name: "NIFTY 50", Price: 23508.40, Change: 258.90, ChangePercent: 1.11, Currency: "INR"},
	"SENSEX":        {Symbol: "SENSEX", Name: "S&P BSE SENSEX", Price: 77500.57, Change: 740.76, ChangePercent: 0.97, Currency: "INR"},
	"GOLD":          {Symbol: "GOLD", Name: "Gold 24K (per 10g)", Price: 82450.00, Change: 310.00, ChangePercent: 0.38, Currency: "INR"},
	"SILVER":        {Symbol: "SILVER", Name: "Silver (per kg)", Price: 93500.00, Change: -420.00, ChangePercent: -0.45, Currency: "INR"},
	"AXISBLUECHIP":  {Symbol: "AXISBLUECHIP", Name: "Axis Bluechip Fund - Direct Growth", Price: 62.18, Change: 0.41, ChangePercent: 0.66, Currency: "INR"},
	"MIRAELARGECAP": {Symbol: "MIRAELARGECAP", Name: "Mirae Asset Large Cap Fund - Direct Growth", Price: 118.74, Change: 0.93, ChangePercent: 0.79, Currency: "INR"},
	"PPFAS":         {Symbol: "PPFAS", Name: "Parag Parikh Flexi Cap Fund - Direct Growth", Price: 89.65, Change: 0.52, ChangePercent: 0.58, Currency: "INR"},
	"SBISMALLCAP":   {Symbol: "SBISMALLCAP", Name: "SBI Small Cap Fund - Direct Growth", Price: 186.22, Change: -1.37, ChangePercent: -0.73, Currency: "INR"},
	"HDFCMIDCAP":    {Symbol: "HDFCMIDCAP", Name: "HDFC Mid-Cap Opportunities Fund - Direct Growth", Price: 201.09, Change: 1.84, ChangePercent: 0.92, Currency: "INR"},
}

var aliases = map[string]string{
	"NIFTY":         "NIFTY50",
	"BSESENSEX":     "SENSEX",
	"GOLD24K":       "GOLD",
	"AXIS":          "AXISBLUECHIP",
	"MIRAE":         "MIRAELARGECAP",
	"PARAGPARIKH":   "PPFAS",
	"SBISMALL":      "SBISMALLCAP",
	"HDFCMIDCAPOPP": "HDFCMIDCAP",
}

// Normalize canonicalizes a user-supplied symbol: upper case with spaces,
// dashes and underscores removed, and known aliases resolved.
func Normalize(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
	if canonical, ok := aliases[s]; ok {
		return canonical
	}
	return s
}

func staticQuote(symbol string) (domain.Quote, bool) {
	q, ok := staticQuotes[symbol]
	if !ok {
		return domain.Quote{}, false
	}
	q.Source = "static"
	q.AsOf = staticAsOf
	q.Fallback = true
	return q, true
}

// StaticSymbols lists every symbol with a bundled reference quote.
func StaticSymbols() []string {
	out := make([]string, 0, len(staticQuotes))
	for s := range staticQuotes {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
