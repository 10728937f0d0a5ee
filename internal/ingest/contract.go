package ingest

import (
	"regexp"
	"strconv"
	"time"

	"tradereports/internal/event"
)

// Contract identifiers pack asset, timeframe and expiry into one token,
// e.g. KXBTC15M-26FEB031015-15: date, HHMM and a trailing seconds part.
var contractIDRe = regexp.MustCompile(`KX([A-Z]+)(15M|D)-(\d{2})([A-Z]{3})(\d{2})(\d{4})-(\d{2})`)

var monthAbbrev = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// DecodeContract decodes a packed contract identifier. It never fails
// loudly: a string that does not match the grammar yields ok=false.
//
// Years carry only a two-digit suffix, so everything is anchored to
// 2000-2099. An unrecognized month abbreviation falls back to January;
// historical reports depend on that exact behavior.
func DecodeContract(s string) (event.ContractInfo, bool) {
	m := contractIDRe.FindStringSubmatch(s)
	if m == nil {
		return event.ContractInfo{}, false
	}

	year, _ := strconv.Atoi(m[3])
	month, ok := monthAbbrev[m[4]]
	if !ok {
		month = time.January
	}
	day, _ := strconv.Atoi(m[5])
	hour, _ := strconv.Atoi(m[6][:2])
	minute, _ := strconv.Atoi(m[6][2:])
	second, _ := strconv.Atoi(m[7])

	timeframe := m[2]
	if timeframe == "D" {
		timeframe = "1HR"
	}

	return event.ContractInfo{
		Asset:     m[1],
		Timeframe: timeframe,
		Expiry:    time.Date(2000+year, month, day, hour, minute, second, 0, time.UTC),
		Raw:       m[0],
	}, true
}
