package field

import (
	"regexp"
	"strings"
)

var (
	firstCap = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	allCap   = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// Normalize converts an API key to its predicate form:
// "RouteTableId" -> "route_table_id", "DNSName" -> "dns_name".
func Normalize(key string) string {
	s := firstCap.ReplaceAllString(key, "${1}_${2}")
	s = allCap.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}
