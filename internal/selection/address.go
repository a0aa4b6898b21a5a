package selection

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/fieldrep-cli/internal/model"
)

var cityCaser = cases.Title(language.AmericanEnglish)

// ResolveAddress builds the single-line routable address for a customer:
// "{address} {city}, {state} {zip}" with missing optional fields simply
// omitted. The result is a best-effort human-readable postal address for
// provider geocoding, trimmed of leading and trailing whitespace.
func ResolveAddress(c model.Customer) string {
	var b strings.Builder
	if addr := strings.TrimSpace(c.Address); addr != "" {
		b.WriteString(addr)
		b.WriteString(" ")
	}
	b.WriteString(strings.TrimSpace(c.City))
	b.WriteString(", ")
	b.WriteString(strings.TrimSpace(c.State))
	if zip := strings.TrimSpace(c.Zip); zip != "" {
		b.WriteString(" ")
		b.WriteString(zip)
	}
	return strings.TrimSpace(b.String())
}

// DisplayCity normalizes a city name for listing: trimmed and title-cased,
// so "sioux falls " and "SIOUX FALLS" render the same.
func DisplayCity(city string) string {
	return cityCaser.String(strings.ToLower(strings.TrimSpace(city)))
}
