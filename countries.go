package namesdataset

import (
	"bufio"
	"bytes"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// CountryResolver turns an ISO 3166-1 alpha-2 code into a display name.
// ok is false for codes the resolver does not recognize; such codes are
// dropped from presented results.
type CountryResolver interface {
	CountryName(alpha2 string) (name string, ok bool)
}

// CountryResolverFunc adapts a plain function to CountryResolver.
type CountryResolverFunc func(alpha2 string) (string, bool)

// CountryName implements CountryResolver.
func (f CountryResolverFunc) CountryName(alpha2 string) (string, bool) {
	return f(alpha2)
}

// isoCountryNames is parsed once from the bundled data/iso3166.txt.
// Format: CODE,Name (the name may itself contain commas).
var isoCountryNames = sync.OnceValue(func() map[string]string {
	names := make(map[string]string, 256)
	raw, err := assetData.ReadFile("data/iso3166.txt")
	if err != nil {
		return names
	}

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		code, name, ok := strings.Cut(line, ",")
		if !ok {
			continue
		}
		names[strings.ToUpper(strings.TrimSpace(code))] = strings.TrimSpace(name)
	}
	return names
})

type isoResolver struct{}

func (isoResolver) CountryName(alpha2 string) (string, bool) {
	name, ok := isoCountryNames()[strings.ToUpper(alpha2)]
	return name, ok
}

// ISOResolver returns the default resolver, backed by the ISO 3166-1 English
// short names bundled with the package (e.g. "US" -> "United States of America").
func ISOResolver() CountryResolver {
	return isoResolver{}
}

// DisplayResolver returns a resolver that renders country names in the
// language of tag using CLDR display names, e.g. "DE" -> "Deutschland" for
// language.German.
func DisplayResolver(tag language.Tag) CountryResolver {
	namer := display.Regions(tag)
	return CountryResolverFunc(func(alpha2 string) (string, bool) {
		if len(alpha2) != 2 {
			return "", false
		}
		region, err := language.ParseRegion(alpha2)
		if err != nil || !region.IsCountry() {
			return "", false
		}
		name := namer.Name(region)
		return name, name != ""
	})
}
