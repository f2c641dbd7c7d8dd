// Package namesdataset looks up demographic metadata for first and last names.
//
// Two datasets, first names and last names, are loaded once from zipped JSON
// archives when a NameDataset is constructed. Each maps a normalized name to
// the countries it is used in, its gender split and its popularity rank per
// country. Lookups never modify the loaded data, so a NameDataset is safe for
// concurrent use.
//
//	nd := namesdataset.New()
//	res := nd.Search("  john ")
//	fmt.Println(res.FirstName.Gender["Male"])
package namesdataset

import (
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ErrInvalidArgument is returned when a query argument is out of range.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNoDataset is returned when an operation needs a dataset that was not configured.
	ErrNoDataset = errors.New("no dataset loaded")
)

// DefaultTopN is the conventional number of names to request from TopNames.
const DefaultTopN = 10

// GenderUnknown labels TopNames buckets for names without gender data.
const GenderUnknown = "N/A"

var genderNames = map[string]string{
	"M": "Male",
	"F": "Female",
}

// NameDataset answers queries over the loaded first- and last-name datasets.
type NameDataset struct {
	firstNames *Dataset
	lastNames  *Dataset
	resolver   CountryResolver
}

// NameMetadata is the presented form of a NameRecord: country codes are
// replaced by country names and gender codes by "Male"/"Female".
type NameMetadata struct {
	Country map[string]float64 `json:"country"`
	Gender  map[string]float64 `json:"gender"`
	Rank    map[string]int     `json:"rank"`
}

// SearchResult holds the metadata found for a name on both sides.
// A side with no match holds empty, non-nil maps.
type SearchResult struct {
	FirstName NameMetadata `json:"first_name"`
	LastName  NameMetadata `json:"last_name"`
}

// TopNamesOptions narrows TopNames. Empty fields do not filter.
type TopNamesOptions struct {
	Gender  string // a value starting with "m" (any case) selects male names, anything else female
	Country string // alpha-2 code, compared exactly
}

// New loads the configured datasets and returns a ready NameDataset.
// It never fails: an archive that is missing, unreadable or malformed leaves
// an empty dataset in its place and the failure is logged.
//
//	nd := New(WithFirstNamesPath("/srv/first_names.zip"), WithLastNamesPath(""))
func New(opts ...Option) *NameDataset {
	s := defaultSettings()
	for _, opt := range opts {
		opt(s)
	}

	return &NameDataset{
		firstNames: loadDataset(s.config.FirstNamesPath, s.logger),
		lastNames:  loadDataset(s.config.LastNamesPath, s.logger),
		resolver:   s.resolver,
	}
}

// Default returns a shared NameDataset built from the bundled assets,
// loading it on first call.
var Default = sync.OnceValue(func() *NameDataset {
	return New()
})

// FirstNames returns the first-name dataset, or nil if none was configured.
func (nd *NameDataset) FirstNames() *Dataset { return nd.firstNames }

// LastNames returns the last-name dataset, or nil if none was configured.
func (nd *NameDataset) LastNames() *Dataset { return nd.lastNames }

// Normalize trims surrounding whitespace, title-cases the first character
// and lower-cases the rest: "  jOHN " -> "John". It is the only transform
// applied to lookup keys.
func Normalize(name string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		return ""
	}
	_, size := utf8.DecodeRuneInString(s)
	// Casers carry state and are not safe to share between goroutines.
	return cases.Title(language.Und).String(s[:size]) + cases.Lower(language.Und).String(s[size:])
}

// Search looks up the normalized name in both datasets.
func (nd *NameDataset) Search(name string) SearchResult {
	res := SearchResult{
		FirstName: emptyMetadata(),
		LastName:  emptyMetadata(),
	}

	key := Normalize(name)
	if key == "" {
		return res
	}
	if rec, ok := nd.firstNames.lookup(key); ok {
		res.FirstName = nd.present(rec)
	}
	if rec, ok := nd.lastNames.lookup(key); ok {
		res.LastName = nd.present(rec)
	}
	return res
}

// SearchPtr is Search for an optional name; nil yields the empty result.
func (nd *NameDataset) SearchPtr(name *string) SearchResult {
	if name == nil {
		return nd.Search("")
	}
	return nd.Search(*name)
}

func emptyMetadata() NameMetadata {
	return NameMetadata{
		Country: map[string]float64{},
		Gender:  map[string]float64{},
		Rank:    map[string]int{},
	}
}

func (nd *NameDataset) present(rec NameRecord) NameMetadata {
	return NameMetadata{
		Country: resolveCountryKeys(nd.resolver, rec.Country),
		Gender:  genderLabels(rec.Gender),
		Rank:    resolveCountryKeys(nd.resolver, rec.Rank),
	}
}

// resolveCountryKeys rewrites alpha-2 keys to country names, dropping codes
// the resolver does not recognize. When several codes resolve to the same
// name, the value of the code that sorts first wins ("US" before "us").
func resolveCountryKeys[V any](r CountryResolver, in map[string]V) map[string]V {
	out := make(map[string]V, len(in))
	for _, code := range sortedKeys(in) {
		name, ok := r.CountryName(code)
		if !ok {
			continue
		}
		if _, taken := out[name]; !taken {
			out[name] = in[code]
		}
	}
	return out
}

// genderLabels rewrites "M" and "F" to "Male" and "Female". Any other code
// is passed through unchanged. On a collision the code that sorts first wins,
// so "M" takes precedence over a literal "Male".
func genderLabels(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for _, code := range sortedKeys(in) {
		label := code
		if l, ok := genderNames[code]; ok {
			label = l
		}
		if _, taken := out[label]; !taken {
			out[label] = in[code]
		}
	}
	return out
}

func sortedKeys[V any](in map[string]V) []string {
	keys := lo.Keys(in)
	sort.Strings(keys)
	return keys
}

// CountryCodes returns every country code referenced by a record's country
// mapping, sorted and deduplicated. The first-name dataset is used when it is
// configured, the last-name dataset otherwise. With alpha2 false the codes
// are resolved to country names and unrecognized codes are dropped.
func (nd *NameDataset) CountryCodes(alpha2 bool) []string {
	ds := nd.firstNames
	if ds == nil {
		ds = nd.lastNames
	}

	codes := lo.Uniq(lo.FlatMap(ds.order(), func(name string, _ int) []string {
		rec, _ := ds.lookup(name)
		return lo.Keys(rec.Country)
	}))
	sort.Strings(codes)

	if alpha2 {
		return codes
	}
	return lo.FilterMap(codes, func(code string, _ int) (string, bool) {
		return nd.resolver.CountryName(code)
	})
}

// rankedName is one accumulated TopNames entry.
type rankedName struct {
	name string
	rank int
}

// TopNames returns, per country code and gender label ("M", "F" or
// GenderUnknown), up to n first names ordered from best rank to worst.
// Names with equal rank keep dataset order.
//
//	top, err := nd.TopNames(5, TopNamesOptions{Gender: "female", Country: "US"})
//	// top["US"]["F"] == []string{"Mary", ...}
func (nd *NameDataset) TopNames(n int, opts ...TopNamesOptions) (map[string]map[string][]string, error) {
	if n <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "n must be positive, got %d", n)
	}
	if nd.firstNames == nil {
		return nil, errors.Wrap(ErrNoDataset, "top names need the first-name dataset")
	}

	var o TopNamesOptions
	if len(opts) > 0 {
		o = opts[0]
	}

	buckets := make(map[string]map[string][]rankedName)
	nd.firstNames.each(func(name string, rec NameRecord) {
		if o.Gender != "" && !matchesGender(rec, o.Gender) {
			return
		}
		label := genderLabel(rec.Gender)
		for country, rank := range rec.Rank {
			if o.Country != "" && country != o.Country {
				continue
			}
			byGender, ok := buckets[country]
			if !ok {
				byGender = make(map[string][]rankedName)
				buckets[country] = byGender
			}
			byGender[label] = append(byGender[label], rankedName{name: name, rank: rank})
		}
	})

	top := make(map[string]map[string][]string, len(buckets))
	for country, byGender := range buckets {
		top[country] = make(map[string][]string, len(byGender))
		for label, entries := range byGender {
			sort.SliceStable(entries, func(i, j int) bool {
				return entries[i].rank < entries[j].rank
			})
			top[country][label] = lo.Map(entries[:min(n, len(entries))], func(e rankedName, _ int) string {
				return e.name
			})
		}
	}
	return top, nil
}

// matchesGender reports whether rec carries the gender code selected by filter.
func matchesGender(rec NameRecord, filter string) bool {
	code := "F"
	if strings.HasPrefix(strings.ToLower(filter), "m") {
		code = "M"
	}
	_, ok := rec.Gender[code]
	return ok
}

// genderLabel picks a single label for a record's gender split. Ties go to "F".
func genderLabel(gender map[string]float64) string {
	switch len(gender) {
	case 0:
		return GenderUnknown
	case 1:
		for code := range gender {
			return code
		}
	}
	if gender["M"] > gender["F"] {
		return "M"
	}
	return "F"
}
