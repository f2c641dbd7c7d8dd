package namesdataset

import (
	"log/slog"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Default asset locations. Paths are tried on the filesystem first and then
// against the archives bundled into the package.
const (
	DefaultFirstNamesPath = "data/first_names.zip"
	DefaultLastNamesPath  = "data/last_names.zip"
)

// Config contains the dataset locations used by New.
//
// An empty path means the dataset is not configured at all: the matching
// accessor returns nil and TopNames reports ErrNoDataset for first names.
type Config struct {
	FirstNamesPath string `toml:"first_names_path"`
	LastNamesPath  string `toml:"last_names_path"`
}

// settings is the full construction state assembled from options.
type settings struct {
	config   Config
	resolver CountryResolver
	logger   *slog.Logger
}

// Option is a functional option for configuring a NameDataset.
type Option func(*settings)

// WithFirstNamesPath sets the first-name archive location.
func WithFirstNamesPath(p string) Option {
	return func(s *settings) {
		s.config.FirstNamesPath = p
	}
}

// WithLastNamesPath sets the last-name archive location.
func WithLastNamesPath(p string) Option {
	return func(s *settings) {
		s.config.LastNamesPath = p
	}
}

// WithConfig replaces both dataset locations.
func WithConfig(cfg Config) Option {
	return func(s *settings) {
		s.config = cfg
	}
}

// WithCountryResolver sets the resolver used to present country codes.
// A nil resolver is ignored.
func WithCountryResolver(r CountryResolver) Option {
	return func(s *settings) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithLogger sets the logger used for load diagnostics. A nil logger is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// DefaultConfig returns the bundled asset locations.
func DefaultConfig() Config {
	return Config{
		FirstNamesPath: DefaultFirstNamesPath,
		LastNamesPath:  DefaultLastNamesPath,
	}
}

func defaultSettings() *settings {
	return &settings{
		config:   DefaultConfig(),
		resolver: ISOResolver(),
		logger:   slog.Default(),
	}
}

// LoadConfig reads a TOML file with first_names_path and last_names_path keys.
// Keys absent from the file keep their default values; unknown keys are an error.
//
//	first_names_path = "/srv/names/first_names.zip"
//	last_names_path  = ""   # disable last names
func LoadConfig(p string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(p, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "decoding config %s", p)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Errorf("config %s: unknown keys %v", p, undecoded)
	}
	return cfg, nil
}
