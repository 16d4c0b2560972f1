package model

// AppConfig holds user preferences and the default packer settings.
type AppConfig struct {
	// Default packer settings applied to every run
	DefaultAlgorithm   Algorithm `json:"default_algorithm" mapstructure:"default_algorithm"`
	DefaultParallel    bool      `json:"default_parallel" mapstructure:"default_parallel"`
	DefaultPopulation  int       `json:"default_population" mapstructure:"default_population"`
	DefaultGenerations int       `json:"default_generations" mapstructure:"default_generations"`
	DefaultMutation    float64   `json:"default_mutation_rate" mapstructure:"default_mutation_rate"`
	DefaultSeed        int64     `json:"default_seed" mapstructure:"default_seed"`

	// Application preferences
	LogLevel       string   `json:"log_level" mapstructure:"log_level"` // "debug", "info", "warn", "error"
	RecentRequests []string `json:"recent_requests" mapstructure:"recent_requests"`
}

// DefaultAppConfig returns an AppConfig populated with the values from
// DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultAlgorithm:   defaults.Algorithm,
		DefaultParallel:    defaults.Parallel,
		DefaultPopulation:  defaults.Population,
		DefaultGenerations: defaults.Generations,
		DefaultMutation:    defaults.Mutation,
		DefaultSeed:        defaults.Seed,
		LogLevel:           "info",
		RecentRequests:     []string{},
	}
}

// ApplyToSettings copies the default values from AppConfig into a Settings struct.
func (c AppConfig) ApplyToSettings(s *Settings) {
	if algo, ok := ParseAlgorithm(string(c.DefaultAlgorithm)); ok {
		s.Algorithm = algo
	}
	s.Parallel = c.DefaultParallel
	if c.DefaultPopulation > 0 {
		s.Population = c.DefaultPopulation
	}
	if c.DefaultGenerations > 0 {
		s.Generations = c.DefaultGenerations
	}
	if c.DefaultMutation > 0 {
		s.Mutation = c.DefaultMutation
	}
	s.Seed = c.DefaultSeed
}

// AddRecentRequest records path as the most recently used request file,
// keeping at most max entries without duplicates.
func (c *AppConfig) AddRecentRequest(path string, max int) {
	recent := []string{path}
	for _, p := range c.RecentRequests {
		if p != path && len(recent) < max {
			recent = append(recent, p)
		}
	}
	c.RecentRequests = recent
}
