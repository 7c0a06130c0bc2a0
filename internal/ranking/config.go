package ranking

// Config holds the weights of the relevance model and the fuzzy reranker.
type Config struct {
	// Weights of the content-path combined score
	RelevanceWeight  float64 `yaml:"relevance_weight"`  // default: 0.7
	PopularityWeight float64 `yaml:"popularity_weight"` // default: 0.3
	RelevanceScale   float64 `yaml:"relevance_scale"`   // default: 10

	// Fuzzy reranking
	FuzzyThreshold          int     `yaml:"fuzzy_threshold"`           // default: 3
	CourseDistanceDecay     float64 `yaml:"course_distance_decay"`     // default: 10
	ProfessorDistanceDecay  float64 `yaml:"professor_distance_decay"`  // default: 5
	DepartmentDistanceDecay float64 `yaml:"department_distance_decay"` // default: 3
}

// DefaultConfig returns the default ranking configuration.
func DefaultConfig() *Config {
	return &Config{
		RelevanceWeight:  0.7,
		PopularityWeight: 0.3,
		RelevanceScale:   10,

		FuzzyThreshold:          3,
		CourseDistanceDecay:     10,
		ProfessorDistanceDecay:  5,
		DepartmentDistanceDecay: 3,
	}
}

// ApplyDefaults fills in zero values with defaults. The two weights are only defaulted
// together, so an explicit 1/0 split survives.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()

	if c.RelevanceWeight == 0 && c.PopularityWeight == 0 {
		c.RelevanceWeight = defaults.RelevanceWeight
		c.PopularityWeight = defaults.PopularityWeight
	}
	if c.RelevanceScale == 0 {
		c.RelevanceScale = defaults.RelevanceScale
	}
	if c.FuzzyThreshold == 0 {
		c.FuzzyThreshold = defaults.FuzzyThreshold
	}
	if c.CourseDistanceDecay == 0 {
		c.CourseDistanceDecay = defaults.CourseDistanceDecay
	}
	if c.ProfessorDistanceDecay == 0 {
		c.ProfessorDistanceDecay = defaults.ProfessorDistanceDecay
	}
	if c.DepartmentDistanceDecay == 0 {
		c.DepartmentDistanceDecay = defaults.DepartmentDistanceDecay
	}
}
