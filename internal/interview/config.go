package interview

// Config holds generation parameters for every pipeline run.
type Config struct {
	MaxRetries         int     `env:"PIPELINE_MAX_RETRIES"          envDefault:"2"`
	Temperature        float64 `env:"PIPELINE_TEMPERATURE"          envDefault:"0.3"`
	QuestionsMaxTokens int     `env:"PIPELINE_QUESTIONS_MAX_TOKENS" envDefault:"2000"`
	TurnMaxTokens      int     `env:"PIPELINE_TURN_MAX_TOKENS"      envDefault:"1000"`
	RiskMaxTokens      int     `env:"PIPELINE_RISK_MAX_TOKENS"      envDefault:"1500"`
}

// DefaultConfig returns the production generation parameters.
func DefaultConfig() Config {
	return Config{
		MaxRetries:         2,
		Temperature:        0.3,
		QuestionsMaxTokens: 2000,
		TurnMaxTokens:      1000,
		RiskMaxTokens:      1500,
	}
}
