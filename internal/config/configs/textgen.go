package configs

import "time"

// TextGen configures the OpenAI compatible endpoint that phrases
// analyses. Without an API key analyses are returned without prose.
type TextGen struct {
	APIKey     string        `env:"API_KEY" envDefault:""`
	BaseURL    string        `env:"BASE_URL" envDefault:"https://api.openai.com"`
	Model      string        `env:"MODEL" envDefault:"gpt-4o-mini"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"30s"`
	MaxRetries int           `env:"MAX_RETRIES" envDefault:"2"`
}
