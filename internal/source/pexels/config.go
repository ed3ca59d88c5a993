package pexels

// Config contains Pexels search settings.
type Config struct {
	APIKey  string `env:"PEXELS_API_KEY"`
	BaseURL string `env:"PEXELS_BASE_URL" envDefault:"https://api.pexels.com/v1"`
	Timeout int    `env:"PEXELS_TIMEOUT"  envDefault:"10"`
	PerPage int    `env:"PEXELS_PER_PAGE" envDefault:"5"`
}
