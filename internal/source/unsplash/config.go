package unsplash

// Config contains Unsplash search settings.
type Config struct {
	AccessKey string `env:"UNSPLASH_ACCESS_KEY"`
	BaseURL   string `env:"UNSPLASH_BASE_URL" envDefault:"https://api.unsplash.com"`
	Timeout   int    `env:"UNSPLASH_TIMEOUT"  envDefault:"10"`
	PerPage   int    `env:"UNSPLASH_PER_PAGE" envDefault:"5"`
}
