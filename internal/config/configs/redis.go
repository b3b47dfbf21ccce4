package configs

// Redis configures the cache for finished analyses. An empty Addr turns
// caching off.
type Redis struct {
	Addr     string `env:"ADDRESS" envDefault:""`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB" envDefault:"0"`
}
