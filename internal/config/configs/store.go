package configs

// Store selects the persistence adapter. "postgres" is the production
// store; "memory" keeps everything in process and is meant for local runs.
type Store struct {
	Driver string `env:"DRIVER" envDefault:"postgres"`
}
