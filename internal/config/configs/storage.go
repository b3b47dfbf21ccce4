package configs

import "time"

// Storage configures the S3 compatible bucket that receives variant media.
// Prefer IAM roles or the standard AWS_* variables over static keys.
type Storage struct {
	Bucket          string        `env:"BUCKET" envDefault:""`
	Region          string        `env:"REGION" envDefault:"us-east-1"`
	Endpoint        string        `env:"ENDPOINT" envDefault:""`
	AccessKeyID     string        `env:"ACCESS_KEY_ID" envDefault:""`
	SecretAccessKey string        `env:"SECRET_ACCESS_KEY" envDefault:""`
	UsePathStyle    bool          `env:"USE_PATH_STYLE" envDefault:"false"`
	KeyPrefix       string        `env:"KEY_PREFIX" envDefault:"media/"`
	URLTTL          time.Duration `env:"URL_TTL" envDefault:"15m"`
}
