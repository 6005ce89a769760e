package redis

// Config contains Redis connection settings for the preference cache.
type Config struct {
	Addr      string `env:"REDIS_ADDR"             envDefault:"localhost:6379"`
	Password  string `env:"REDIS_PASSWORD"`
	DB        int    `env:"REDIS_DB"               envDefault:"0"`
	TTL       int    `env:"REDIS_PREFERENCES_TTL"  envDefault:"604800"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX"       envDefault:"pressroom:prefs:"`
}
