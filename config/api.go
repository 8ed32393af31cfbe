package config

type ApiConfig struct {
	Mint struct {
		URL  string `toml:"url" env:"MINT_URL"`
		Unit string `toml:"unit" env:"UNIT" env-default:"sat"`
	} `toml:"mint"`

	Exchange struct {
		Provider string `toml:"provider" env:"PRICE_PROVIDER" env-default:"coinbase"`
	} `toml:"exchange"`

	Limits struct {
		MaxBalance int64 `toml:"max_balance" env:"MAX_BALANCE" env-default:"100000"`
		MaxSend    int64 `toml:"max_send" env:"MAX_SEND" env-default:"50000"`
		MaxPay     int64 `toml:"max_pay" env:"MAX_PAY" env-default:"50000"`
	} `toml:"limits"`

	RateLimit struct {
		Max             int `toml:"max" env:"RATE_LIMIT_MAX" env-default:"100"`
		CreateWalletMax int `toml:"create_wallet_max" env:"RATE_LIMIT_CREATE_WALLET_MAX" env-default:"5"`
		WindowSeconds   int `toml:"window_seconds" env:"RATE_LIMIT_WINDOW" env-default:"60"`
	} `toml:"rate_limit"`

	Service struct {
		Status string `toml:"status" env:"SERVICE_STATUS" env-default:"READY"`
		Help   string `toml:"help" env:"SERVICE_HELP"`
		Terms  string `toml:"terms" env:"SERVICE_TERMS"`
		Port   string `toml:"port" env:"PORT" env-default:"8080"`
	} `toml:"service"`

	Database struct {
		Host            string `toml:"host" env:"DATABASE_HOST"`
		Port            string `toml:"port" env:"DATABASE_PORT" env-default:"5432"`
		User            string `toml:"user" env:"DATABASE_USER"`
		Password        string `toml:"password" env:"DATABASE_PASSWORD"`
		DB              string `toml:"db" env:"DATABASE_NAME"`
		SslMode         string `toml:"ssl_mode" env:"DATABASE_SSL_MODE" env-default:"disable"`
		MaxConns        int    `toml:"max_conns" env:"DATABASE_MAX_CONNS" env-default:"25"`
		MinConns        int    `toml:"min_conns" env:"DATABASE_MIN_CONNS" env-default:"5"`
		MaxConnLifetime int    `toml:"max_conn_lifetime" env:"DATABASE_MAX_CONN_LIFETIME" env-default:"5"`
		MaxConnIdleTime int    `toml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"1"`
	} `toml:"database"`

	Redis struct {
		Host     string `toml:"host" env:"REDIS_HOST"`
		Port     string `toml:"port" env:"REDIS_PORT" env-default:"6379"`
		Password string `toml:"password" env:"REDIS_PASSWORD"`
		DB       int    `toml:"db" env:"REDIS_DB" env-default:"0"`
	} `toml:"redis"`
}
