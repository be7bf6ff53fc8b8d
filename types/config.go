package types

import "time"

// Config is a struct to hold the configuration data
type Config struct {
	Logging struct {
		OutputLevel  string `yaml:"outputLevel" envconfig:"LOGGING_OUTPUT_LEVEL"`
		OutputStderr bool   `yaml:"outputStderr" envconfig:"LOGGING_OUTPUT_STDERR"`

		FilePath  string `yaml:"filePath" envconfig:"LOGGING_FILE_PATH"`
		FileLevel string `yaml:"fileLevel" envconfig:"LOGGING_FILE_LEVEL"`
	} `yaml:"logging"`

	Server struct {
		Port string `yaml:"port" envconfig:"SERVER_PORT"`
		Host string `yaml:"host" envconfig:"SERVER_HOST"`

		HttpReadTimeout  time.Duration `yaml:"httpReadTimeout" envconfig:"SERVER_HTTP_READ_TIMEOUT"`
		HttpWriteTimeout time.Duration `yaml:"httpWriteTimeout" envconfig:"SERVER_HTTP_WRITE_TIMEOUT"`
		HttpIdleTimeout  time.Duration `yaml:"httpIdleTimeout" envconfig:"SERVER_HTTP_IDLE_TIMEOUT"`
		Pprof            bool          `yaml:"pprof" envconfig:"SERVER_PPROF"`
	} `yaml:"server"`

	Api struct {
		CorsOrigins []string `yaml:"corsOrigins" envconfig:"API_CORS_ORIGINS"`

		AuthSecret              string   `yaml:"authSecret" envconfig:"API_AUTH_SECRET"`
		RequireAuth             bool     `yaml:"requireAuth" envconfig:"API_REQUIRE_AUTH"`
		DefaultRateLimit        uint     `yaml:"defaultRateLimit" envconfig:"API_DEFAULT_RATE_LIMIT"`
		DefaultRateLimitBurst   uint     `yaml:"defaultRateLimitBurst" envconfig:"API_DEFAULT_RATE_LIMIT_BURST"`
		DisableDefaultRateLimit bool     `yaml:"disableDefaultRateLimit" envconfig:"API_DISABLE_DEFAULT_RATE_LIMIT"`
		WhitelistedIPs          []string `yaml:"whitelistedIPs" envconfig:"API_WHITELISTED_IPS"`
	} `yaml:"api"`

	RateLimit struct {
		Enabled    bool `yaml:"enabled" envconfig:"RATELIMIT_ENABLED"`
		ProxyCount uint `yaml:"proxyCount" envconfig:"RATELIMIT_PROXY_COUNT"`
		Rate       uint `yaml:"rate" envconfig:"RATELIMIT_RATE"`
		Burst      uint `yaml:"burst" envconfig:"RATELIMIT_BURST"`
	} `yaml:"rateLimit"`

	Chains []ChainConfig `yaml:"chains"`

	BalanceApi struct {
		Endpoint string        `yaml:"endpoint" envconfig:"BALANCEAPI_ENDPOINT"`
		ApiKey   string        `yaml:"apiKey" envconfig:"BALANCEAPI_API_KEY"`
		Timeout  time.Duration `yaml:"timeout" envconfig:"BALANCEAPI_TIMEOUT"`
		CacheTtl time.Duration `yaml:"cacheTtl" envconfig:"BALANCEAPI_CACHE_TTL"`
	} `yaml:"balanceApi"`

	MintApi struct {
		Endpoint string        `yaml:"endpoint" envconfig:"MINTAPI_ENDPOINT"`
		ApiKey   string        `yaml:"apiKey" envconfig:"MINTAPI_API_KEY"`
		Timeout  time.Duration `yaml:"timeout" envconfig:"MINTAPI_TIMEOUT"`
	} `yaml:"mintApi"`

	Mint struct {
		ConfirmInterval  time.Duration `yaml:"confirmInterval" envconfig:"MINT_CONFIRM_INTERVAL"`
		ConfirmTimeout   time.Duration `yaml:"confirmTimeout" envconfig:"MINT_CONFIRM_TIMEOUT"`
		AttemptRetention time.Duration `yaml:"attemptRetention" envconfig:"MINT_ATTEMPT_RETENTION"`
		DisableBatching  bool          `yaml:"disableBatching" envconfig:"MINT_DISABLE_BATCHING"`
	} `yaml:"mint"`

	TokenSearch struct {
		Threshold    float64       `yaml:"threshold" envconfig:"TOKENSEARCH_THRESHOLD"`
		MaxResults   int           `yaml:"maxResults" envconfig:"TOKENSEARCH_MAX_RESULTS"`
		DisableFuzzy bool          `yaml:"disableFuzzy" envconfig:"TOKENSEARCH_DISABLE_FUZZY"`
		ListCacheTtl time.Duration `yaml:"listCacheTtl" envconfig:"TOKENSEARCH_LIST_CACHE_TTL"`
	} `yaml:"tokenSearch"`

	Cache struct {
		LocalCacheSize   int    `yaml:"localCacheSize" envconfig:"CACHE_LOCAL_CACHE_SIZE"`
		RedisCacheAddr   string `yaml:"redisCacheAddr" envconfig:"CACHE_REDIS_CACHE_ADDR"`
		RedisCachePrefix string `yaml:"redisCachePrefix" envconfig:"CACHE_REDIS_CACHE_PREFIX"`
	} `yaml:"cache"`

	Database struct {
		Engine string `yaml:"engine" envconfig:"DATABASE_ENGINE"`
		Sqlite struct {
			File string `yaml:"file" envconfig:"DATABASE_SQLITE_FILE"`

			MaxOpenConns int `yaml:"maxOpenConns" envconfig:"DATABASE_SQLITE_MAX_OPEN_CONNS"`
			MaxIdleConns int `yaml:"maxIdleConns" envconfig:"DATABASE_SQLITE_MAX_IDLE_CONNS"`
		} `yaml:"sqlite"`
		Pgsql struct {
			Username string `yaml:"user" envconfig:"DATABASE_PGSQL_USERNAME"`
			Password string `yaml:"password" envconfig:"DATABASE_PGSQL_PASSWORD"`
			Name     string `yaml:"name" envconfig:"DATABASE_PGSQL_NAME"`
			Host     string `yaml:"host" envconfig:"DATABASE_PGSQL_HOST"`
			Port     string `yaml:"port" envconfig:"DATABASE_PGSQL_PORT"`

			MaxOpenConns int `yaml:"maxOpenConns" envconfig:"DATABASE_PGSQL_MAX_OPEN_CONNS"`
			MaxIdleConns int `yaml:"maxIdleConns" envconfig:"DATABASE_PGSQL_MAX_IDLE_CONNS"`
		} `yaml:"pgsql"`
	} `yaml:"database"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" envconfig:"METRICS_ENABLED"`
		Public  bool   `yaml:"public" envconfig:"METRICS_PUBLIC"`
		Host    string `yaml:"host" envconfig:"METRICS_HOST"`
		Port    string `yaml:"port" envconfig:"METRICS_PORT"`
	} `yaml:"metrics"`
}

// ChainConfig describes one EVM chain the service talks to.
type ChainConfig struct {
	Name         string           `yaml:"name"`
	ChainId      string           `yaml:"chainId"`
	NativeSymbol string           `yaml:"nativeSymbol"`
	NativeName   string           `yaml:"nativeName"`
	Endpoint     string           `yaml:"endpoint"`
	Endpoints    []EndpointConfig `yaml:"endpoints"`
	TokenListUrl string           `yaml:"tokenListUrl"`
}

type EndpointConfig struct {
	Url     string            `yaml:"url"`
	Name    string            `yaml:"name"`
	Headers map[string]string `yaml:"headers"`
}
