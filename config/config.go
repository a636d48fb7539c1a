package config

import "time"

type Config struct {
	AppName                       string   `env:"APP_NAME" env-default:"contract-intel"`
	Port                          int      `env:"PORT" env-default:"3004"`
	LogLevel                      string   `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool     `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int      `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int      `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int      `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	MaxHeaderBytes                int      `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB
	AllowOrigins                  []string `env:"HTTP_SERVER_ALLOW_ORIGINS" env-default:"*"`
	AllowMethods                  []string `env:"HTTP_SERVER_ALLOW_METHODS" env-default:"GET,POST,PUT,DELETE"`

	// PostgreSQL (mapping results, processed documents, alert log)
	DatabaseDriver                string        `env:"DB_DRIVER" env-default:"postgres"`
	DatabaseHost                  string        `env:"DB_HOST" env-default:""`
	DatabasePort                  string        `env:"DB_PORT" env-default:"5432"`
	DatabaseUserName              string        `env:"DB_USER_NAME" env-default:""`
	DatabasePassword              string        `env:"DB_PASSWORD" env-default:""`
	DatabaseName                  string        `env:"DB_NAME" env-default:"contract_intel"`
	DatabaseSSLMode               string        `env:"DB_SQL_MODE" env-default:"disable"`
	DatabaseMaxOpenConns          int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DatabaseMaxIdleConns          int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	DatabaseConnMaxLifetime       time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	DatabaseMigrationFolderPath   string        `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	DatabaseMigrationVersion      int           `env:"DB_MIGRATION_VERSION" env-default:"0"`
	DatabaseMigrationForce        int           `env:"DB_MIGRATION_FORCE" env-default:"0"`
	DatabaseMigrationAutoRollback bool          `env:"DB_MIGRATION_AUTO_ROLLBACK" env-default:"true"`

	// ERPNext (system of record)
	ERPNextURL           string        `env:"ERPNEXT_URL" env-default:"http://localhost:8000"`
	ERPNextAPIKey        string        `env:"ERPNEXT_API_KEY" env-default:""`
	ERPNextAPISecret     string        `env:"ERPNEXT_API_SECRET" env-default:""`
	ERPNextTimeout       time.Duration `env:"ERPNEXT_TIMEOUT" env-default:"30s"`
	ERPNextRatePerSecond float64       `env:"ERPNEXT_RATE_PER_SECOND" env-default:"10"`
	ERPNextRateBurst     int           `env:"ERPNEXT_RATE_BURST" env-default:"20"`

	// Client matching
	ClientMappingConfidenceThreshold float64       `env:"CLIENT_MAPPING_CONFIDENCE_THRESHOLD" env-default:"0.75"`
	ClientRegistryCacheTTL           time.Duration `env:"CLIENT_REGISTRY_CACHE_TTL" env-default:"1h"`

	// Extraction (Anthropic messages API)
	AnthropicAPIKey               string  `env:"ANTHROPIC_API_KEY" env-default:""`
	ExtractionModel               string  `env:"EXTRACTION_MODEL" env-default:"claude-sonnet-4-20250514"`
	ExtractionMaxTokens           int     `env:"EXTRACTION_MAX_TOKENS" env-default:"4096"`
	ExtractionConfidenceThreshold float64 `env:"EXTRACTION_CONFIDENCE_THRESHOLD" env-default:"0.7"`

	// Processing
	ProcessingInterval  time.Duration `env:"PROCESSING_INTERVAL" env-default:"300s"`
	ProcessingBatchSize int           `env:"PROCESSING_BATCH_SIZE" env-default:"50"`

	// Alerts
	AlertPeriodDays     []int `env:"ALERT_PERIODS" env-default:"90,60,30,14,7"`
	ExpirationLookahead int   `env:"EXPIRATION_LOOKAHEAD_DAYS" env-default:"90"`

	// Kafka Consumer (document intake)
	KafkaBrokers         []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaInputTopic      string   `env:"KAFKA_INPUT_TOPIC" env-default:"document-events"`
	KafkaConsumerGroup   string   `env:"KAFKA_CONSUMER_GROUP" env-default:"contract-intel-consumer"`
	KafkaConsumerEnabled bool     `env:"KAFKA_CONSUMER_ENABLED" env-default:"true"`

	// Kafka Producer settings
	KafkaOutputTopic  string `env:"KAFKA_OUTPUT_TOPIC" env-default:"contract-intel-events"`
	KafkaBatchSize    int    `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout int    `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks int    `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression  string `env:"KAFKA_COMPRESSION" env-default:"snappy"`

	// Tracing
	TracingEnabled      bool   `env:"TRACING_ENABLED" env-default:"false"`
	TracingOTLPEndpoint string `env:"TRACING_OTLP_ENDPOINT" env-default:"localhost:4317"`
	TracingOTLPProtocol string `env:"TRACING_OTLP_PROTOCOL" env-default:"grpc"`
	TracingInsecure     bool   `env:"TRACING_INSECURE" env-default:"true"`
}
