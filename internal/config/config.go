// Package config загружает настройки шлюза: значения по умолчанию,
// опциональный файл и переменные окружения с префиксом GATEWAY_.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix: префикс переменных окружения (GATEWAY_HTTP_ADDR и т.д.).
const EnvPrefix = "GATEWAY"

// Config: полная конфигурация процесса.
type Config struct {
	Service      ServiceConfig
	HTTP         HTTPConfig
	GRPC         GRPCConfig
	Metrics      MetricsConfig
	External     ExternalConfig
	MockExternal MockExternalConfig
	Kafka        KafkaConfig
	Tracing      TracingConfig
	Log          LogConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type GRPCConfig struct {
	Addr string
}

type MetricsConfig struct {
	Addr string
}

// ExternalConfig: параметры обращения к внешней системе.
type ExternalConfig struct {
	// Timeout ограничивает одну сетевую попытку.
	Timeout time.Duration
	// DefaultEndpoint подставляется, если запрос не указал endpoint.
	DefaultEndpoint string
	// Location: часовой пояс дат внешней системы (IANA), по умолчанию UTC.
	// Даты на проводе идут без смещения, поэтому допускаются только пояса без
	// перехода на летнее время: иначе час перевода назад неоднозначен.
	Location string
}

// MockExternalConfig включает встроенный имитатор внешней системы на HTTP-сервере шлюза.
type MockExternalConfig struct {
	Enabled   bool
	SlowDelay time.Duration
}

// KafkaConfig: публикация событий интеграции; пустой список брокеров отключает Kafka.
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

type TracingConfig struct {
	Enabled       bool
	Endpoint      string
	Insecure      bool
	SamplingRatio float64
}

type LogConfig struct {
	Level  string
	Format string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service.name", "order-gateway")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 60*time.Second)
	v.SetDefault("http.shutdown_timeout", 5*time.Second)

	v.SetDefault("grpc.addr", ":50051")
	v.SetDefault("metrics.addr", ":9090")

	v.SetDefault("external.timeout", 30*time.Second)
	v.SetDefault("external.default_endpoint", "")
	v.SetDefault("external.location", "UTC")

	v.SetDefault("mock_external.enabled", false)
	v.SetDefault("mock_external.slow_delay", 5*time.Second)

	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "ordergateway.integration.events")
	v.SetDefault("kafka.client_id", "order-gateway")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.sampling_ratio", 1.0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Default возвращает конфигурацию только из значений по умолчанию.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	return build(v)
}

// Load читает конфигурацию. path может быть пустым: тогда используются
// только значения по умолчанию и переменные окружения.
// Приоритет: окружение > файл > значения по умолчанию.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := build(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func build(v *viper.Viper) *Config {
	return &Config{
		Service: ServiceConfig{Name: v.GetString("service.name")},
		HTTP: HTTPConfig{
			Addr:            v.GetString("http.addr"),
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
		GRPC:    GRPCConfig{Addr: v.GetString("grpc.addr")},
		Metrics: MetricsConfig{Addr: v.GetString("metrics.addr")},
		External: ExternalConfig{
			Timeout:         v.GetDuration("external.timeout"),
			DefaultEndpoint: v.GetString("external.default_endpoint"),
			Location:        v.GetString("external.location"),
		},
		MockExternal: MockExternalConfig{
			Enabled:   v.GetBool("mock_external.enabled"),
			SlowDelay: v.GetDuration("mock_external.slow_delay"),
		},
		Kafka: KafkaConfig{
			Brokers:  stringList(v.Get("kafka.brokers")),
			Topic:    v.GetString("kafka.topic"),
			ClientID: v.GetString("kafka.client_id"),
		},
		Tracing: TracingConfig{
			Enabled:       v.GetBool("tracing.enabled"),
			Endpoint:      v.GetString("tracing.endpoint"),
			Insecure:      v.GetBool("tracing.insecure"),
			SamplingRatio: v.GetFloat64("tracing.sampling_ratio"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}
}

// stringList принимает список из файла или строку "a,b" из окружения.
func stringList(raw interface{}) []string {
	var parts []string
	switch val := raw.(type) {
	case string:
		parts = strings.Split(val, ",")
	case []string:
		parts = val
	case []interface{}:
		for _, item := range val {
			parts = append(parts, fmt.Sprint(item))
		}
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.GRPC.Addr == "" {
		errs = append(errs, errors.New("grpc.addr is required"))
	}
	if c.Metrics.Addr == "" {
		errs = append(errs, errors.New("metrics.addr is required"))
	}
	if c.External.Timeout <= 0 {
		errs = append(errs, errors.New("external.timeout must be positive"))
	}
	if loc, err := time.LoadLocation(c.External.Location); err != nil {
		errs = append(errs, fmt.Errorf("external.location: %w", err))
	} else if !fixedOffset(loc, time.Now().Year()) {
		errs = append(errs, fmt.Errorf("external.location %q observes daylight saving time; use a fixed-offset zone", c.External.Location))
	}
	if c.MockExternal.Enabled && c.MockExternal.SlowDelay <= 0 {
		errs = append(errs, errors.New("mock_external.slow_delay must be positive"))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is required when brokers are set"))
	}
	if c.Tracing.SamplingRatio < 0 || c.Tracing.SamplingRatio > 1 {
		errs = append(errs, errors.New("tracing.sampling_ratio must be within [0, 1]"))
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		errs = append(errs, errors.New("tracing.endpoint is required when tracing is enabled"))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// fixedOffset сообщает, держит ли пояс одно смещение весь год year и следующий.
func fixedOffset(loc *time.Location, year int) bool {
	_, base := time.Date(year, time.January, 1, 0, 0, 0, 0, loc).Zone()
	for m := 0; m < 24; m++ {
		_, offset := time.Date(year, time.January+time.Month(m), 1, 0, 0, 0, 0, loc).Zone()
		if offset != base {
			return false
		}
	}
	return true
}

// ExternalLocation возвращает часовой пояс внешней системы; ошибка уже отсечена Validate.
func (c *Config) ExternalLocation() *time.Location {
	loc, err := time.LoadLocation(c.External.Location)
	if err != nil {
		return time.UTC
	}
	return loc
}
