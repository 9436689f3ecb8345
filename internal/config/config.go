package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/parkmate/service-parking/internal/domain/booking"
	"github.com/parkmate/service-parking/internal/domain/carwash"
	"github.com/parkmate/service-parking/internal/domain/employee"
	"github.com/parkmate/service-parking/internal/pkg/database"
)

// JWTConfig holds token signing parameters.
type JWTConfig struct {
	Secret          string
	AccessDuration  time.Duration
	RefreshDuration time.Duration
}

// KafkaConfig holds broker connection parameters.
type KafkaConfig struct {
	Brokers []string
	GroupID string
	Enabled bool
}

// PolicyConfig holds the tunable business rules.
type PolicyConfig struct {
	BookingDuration       time.Duration
	RenewalFactor         float64
	WashMinLeadTime       time.Duration
	WashAdvanceWindow     time.Duration
	WashBucketCapacity    int
	WashAutoCompleteDelay time.Duration
	EmployeeBusyThreshold int
}

// ServiceConfig holds all configuration for the parking service.
type ServiceConfig struct {
	Port     string
	AppEnv   string
	DBConfig database.PostgresConfig
	JWT      JWTConfig
	Kafka    KafkaConfig
	Policy   PolicyConfig
}

// IsDevelopment reports whether the service runs in a development
// environment, where schema auto-migration is enabled.
func (c *ServiceConfig) IsDevelopment() bool {
	return c.AppEnv != "production"
}

// Load reads configuration from the environment with the PARKMATE
// prefix, falling back to built-in defaults.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("PARKMATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("service_port", "8080")
	v.SetDefault("app_env", "development")

	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "postgres")
	v.SetDefault("db_name", "parkmate")
	v.SetDefault("db_sslmode", "disable")

	v.SetDefault("jwt_access_duration", "15m")
	v.SetDefault("jwt_refresh_duration", "168h")

	v.SetDefault("kafka_brokers", "localhost:9092")
	v.SetDefault("kafka_group_id", "service-parking")
	v.SetDefault("kafka_enabled", true)

	v.SetDefault("booking_duration", booking.DefaultDuration.String())
	v.SetDefault("booking_renewal_factor", booking.DefaultRenewalFactor)
	v.SetDefault("wash_min_lead_time", carwash.DefaultMinLeadTime.String())
	v.SetDefault("wash_advance_window", carwash.DefaultMaxAdvanceWindow.String())
	v.SetDefault("wash_bucket_capacity", carwash.DefaultBucketCapacity)
	v.SetDefault("wash_auto_complete_delay", carwash.DefaultAutoCompleteDelay.String())
	v.SetDefault("employee_busy_threshold", employee.DefaultBusyThreshold)

	secret := v.GetString("jwt_secret")
	if secret == "" {
		return nil, fmt.Errorf("PARKMATE_JWT_SECRET is required")
	}

	return &ServiceConfig{
		Port:   v.GetString("service_port"),
		AppEnv: v.GetString("app_env"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			DBName:   v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
		},
		JWT: JWTConfig{
			Secret:          secret,
			AccessDuration:  v.GetDuration("jwt_access_duration"),
			RefreshDuration: v.GetDuration("jwt_refresh_duration"),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(v.GetString("kafka_brokers"), ","),
			GroupID: v.GetString("kafka_group_id"),
			Enabled: v.GetBool("kafka_enabled"),
		},
		Policy: PolicyConfig{
			BookingDuration:       v.GetDuration("booking_duration"),
			RenewalFactor:         v.GetFloat64("booking_renewal_factor"),
			WashMinLeadTime:       v.GetDuration("wash_min_lead_time"),
			WashAdvanceWindow:     v.GetDuration("wash_advance_window"),
			WashBucketCapacity:    v.GetInt("wash_bucket_capacity"),
			WashAutoCompleteDelay: v.GetDuration("wash_auto_complete_delay"),
			EmployeeBusyThreshold: v.GetInt("employee_busy_threshold"),
		},
	}, nil
}
