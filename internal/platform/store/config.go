package store

import "codecorpus/internal/platform/config"

// Config aggregates per backend configuration
type Config struct {
	S3 S3Config
}

// S3Config configures S3 or MinIO connectivity
type S3Config struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// FromConfig reads backend settings with the CORE_S3_ prefix
// object storage is enabled only when an endpoint is set
func FromConfig(cfg config.Conf) Config {
	s3 := cfg.Prefix("CORE_S3_")
	endpoint := s3.MayString("ENDPOINT", "")
	return Config{
		S3: S3Config{
			Enabled:   endpoint != "",
			Endpoint:  endpoint,
			AccessKey: s3.MaySecret("ACCESS_KEY", ""),
			SecretKey: s3.MaySecret("SECRET_KEY", ""),
			Region:    s3.MayString("REGION", ""),
			UseSSL:    s3.MayBool("SSL", true),
		},
	}
}
