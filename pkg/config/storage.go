package config

// StorageConfig configures the attachment blob store.
type StorageConfig struct {
	// Mode selects the provider: "s3" or "local".
	Mode string

	// AWSRegion and Bucket apply in s3 mode.
	AWSRegion string
	Bucket    string

	// LocalDir and PublicBaseURL apply in local mode.
	LocalDir      string
	PublicBaseURL string
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Mode:          getEnv("STORAGE_MODE", "local"),
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		Bucket:        getEnv("AWS_BUCKET", "grove-media"),
		LocalDir:      getEnv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL: getEnv("STORAGE_PUBLIC_BASE_URL", "http://localhost:8080/media"),
	}
}
