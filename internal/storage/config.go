package storage

// Config holds MinIO connection settings for the snapshot archive.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}
