package config

// StorageConfig defines the optional audit outputs of a run
type StorageConfig struct {
	// SQLite database recording runs and failed hosts; empty disables it
	HistoryDBPath string `json:"history_db_path,omitempty" yaml:"history_db_path,omitempty"`
	// Parquet file of host to script URL rows; empty disables it
	ParquetPath      string `json:"parquet_path,omitempty" yaml:"parquet_path,omitempty"`
	CompressionCodec string `json:"compression_codec,omitempty" yaml:"compression_codec,omitempty" validate:"omitempty,oneof=zstd snappy gzip none"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		CompressionCodec: DefaultStorageCompressionCodec,
	}
}
