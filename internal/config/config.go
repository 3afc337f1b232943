// Package config provides configuration structures and loading for encbench.
package config

// Supported source drivers.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// Config represents the complete application configuration.
type Config struct {
	Source     SourceConfig     `yaml:"source" mapstructure:"source"`
	Benchmark  BenchmarkConfig  `yaml:"benchmark" mapstructure:"benchmark"`
	Symmetric  SymmetricConfig  `yaml:"symmetric" mapstructure:"symmetric"`
	Asymmetric AsymmetricConfig `yaml:"asymmetric" mapstructure:"asymmetric"`
	Results    ResultsConfig    `yaml:"results" mapstructure:"results"`
	Storage    StorageConfig    `yaml:"storage" mapstructure:"storage"`
	NoSQL      NoSQLConfig      `yaml:"nosql" mapstructure:"nosql"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
}

// SourceConfig describes the relational store holding the plaintext identifiers.
type SourceConfig struct {
	Driver             string `yaml:"driver" mapstructure:"driver"` // sqlite3 or mysql
	Path               string `yaml:"path" mapstructure:"path"`     // sqlite3 database file
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
	Table              string `yaml:"table" mapstructure:"table"`
	Column             string `yaml:"column" mapstructure:"column"`
	OrderBy            string `yaml:"order_by" mapstructure:"order_by"` // keeps smaller batches a prefix of larger ones
}

// BenchmarkConfig controls the measurement loop.
type BenchmarkConfig struct {
	BatchSizes      []int `yaml:"batch_sizes" mapstructure:"batch_sizes"`
	SnapshotSizes   []int `yaml:"snapshot_sizes" mapstructure:"snapshot_sizes"` // empty means the largest batch
	VerifyRoundTrip bool  `yaml:"verify_roundtrip" mapstructure:"verify_roundtrip"`
}

// SymmetricConfig selects the symmetric scheme.
type SymmetricConfig struct {
	Scheme string `yaml:"scheme" mapstructure:"scheme"` // aes-256-gcm, fernet, chacha20-poly1305
}

// AsymmetricConfig selects the asymmetric scheme and its key size.
type AsymmetricConfig struct {
	Scheme  string `yaml:"scheme" mapstructure:"scheme"` // rsa-oaep-sha256, rsa-pkcs1v15
	KeyBits int    `yaml:"key_bits" mapstructure:"key_bits"`
}

// ResultsConfig describes where benchmark outputs go.
type ResultsConfig struct {
	Table   string `yaml:"table" mapstructure:"table"`
	CSVPath string `yaml:"csv_path" mapstructure:"csv_path"` // empty disables the CSV sink
}

// StorageConfig describes the three stores written by the storage analyzer.
type StorageConfig struct {
	OutputDir      string `yaml:"output_dir" mapstructure:"output_dir"`
	PlainFile      string `yaml:"plain_file" mapstructure:"plain_file"`
	SymmetricFile  string `yaml:"symmetric_file" mapstructure:"symmetric_file"`
	AsymmetricFile string `yaml:"asymmetric_file" mapstructure:"asymmetric_file"`
}

// NoSQLConfig describes the document store used by the nosql benchmark.
type NoSQLConfig struct {
	URI            string `yaml:"uri" mapstructure:"uri"`
	Database       string `yaml:"database" mapstructure:"database"`
	Collection     string `yaml:"collection" mapstructure:"collection"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Driver:             DriverSQLite,
			Path:               "hospital.db",
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     4,
			MaxIdleConnections: 2,
			Table:              "Patients",
			Column:             "ssn",
			OrderBy:            "id",
		},
		Benchmark: BenchmarkConfig{
			BatchSizes:      []int{1000, 3000, 5000, 7000, 10000},
			VerifyRoundTrip: true,
		},
		Symmetric: SymmetricConfig{
			Scheme: "aes-256-gcm",
		},
		Asymmetric: AsymmetricConfig{
			Scheme:  "rsa-oaep-sha256",
			KeyBits: 2048,
		},
		Results: ResultsConfig{
			Table: "Encryption_Results",
		},
		Storage: StorageConfig{
			OutputDir:      ".",
			PlainFile:      "storage_control.db",
			SymmetricFile:  "storage_aes.db",
			AsymmetricFile: "storage_rsa.db",
		},
		NoSQL: NoSQLConfig{
			URI:            "mongodb://localhost:27017/",
			Database:       "Hospital_IoT_DB",
			Collection:     "patient_logs",
			TimeoutSeconds: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// MaxBatchSize returns the largest configured batch size, or 0 if none are set.
func (b *BenchmarkConfig) MaxBatchSize() int {
	largest := 0
	for _, n := range b.BatchSizes {
		if n > largest {
			largest = n
		}
	}
	return largest
}

// EffectiveSnapshotSizes returns the batch sizes whose data is retained for persistence,
// falling back to the largest batch size when none are configured.
func (b *BenchmarkConfig) EffectiveSnapshotSizes() []int {
	if len(b.SnapshotSizes) > 0 {
		return b.SnapshotSizes
	}
	if largest := b.MaxBatchSize(); largest > 0 {
		return []int{largest}
	}
	return nil
}
