// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration for the competition service.
type Config struct {
	// Name is the human-readable competition name.
	Name string `koanf:"name"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// OpenTime, CloseTime and TerminateTime bound the competition
	// lifecycle. UTC, fixed format "YYYY/MM/DD HH:MM:SS".
	OpenTime      string `koanf:"open_time"`
	CloseTime     string `koanf:"close_time"`
	TerminateTime string `koanf:"terminate_time"`

	// AdminUser and BaselineUser identify the two privileged identities
	// that bypass stage and quota gating.
	AdminUser    string `koanf:"admin_user"`
	BaselineUser string `koanf:"baseline_user"`

	// GoldFile points at the trusted gold-label CSV {Id, Predicted, Public}.
	GoldFile string `koanf:"gold_file"`

	// RosterFile points at the credential roster TSV.
	RosterFile string `koanf:"roster_file"`

	// UploadDir is where accepted prediction files are persisted.
	UploadDir string `koanf:"upload_dir"`

	// DumpDir is where scheduled ledger dumps are written.
	DumpDir string `koanf:"dump_dir"`

	// DBFile is the sqlite DSN backing the submission ledger.
	DBFile string `koanf:"db_file"`

	// CooldownSeconds is the minimum wait between two submissions by the
	// same non-privileged user.
	CooldownSeconds int `koanf:"cooldown_seconds"`

	// MaxSubmissions caps lifetime submissions per non-privileged user.
	MaxSubmissions int `koanf:"max_submissions"`

	// MaxUploadBytes limits the accepted upload size.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// Metric selects the evaluation function: accuracy or mse.
	Metric string `koanf:"metric"`
}

// New creates a Config with defaults mirroring a local exam session.
func New() *Config {
	return &Config{
		Name:            "Competition",
		LogLevel:        "info",
		Addr:            ":8888",
		OpenTime:        "2026/01/01 00:00:00",
		CloseTime:       "2026/02/01 00:00:00",
		TerminateTime:   "2026/03/01 00:00:00",
		AdminUser:       "admin",
		BaselineUser:    "baseline",
		GoldFile:        "./static/solution/gold.csv",
		RosterFile:      "./roster.tsv",
		UploadDir:       "./uploads",
		DumpDir:         "./dumps",
		DBFile:          "./competition.db",
		CooldownSeconds: 5 * 60,
		MaxSubmissions:  100,
		MaxUploadBytes:  32 << 20,
		Metric:          "accuracy",
	}
}
