package config

// Gorm engines understood by the daemon.
const (
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

// DB holds the database configuration settings.
type DB struct {
	Extras     string `mapstructure:"extras"     toml:"extras"`
	Host       string `mapstructure:"host"       toml:"host"`
	Port       int    `mapstructure:"port"       toml:"port"`
	User       string `mapstructure:"user"       toml:"user"`
	Password   string `mapstructure:"password"   toml:"password" json:"-"`
	Name       string `mapstructure:"name"       toml:"name"` // database name, or file path for sqlite
	GormEngine string `mapstructure:"gormEngine" toml:"gormEngine"`
}
