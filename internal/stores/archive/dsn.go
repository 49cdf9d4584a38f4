package archive

import (
	"fmt"

	"github.com/ethanbaker/mitra/pkg/utils"
	"github.com/go-sql-driver/mysql"
)

// DSNFromConfig builds a MySQL DSN from the MYSQL_* settings.
// It returns false when no archive database is configured
func DSNFromConfig(cfg *utils.Config) (string, bool) {
	dbName := cfg.Get("MYSQL_DATABASE")
	if dbName == "" {
		return "", false
	}

	dbConfig := mysql.NewConfig()
	dbConfig.User = cfg.GetWithDefault("MYSQL_USERNAME", "root")
	dbConfig.Passwd = cfg.Get("MYSQL_ROOT_PASSWORD")
	dbConfig.Net = "tcp"
	dbConfig.Addr = fmt.Sprintf("%s:%s", cfg.GetWithDefault("MYSQL_HOST", "localhost"), cfg.GetWithDefault("MYSQL_PORT", "3306"))
	dbConfig.DBName = dbName
	dbConfig.ParseTime = true

	return dbConfig.FormatDSN(), true
}
