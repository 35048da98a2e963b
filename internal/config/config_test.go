package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
app:
  port: 9090
database:
  driver: postgres
  host: db
  port: 5432
  username: blog
  password: secret
  database: blog
jwt:
  secret_key: from-file
`

func TestInit(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(sampleConfig), 0o600))
	t.Setenv("JWT_SECRET_KEY", "from-env")

	require.NoError(t, Init(dir))
	cfg := GetConfig()

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "from-env", cfg.JWT.SecretKey)
	// 未在文件中出现的值回落到默认值
	assert.Equal(t, "sessionId", cfg.Session.CookieName)
	assert.Equal(t, "0 */10 * * * *", cfg.Cron.ViewReconcile)
	assert.Equal(t, "host=db port=5432 user=blog password=secret dbname=blog sslmode=disable TimeZone=Asia/Shanghai",
		cfg.Database.GetDSN())
}

func TestInitMissingFile(t *testing.T) {
	err := Init(t.TempDir())
	assert.Error(t, err)
}

func TestDatabaseConfig_GetDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "explicit dsn wins",
			cfg:  DatabaseConfig{Driver: "mysql", DSN: "custom"},
			want: "custom",
		},
		{
			name: "mysql",
			cfg: DatabaseConfig{Driver: "mysql", Host: "localhost", Port: 3306, Username: "root",
				Password: "pw", Database: "blog", Charset: "utf8mb4"},
			want: "root:pw@tcp(localhost:3306)/blog?charset=utf8mb4&parseTime=True&loc=Local",
		},
		{
			name: "sqlite uses database as path",
			cfg:  DatabaseConfig{Driver: "sqlite", Database: "blog.db"},
			want: "blog.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.GetDSN())
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.True(t, cfg.Metrics.Enabled)
}
