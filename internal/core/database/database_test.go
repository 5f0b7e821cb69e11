package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	got := normalizeMySQLDSN("jdbc:mysql://db:3306/shop?useSSL=false&serverTimezone=UTC&characterEncoding=utf8", "root", "pw")
	assert.Equal(t, "root:pw@tcp(db:3306)/shop?charset=utf8&loc=UTC&parseTime=true&tls=false", got)

	native := "u:p@tcp(127.0.0.1:3306)/shop?parseTime=true"
	assert.Equal(t, native, normalizeMySQLDSN(native, "x", "y"))
	assert.Equal(t, "", normalizeMySQLDSN("  ", "", ""))
}

func TestNewGormSqlite(t *testing.T) {
	db, err := NewGorm(Opts{Driver: "sqlite", DSN: "file:dbtest?mode=memory&cache=shared", LogLevel: "silent"})
	require.NoError(t, err)
	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestNewGormUnsupported(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestNormalizeMySQLDSNQueryCredentials(t *testing.T) {
	got := normalizeMySQLDSN("mysql://db:3306/shop?user=app&password=s3&useSSL=skip-verify&useUnicode=true", "", "")
	assert.Equal(t, "app:s3@tcp(db:3306)/shop?charset=utf8mb4&parseTime=true&tls=skip-verify", got)
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "root:****@tcp(db:3306)/shop", maskDSN("root:pw@tcp(db:3306)/shop"))
	assert.Equal(t, "tcp(db:3306)/shop", maskDSN("tcp(db:3306)/shop"))
	assert.Equal(t, "root@tcp(db)/x", maskDSN("root@tcp(db)/x"))
}
