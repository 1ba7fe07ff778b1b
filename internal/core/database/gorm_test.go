package database

import (
	"errors"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	mysqldrv "github.com/go-sql-driver/mysql"
)

func parsed(t *testing.T, dsn string) *mysqldrv.Config {
	t.Helper()
	c, err := mysqldrv.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("normalized dsn %q does not parse: %v", dsn, err)
	}
	return c
}

func TestNormalizeMySQLDSNFromJDBC(t *testing.T) {
	in := "jdbc:mysql://root:pw@127.0.0.1:3306/todo?useUnicode=true&characterEncoding=utf8&useSSL=false&serverTimezone=Asia%2FShanghai"
	got, err := normalizeMySQLDSN(in, "", "")
	if err != nil {
		t.Fatal(err)
	}
	c := parsed(t, got)
	if c.User != "root" || c.Passwd != "pw" || c.Addr != "127.0.0.1:3306" || c.DBName != "todo" {
		t.Fatalf("target = %+v", c)
	}
	if !c.ParseTime || c.TLSConfig != "false" || c.Loc.String() != "Asia/Shanghai" {
		t.Fatalf("options: parseTime=%v tls=%q loc=%s", c.ParseTime, c.TLSConfig, c.Loc)
	}
	if !strings.Contains(got, "charset=utf8") || strings.Contains(got, "useUnicode") {
		t.Fatalf("params not translated: %s", got)
	}
}

func TestNormalizeMySQLDSNOverrides(t *testing.T) {
	got, err := normalizeMySQLDSN("mysql://a:b@db:3306/x?user=q", "u", "p")
	if err != nil {
		t.Fatal(err)
	}
	c := parsed(t, got)
	if c.User != "u" || c.Passwd != "p" || c.Addr != "db:3306" || c.DBName != "x" || !c.ParseTime {
		t.Fatalf("config = %+v", c)
	}
}

func TestNormalizeMySQLDSNNativeFormat(t *testing.T) {
	got, err := normalizeMySQLDSN("u:p@tcp(db:3306)/x?timeout=5s", "", "other")
	if err != nil {
		t.Fatal(err)
	}
	c := parsed(t, got)
	if c.User != "u" || c.Passwd != "other" || c.Timeout != 5*time.Second || !c.ParseTime {
		t.Fatalf("config = %+v", c)
	}
}

func TestNormalizeMySQLDSNErrors(t *testing.T) {
	for _, in := range []string{
		"mysql://u:p@db:3306/x?serverTimezone=Nowhere%2FCity",
		"u:p@tcp(db:3306/x",
	} {
		if _, err := normalizeMySQLDSN(in, "", ""); err == nil {
			t.Fatalf("%q: expected error", in)
		}
	}
}

func TestMaskMySQLDSN(t *testing.T) {
	got := maskMySQLDSN("u:secret@tcp(db:3306)/x")
	if strings.Contains(got, "secret") || !strings.Contains(got, "u:****@tcp(db:3306)/x") {
		t.Fatalf("masked = %s", got)
	}
	if got := maskMySQLDSN("u:secret@tcp(db:3306"); strings.Contains(got, "secret") {
		t.Fatalf("invalid dsn leaked: %s", got)
	}
}

func TestNewGormRejectsBadConfig(t *testing.T) {
	if _, err := NewGorm(Opts{Driver: "oracle"}); !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("err = %v", err)
	}
	if _, err := NewGorm(Opts{Driver: "postgres", DSN: "postgres://u:p@host:notaport/db"}); err == nil {
		t.Fatal("expected postgres dsn parse error")
	}
}
