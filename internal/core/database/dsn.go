package database

import (
	"fmt"
	"net/url"
	"strings"
)

// JDBC/Navicat 参数 → go-sql-driver 参数
var jdbcRename = map[string]string{
	"characterEncoding": "charset",
	"serverTimezone":    "loc",
}

// go-sql-driver 不认识的参数直接丢弃
var jdbcDrop = []string{"useUnicode", "zeroDateTimeBehavior"}

// normalizeMySQLDSN 把 mysql:// 或 jdbc:mysql:// URL 改写成 user:pass@tcp(host)/db?...；
// 原生 DSN 原样返回
func normalizeMySQLDSN(input, userOverride, passOverride string) string {
	in := strings.TrimPrefix(strings.TrimSpace(input), "jdbc:")
	if !strings.HasPrefix(in, "mysql://") {
		return strings.TrimSpace(input)
	}
	u, err := url.Parse(in)
	if err != nil {
		return in // 交给驱动报错
	}

	q := u.Query()
	user, pass := takeCredentials(u, q)
	if userOverride != "" {
		user = userOverride
	}
	if passOverride != "" {
		pass = passOverride
	}

	for from, to := range jdbcRename {
		if v := q.Get(from); v != "" && q.Get(to) == "" {
			q.Set(to, v)
		}
		q.Del(from)
	}
	for _, k := range jdbcDrop {
		q.Del(k)
	}
	if v := strings.ToLower(q.Get("useSSL")); v != "" {
		q.Set("tls", sslToTLS(v))
		q.Del("useSSL")
	}
	setDefault(q, "parseTime", "true")
	setDefault(q, "charset", "utf8mb4")

	cred := user
	if pass != "" {
		cred += ":" + pass
	}
	if cred != "" {
		cred += "@"
	}
	dsn := fmt.Sprintf("%stcp(%s)/%s", cred, u.Host, strings.TrimPrefix(u.Path, "/"))
	if enc := q.Encode(); enc != "" {
		dsn += "?" + enc
	}
	return dsn
}

// takeCredentials URL userinfo 优先级低于 query 中的 user/password
func takeCredentials(u *url.URL, q url.Values) (user, pass string) {
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	if v := q.Get("user"); v != "" {
		user = v
	}
	if v := q.Get("password"); v != "" {
		pass = v
	}
	q.Del("user")
	q.Del("password")
	return user, pass
}

func sslToTLS(v string) string {
	switch v {
	case "true", "1":
		return "true"
	case "skip-verify", "preferred":
		return v
	}
	return "false"
}

func setDefault(q url.Values, k, v string) {
	if q.Get(k) == "" {
		q.Set(k, v)
	}
}

// maskDSN 隐藏密码，仅用于日志
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at <= 0 {
		return dsn
	}
	colon := strings.Index(dsn[:at], ":")
	if colon <= 0 {
		return dsn
	}
	return dsn[:colon+1] + "****" + dsn[at:]
}
