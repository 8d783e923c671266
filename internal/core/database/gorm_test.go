package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMySQLDSN(t *testing.T) {
	cases := []struct {
		name, in, user, pass, want string
	}{
		{
			name: "driver dsn untouched",
			in:   "app:pw@tcp(db:3306)/fountains?parseTime=true",
			want: "app:pw@tcp(db:3306)/fountains?parseTime=true",
		},
		{
			name: "jdbc url",
			in:   "jdbc:mysql://db:3306/fountains?useSSL=false&serverTimezone=UTC",
			user: "app", pass: "pw",
			want: "app:pw@tcp(db:3306)/fountains?charset=utf8mb4&loc=UTC&parseTime=true&tls=false",
		},
		{
			name: "credentials from query",
			in:   "mysql://db:3306/fountains?user=u&password=p&characterEncoding=utf8",
			want: "u:p@tcp(db:3306)/fountains?charset=utf8&parseTime=true",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, MySQLDSN(tc.in, tc.user, tc.pass))
		})
	}
}

func TestMaskDSN(t *testing.T) {
	require.Equal(t, "app:****@tcp(db:3306)/x", maskDSN("app:pw@tcp(db:3306)/x"))
	require.Equal(t, "tcp(db:3306)/x", maskDSN("tcp(db:3306)/x"))
}

func TestNewGormRejectsUnknownDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"}, zap.NewNop())
	require.ErrorIs(t, err, ErrUnsupportedDriver)
}
