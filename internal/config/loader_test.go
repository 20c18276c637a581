package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("DRA_TEST_HOST", "db.internal")

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"set variable wins", "host: ${DRA_TEST_HOST:localhost}", "host: db.internal"},
		{"default when unset", "host: ${DRA_TEST_MISSING:localhost}", "host: localhost"},
		{"empty default expands to empty", "key: ${DRA_TEST_MISSING:}", "key: "},
		{"no default keeps placeholder", "key: ${DRA_TEST_MISSING}", "key: ${DRA_TEST_MISSING}"},
		{"multiple placeholders", "${DRA_TEST_HOST:a}:${DRA_TEST_PORT:5432}", "db.internal:5432"},
		{"plain text untouched", "retrieval:\n  top_k: 3", "retrieval:\n  top_k: 3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, expandEnv(tc.in))
		})
	}
}
