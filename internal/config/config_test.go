package config

import (
	"reflect"
	"testing"
)

func TestParseOrigins(t *testing.T) {
	cases := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"https://exam.example.com", []string{"https://exam.example.com"}},
		{"https://a.com, https://b.com ,", []string{"https://a.com", "https://b.com"}},
	}
	for _, tc := range cases {
		if got := parseOrigins(tc.raw); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("parseOrigins(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestCacheKeys(t *testing.T) {
	if got := CacheKey.LoginSessionKey(42); got != "login:42" {
		t.Errorf("LoginSessionKey = %q", got)
	}
	if got := CacheKey.ActiveAttemptKey(42); got != "user:42:attempt" {
		t.Errorf("ActiveAttemptKey = %q", got)
	}
	if got := CacheKey.ExamPayloadKey("abc"); got != "exam:abc:payload" {
		t.Errorf("ExamPayloadKey = %q", got)
	}
}
