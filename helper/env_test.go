package helper

import (
	"testing"
)

func TestGetDsnEnvVarName(t *testing.T) {
	if got := GetDsnEnvVarName(" source "); got != "TS_SOURCE_DSN" {
		t.Fatalf("expected TS_SOURCE_DSN; got %v", got)
	}
	if got := GetDsnEnvVarName("clinic-db"); got != "TS_CLINIC_DB_DSN" {
		t.Fatalf("expected TS_CLINIC_DB_DSN; got %v", got)
	}
	if got := GetRegionEnvVarName("bucket"); got != "TS_BUCKET_S3_REGION" {
		t.Fatalf("expected TS_BUCKET_S3_REGION; got %v", got)
	}
}

func TestReadValueFromEnvWithDefault(t *testing.T) {
	k := "TS_TEST_READ_VALUE"
	t.Setenv(k, "")
	if got := ReadValueFromEnvWithDefault(k, "dflt"); got != "dflt" {
		t.Fatalf("expected default; got %v", got)
	}
	t.Setenv(k, "set")
	if got := ReadValueFromEnvWithDefault(k, "dflt"); got != "set" {
		t.Fatalf("expected env value; got %v", got)
	}
	var v string
	if err := ReadValueFromEnv("TS_TEST_MISSING_VALUE", &v); err == nil {
		t.Fatal("expected error for missing env var")
	}
}

func TestReadBoolFromEnv(t *testing.T) {
	k := "TS_TEST_BOOL"
	cases := map[string]bool{"": false, "false": false, "0": false, "No": false, "true": true, "1": true, "yes": true}
	for in, want := range cases {
		t.Setenv(k, in)
		if got := ReadBoolFromEnv(k); got != want {
			t.Fatalf("%q: expected %v; got %v", in, want, got)
		}
	}
}
