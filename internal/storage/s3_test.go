package storage

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	s3config "github.com/terrydolan/catmon-img-tag/internal/config"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			"modeled NoSuchKey from GetObject",
			&types.NoSuchKey{},
			true,
		},
		{
			"modeled NotFound from HeadObject",
			&types.NotFound{},
			true,
		},
		{
			// CopyObject does not model NoSuchKey: a vanished source comes
			// back as a generic API error carrying the code.
			"generic NoSuchKey from CopyObject",
			&smithy.OperationError{
				ServiceID:     "S3",
				OperationName: "CopyObject",
				Err:           &smithy.GenericAPIError{Code: "NoSuchKey", Message: "The specified key does not exist."},
			},
			true,
		},
		{
			"generic NotFound code",
			&smithy.GenericAPIError{Code: "NotFound", Message: "Not Found"},
			true,
		},
		{
			"throttling API error",
			&smithy.GenericAPIError{Code: "SlowDown", Message: "Reduce your request rate."},
			false,
		},
		{
			"plain error",
			errors.New("connection refused"),
			false,
		},
		{
			"nil error",
			nil,
			false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := isNotFound(tc.err); got != tc.want {
				t.Errorf("isNotFound(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  s3config.S3Config
		want string
	}{
		{"plain", s3config.S3Config{Endpoint: "localhost:9000"}, "http://localhost:9000"},
		{"ssl", s3config.S3Config{Endpoint: "minio.internal", UseSSL: true}, "https://minio.internal"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := endpointURL(&tc.cfg); got != tc.want {
				t.Errorf("endpointURL() = %q, want %q", got, tc.want)
			}
		})
	}
}
