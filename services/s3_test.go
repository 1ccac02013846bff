package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"applyflow/config"
)

func TestNewS3Service_MissingCredentials(t *testing.T) {
	service, err := NewS3Service(config.AWSConfig{})

	assert.Error(t, err)
	assert.Nil(t, service)
}

func TestNewS3Service_PartialCredentials(t *testing.T) {
	service, err := NewS3Service(config.AWSConfig{
		AccessKey: "key",
		Region:    "us-east-1",
		Bucket:    "applyflow-documents",
	})

	assert.Error(t, err)
	assert.Nil(t, service)
}

func TestS3ServiceValidation(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		region  string
		isValid bool
	}{
		{
			name:    "valid configuration",
			bucket:  "my-bucket",
			region:  "us-east-1",
			isValid: true,
		},
		{
			name:    "empty bucket",
			bucket:  "",
			region:  "us-east-1",
			isValid: false,
		},
		{
			name:    "empty region",
			bucket:  "my-bucket",
			region:  "",
			isValid: false,
		},
		{
			name:    "both empty",
			bucket:  "",
			region:  "",
			isValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &S3Service{
				bucket: tt.bucket,
				region: tt.region,
			}

			err := service.validate()
			if tt.isValid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
