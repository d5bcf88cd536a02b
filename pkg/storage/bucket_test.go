package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketConfigEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		region   string
		want     Provider
		endpoint string
	}{
		{name: "aws", provider: "aws", region: "ap-southeast-1", want: ProviderAWS},
		{name: "blank provider is aws", provider: "", region: "us-east-1", want: ProviderAWS},
		{name: "wasabi regional", provider: "Wasabi", region: "eu-central-1", want: ProviderWasabi, endpoint: "https://s3.eu-central-1.wasabisys.com"},
		{name: "wasabi unknown region", provider: "wasabi", region: "mars-1", want: ProviderWasabi, endpoint: "https://s3.ap-southeast-1.wasabisys.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewBucketConfig(tt.provider, tt.region, "backups", "key", "secret")
			assert.Equal(t, tt.want, cfg.Provider)
			assert.Equal(t, tt.endpoint, cfg.Endpoint())
			assert.Equal(t, "backups", cfg.Bucket)
		})
	}
}
