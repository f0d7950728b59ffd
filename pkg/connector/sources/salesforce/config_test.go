package salesforce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mykobyhub/kibana-connectors/pkg/config"
	"github.com/Mykobyhub/kibana-connectors/pkg/errors"
)

func baseConfigWith(creds map[string]string) *config.BaseConfig {
	cfg := config.NewBaseConfig("sf", SourceName)
	cfg.Security.Credentials = creds
	return cfg
}

func TestParseConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		sc, err := ParseConfig(baseConfigWith(map[string]string{
			"domain": "fake", "client_id": "1234", "client_secret": "9876",
		}))
		require.NoError(t, err)

		assert.Equal(t, "https://fake.my.salesforce.com", sc.InstanceURL())
		assert.Equal(t, APIVersion, sc.APIVersion)
		assert.Equal(t, DefaultKinds, sc.Kinds)
		assert.Equal(t, int64(defaultMaxAttachmentSize), sc.MaxAttachmentSize)
		assert.Equal(t, 1, sc.Concurrency)
		assert.False(t, sc.UseTextExtraction)
		assert.True(t, sc.ModifiedSince.IsZero())
		assert.NoError(t, sc.Validate())
	})

	t.Run("overrides", func(t *testing.T) {
		sc, err := ParseConfig(baseConfigWith(map[string]string{
			"domain":                      "fake",
			"client_id":                   "1234",
			"client_secret":               "9876",
			"base_url":                    "http://localhost:8080/",
			"sobjects":                    "account, case",
			"modified_since":              "2023-08-01T00:00:00Z",
			"concurrency":                 "4",
			"max_attachment_size":         "100",
			"use_text_extraction_service": "true",
			"extraction_service_url":      "http://extractor:8090/",
		}))
		require.NoError(t, err)

		assert.Equal(t, "http://localhost:8080", sc.InstanceURL())
		assert.Equal(t, []string{KindAccount, KindCase}, sc.Kinds)
		assert.Equal(t, time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC), sc.ModifiedSince)
		assert.Equal(t, 4, sc.Concurrency)
		assert.Equal(t, int64(100), sc.MaxAttachmentSize)
		assert.True(t, sc.UseTextExtraction)
		assert.Equal(t, "http://extractor:8090", sc.ExtractionServiceURL)
		assert.NoError(t, sc.Validate())
	})

	t.Run("invalid values", func(t *testing.T) {
		for key, value := range map[string]string{
			"concurrency":                 "many",
			"use_text_extraction_service": "perhaps",
			"modified_since":              "yesterday",
		} {
			_, err := ParseConfig(baseConfigWith(map[string]string{key: value}))
			require.Error(t, err, key)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig), key)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Domain: "fake", ClientID: "1234", ClientSecret: "9876", Kinds: DefaultKinds}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing domain", func(c *Config) { c.Domain = "" }, "domain"},
		{"missing client id", func(c *Config) { c.ClientID = "" }, "client_id"},
		{"missing client secret", func(c *Config) { c.ClientSecret = "" }, "client_secret"},
		{"unknown kind", func(c *Config) { c.Kinds = []string{"account", "widget"} }, "sobjects"},
		{"extraction without url", func(c *Config) { c.UseTextExtraction = true }, "extraction_service_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var structured *errors.Error
			require.True(t, errors.As(err, &structured))
			assert.Equal(t, errors.ErrorTypeValidation, structured.Type)
			assert.Equal(t, tt.field, structured.Details["field"])
		})
	}
}
