package salesforce

import (
	"fmt"
	"strings"
	"time"

	"github.com/Mykobyhub/kibana-connectors/pkg/config"
	"github.com/Mykobyhub/kibana-connectors/pkg/errors"
)

const (
	// APIVersion is the REST API version every endpoint is addressed with
	APIVersion = "v59.0"
	// SourceName is the value of the source tag on every document
	SourceName = "salesforce"

	defaultMaxAttachmentSize = 10 * 1024 * 1024
	defaultConcurrency       = 1
)

// Entity kinds in the order a sync pass streams them.
const (
	KindAccount         = "account"
	KindOpportunity     = "opportunity"
	KindContact         = "contact"
	KindLead            = "lead"
	KindCampaign        = "campaign"
	KindCase            = "case"
	KindContentDocument = "content_document"
)

// DefaultKinds lists every kind a pass syncs when no selection is configured.
var DefaultKinds = []string{KindAccount, KindOpportunity, KindContact, KindLead, KindCampaign, KindCase}

// Config holds the Salesforce settings read from BaseConfig.Security.Credentials.
type Config struct {
	Domain       string
	ClientID     string
	ClientSecret string
	// BaseURL overrides https://{domain}.my.salesforce.com
	BaseURL    string
	APIVersion string

	Kinds             []string
	ModifiedSince     time.Time
	MaxAttachmentSize int64
	Concurrency       int

	UseTextExtraction    bool
	ExtractionServiceURL string
}

// ParseConfig extracts the Salesforce settings. It does not validate
// required values; call Validate for that.
func ParseConfig(cfg *config.BaseConfig) (*Config, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "configuration is required")
	}
	creds := &cfg.Security

	sc := &Config{
		Domain:               strings.TrimSpace(creds.String("domain", "")),
		ClientID:             creds.String("client_id", ""),
		ClientSecret:         creds.String("client_secret", ""),
		BaseURL:              strings.TrimRight(creds.String("base_url", ""), "/"),
		APIVersion:           creds.String("api_version", APIVersion),
		Kinds:                creds.List("sobjects"),
		ExtractionServiceURL: strings.TrimRight(creds.String("extraction_service_url", ""), "/"),
	}

	var err error
	if sc.UseTextExtraction, err = creds.Bool("use_text_extraction_service", false); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid setting")
	}
	maxSize, err := creds.Int("max_attachment_size", defaultMaxAttachmentSize)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid setting")
	}
	sc.MaxAttachmentSize = int64(maxSize)
	if sc.Concurrency, err = creds.Int("concurrency", defaultConcurrency); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid setting")
	}
	if sc.Concurrency < 1 {
		sc.Concurrency = defaultConcurrency
	}

	if raw := creds.String("modified_since", ""); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "modified_since must be an RFC 3339 timestamp")
		}
		sc.ModifiedSince = ts.UTC()
	}

	if len(sc.Kinds) == 0 {
		sc.Kinds = append([]string(nil), DefaultKinds...)
	}
	return sc, nil
}

// Validate checks the required settings and the kind selection.
func (c *Config) Validate() error {
	for _, field := range []struct{ name, value string }{
		{"domain", c.Domain},
		{"client_id", c.ClientID},
		{"client_secret", c.ClientSecret},
	} {
		if field.value == "" {
			return errors.Newf(errors.ErrorTypeValidation, "%s is required", field.name).
				WithDetail("field", field.name)
		}
	}

	for _, kind := range c.Kinds {
		if !isKnownKind(kind) {
			return errors.Newf(errors.ErrorTypeValidation, "unknown sobject kind %q", kind).
				WithDetail("field", "sobjects")
		}
	}

	if c.UseTextExtraction && c.ExtractionServiceURL == "" {
		return errors.New(errors.ErrorTypeValidation, "extraction_service_url is required when text extraction is enabled").
			WithDetail("field", "extraction_service_url")
	}
	return nil
}

// InstanceURL returns the root every API path is resolved against.
func (c *Config) InstanceURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return fmt.Sprintf("https://%s.my.salesforce.com", c.Domain)
}

func isKnownKind(kind string) bool {
	for _, k := range DefaultKinds {
		if k == kind {
			return true
		}
	}
	return false
}
