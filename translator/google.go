package translator

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// googleLang maps the NLLB-200 tags used on the wire to the ISO codes
// the Cloud Translation API expects.
var googleLang = map[string]string{
	"fra_Latn": "fr",
	"wol_Latn": "wo",
}

// GoogleClient translates through the Google Cloud Translation API.
// Useful as a fallback when no NLLB inference server is deployed,
// though its Wolof quality makes the safety checks earn their keep.
type GoogleClient struct {
	credentials string
}

// NewGoogleClient creates a client. An empty credentials path falls
// back to application default credentials.
func NewGoogleClient(credentials string) *GoogleClient {
	return &GoogleClient{credentials: credentials}
}

func (c *GoogleClient) Name() string {
	return "google"
}

func (c *GoogleClient) Translate(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	targetTag, err := language.Parse(googleLangCode(req.TargetLang))
	if err != nil {
		return nil, fmt.Errorf("invalid target language: %w", err)
	}
	sourceTag, err := language.Parse(googleLangCode(req.SourceLang))
	if err != nil {
		return nil, fmt.Errorf("invalid source language: %w", err)
	}

	opts := []option.ClientOption{}
	if c.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(c.credentials))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	// Format text, not HTML: entity-escaped apostrophes would corrupt
	// the verbatim number and negation comparisons downstream.
	translations, err := client.Translate(ctx, []string{req.Text}, targetTag, &translate.Options{
		Source: sourceTag,
		Format: translate.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	if len(translations) == 0 {
		return nil, fmt.Errorf("no translation returned")
	}

	return &Result{
		TranslatedText: translations[0].Text,
		Model:          "google-translate",
		Latency:        time.Since(start),
	}, nil
}

func (c *GoogleClient) Healthy(ctx context.Context) error {
	return nil
}

func googleLangCode(tag string) string {
	if code, ok := googleLang[tag]; ok {
		return code
	}
	return tag
}
