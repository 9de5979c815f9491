package domain

import (
	"context"
	"time"
)

// Branding and content settings are persisted, versioned rows rather than
// process globals, so they survive restarts and stay consistent across
// instances.

const (
	ConfigBranding = "branding"
	ConfigContent  = "content"
)

type BrandingConfig struct {
	CompanyName    string `json:"company_name"`
	LogoURL        string `json:"logo_url"`
	FaviconURL     string `json:"favicon_url"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
	AccentColor    string `json:"accent_color"`
}

type SocialLinks struct {
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
	Twitter   string `json:"twitter"`
	LinkedIn  string `json:"linkedin"`
}

type ContentConfig struct {
	HeroTitle       string      `json:"hero_title"`
	HeroSubtitle    string      `json:"hero_subtitle"`
	AboutUsShort    string      `json:"about_us_short"`
	SEOTitle        string      `json:"seo_title"`
	SEODescription  string      `json:"seo_description"`
	FooterCopyright string      `json:"footer_copyright"`
	SocialLinks     SocialLinks `json:"social_links"`
}

// SystemConfiguration is one versioned configuration document. Version
// increments on every write; readers always see the latest committed row.
type SystemConfiguration struct {
	ID            string    `json:"id"` // "branding" or "content"
	Configuration []byte    `json:"configuration"` // raw JSON document
	Version       int64     `json:"version"`
	UpdatedBy     *int64    `json:"updated_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BusinessPreset pairs a branding and content document under a preset key.
type BusinessPreset struct {
	Key      string         `json:"key"`
	Branding BrandingConfig `json:"branding"`
	Content  ContentConfig  `json:"content"`
}

type ConfigRepository interface {
	Get(ctx context.Context, id string) (*SystemConfiguration, error)
	// Upsert writes the document and bumps its version atomically.
	Upsert(ctx context.Context, id string, document []byte, updatedBy *int64) (*SystemConfiguration, error)
}

type ConfigUsecase interface {
	Branding(ctx context.Context) (*BrandingConfig, error)
	Content(ctx context.Context) (*ContentConfig, error)
	UpdateBranding(ctx context.Context, actorID int64, cfg *BrandingConfig) error
	UpdateContent(ctx context.Context, actorID int64, cfg *ContentConfig) error
	ListPresets(ctx context.Context) []BusinessPreset
	ApplyPreset(ctx context.Context, actorID int64, key string) (*BusinessPreset, error)
}
