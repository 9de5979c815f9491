package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-studio-backend/internal/domain"
	"go-studio-backend/pkg/apperror"
	"go-studio-backend/pkg/audit"
)

var defaultBranding = domain.BrandingConfig{
	CompanyName:    "Studio One",
	PrimaryColor:   "#1E3A5F",
	SecondaryColor: "#F4F6F8",
	AccentColor:    "#E8B04B",
}

var defaultContent = domain.ContentConfig{
	HeroTitle:       "Train Smarter",
	HeroSubtitle:    "Personalised EMS and studio training, on your schedule.",
	FooterCopyright: "© Studio One. All rights reserved.",
}

// businessPresets are curated starting points an admin can apply in one
// step instead of filling every branding field by hand.
var businessPresets = []domain.BusinessPreset{
	{
		Key: "boutique-studio",
		Branding: domain.BrandingConfig{
			CompanyName:    "Boutique Studio",
			PrimaryColor:   "#2D2A32",
			SecondaryColor: "#FAF7F2",
			AccentColor:    "#C8A861",
		},
		Content: domain.ContentConfig{
			HeroTitle:       "A studio built around you",
			HeroSubtitle:    "Small classes, personal coaching, real results.",
			FooterCopyright: "© Boutique Studio",
		},
	},
	{
		Key: "ems-performance",
		Branding: domain.BrandingConfig{
			CompanyName:    "EMS Performance Lab",
			PrimaryColor:   "#0B1F3A",
			SecondaryColor: "#EEF2F7",
			AccentColor:    "#3BC14A",
		},
		Content: domain.ContentConfig{
			HeroTitle:       "20 minutes. Full-body training.",
			HeroSubtitle:    "Electro muscle stimulation sessions guided by certified trainers.",
			FooterCopyright: "© EMS Performance Lab",
		},
	},
	{
		Key: "wellness-club",
		Branding: domain.BrandingConfig{
			CompanyName:    "The Wellness Club",
			PrimaryColor:   "#264D3B",
			SecondaryColor: "#F5F3EC",
			AccentColor:    "#D98E5F",
		},
		Content: domain.ContentConfig{
			HeroTitle:       "Move well. Live well.",
			HeroSubtitle:    "Classes, recovery and coaching under one roof.",
			FooterCopyright: "© The Wellness Club",
		},
	},
}

type configUsecase struct {
	configRepo domain.ConfigRepository
	audit      *audit.Logger
}

func NewConfigUsecase(configRepo domain.ConfigRepository) domain.ConfigUsecase {
	return &configUsecase{
		configRepo: configRepo,
		audit:      audit.Default(),
	}
}

func (u *configUsecase) Branding(ctx context.Context) (*domain.BrandingConfig, error) {
	cfg := defaultBranding
	if err := u.load(ctx, domain.ConfigBranding, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (u *configUsecase) Content(ctx context.Context) (*domain.ContentConfig, error) {
	cfg := defaultContent
	if err := u.load(ctx, domain.ConfigContent, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (u *configUsecase) UpdateBranding(ctx context.Context, actorID int64, cfg *domain.BrandingConfig) error {
	if domain.RoleFromContext(ctx) != string(domain.RoleAdmin) {
		return apperror.Forbidden("Admin role required")
	}
	return u.store(ctx, domain.ConfigBranding, actorID, cfg)
}

func (u *configUsecase) UpdateContent(ctx context.Context, actorID int64, cfg *domain.ContentConfig) error {
	if domain.RoleFromContext(ctx) != string(domain.RoleAdmin) {
		return apperror.Forbidden("Admin role required")
	}
	return u.store(ctx, domain.ConfigContent, actorID, cfg)
}

func (u *configUsecase) ListPresets(ctx context.Context) []domain.BusinessPreset {
	presets := make([]domain.BusinessPreset, len(businessPresets))
	copy(presets, businessPresets)
	return presets
}

func (u *configUsecase) ApplyPreset(ctx context.Context, actorID int64, key string) (*domain.BusinessPreset, error) {
	if domain.RoleFromContext(ctx) != string(domain.RoleAdmin) {
		return nil, apperror.Forbidden("Admin role required")
	}

	for _, preset := range businessPresets {
		if preset.Key != key {
			continue
		}
		if err := u.store(ctx, domain.ConfigBranding, actorID, preset.Branding); err != nil {
			return nil, err
		}
		if err := u.store(ctx, domain.ConfigContent, actorID, preset.Content); err != nil {
			return nil, err
		}
		return &preset, nil
	}
	return nil, apperror.NotFound("Unknown preset: " + key)
}

// load overlays the stored document, when one exists, onto the defaults
// already present in dst.
func (u *configUsecase) load(ctx context.Context, id string, dst any) error {
	stored, err := u.configRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := json.Unmarshal(stored.Configuration, dst); err != nil {
		return fmt.Errorf("decode %s configuration: %w", id, err)
	}
	return nil
}

func (u *configUsecase) store(ctx context.Context, id string, actorID int64, cfg any) error {
	document, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode %s configuration: %w", id, err)
	}

	stored, err := u.configRepo.Upsert(ctx, id, document, &actorID)
	if err != nil {
		return err
	}

	u.audit.Log(ctx, audit.Event{
		Event:        audit.EventConfigUpdated,
		SubjectType:  "user_id",
		SubjectValue: audit.HashID(actorID),
		Details:      map[string]any{"config_id": id, "version": stored.Version},
	})
	return nil
}
