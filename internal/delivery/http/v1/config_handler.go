package v1

import (
	"net/http"

	"go-studio-backend/internal/delivery/http/middleware"
	"go-studio-backend/internal/delivery/http/response"
	"go-studio-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type ConfigHandler struct {
	configUC domain.ConfigUsecase
}

// NewConfigHandler registers branding and content reads on the public group
// so the frontend can theme itself before login.
func NewConfigHandler(public *gin.RouterGroup, protected *gin.RouterGroup, configUC domain.ConfigUsecase) {
	handler := &ConfigHandler{configUC: configUC}

	cfg := public.Group("/config")
	{
		cfg.GET("/branding", handler.Branding)
		cfg.GET("/content", handler.Content)
	}

	admin := protected.Group("/admin/config")
	admin.Use(middleware.RequireRoles(domain.RoleAdmin))
	{
		admin.PUT("/branding", handler.UpdateBranding)
		admin.PUT("/content", handler.UpdateContent)
		admin.GET("/presets", handler.ListPresets)
		admin.POST("/presets/:key/apply", handler.ApplyPreset)
	}
}

// Branding godoc
// @Summary      Branding configuration
// @Description  Studio name, logo and color palette. Defaults apply until an admin customizes them.
// @Tags         config
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.BrandingConfig}
// @Router       /config/branding [get]
func (h *ConfigHandler) Branding(c *gin.Context) {
	branding, err := h.configUC.Branding(c)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Branding retrieved", branding)
}

// Content godoc
// @Summary      Content configuration
// @Tags         config
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.ContentConfig}
// @Router       /config/content [get]
func (h *ConfigHandler) Content(c *gin.Context) {
	content, err := h.configUC.Content(c)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Content retrieved", content)
}

// UpdateBranding godoc
// @Summary      Update branding
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        branding  body      domain.BrandingConfig  true  "Branding document"
// @Success      200       {object}  response.Response
// @Failure      403       {object}  response.Response
// @Router       /admin/config/branding [put]
// @Security     BearerAuth
func (h *ConfigHandler) UpdateBranding(c *gin.Context) {
	actorID := c.GetInt64(string(domain.KeyUserID))

	var cfg domain.BrandingConfig
	if !bindAndValidate(c, &cfg) {
		return
	}

	if err := h.configUC.UpdateBranding(c, actorID, &cfg); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Branding updated", cfg)
}

// UpdateContent godoc
// @Summary      Update content
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        content  body      domain.ContentConfig  true  "Content document"
// @Success      200      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /admin/config/content [put]
// @Security     BearerAuth
func (h *ConfigHandler) UpdateContent(c *gin.Context) {
	actorID := c.GetInt64(string(domain.KeyUserID))

	var cfg domain.ContentConfig
	if !bindAndValidate(c, &cfg) {
		return
	}

	if err := h.configUC.UpdateContent(c, actorID, &cfg); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Content updated", cfg)
}

// ListPresets godoc
// @Summary      List business presets
// @Tags         admin
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.BusinessPreset}
// @Router       /admin/config/presets [get]
// @Security     BearerAuth
func (h *ConfigHandler) ListPresets(c *gin.Context) {
	presets := h.configUC.ListPresets(c)
	response.Success(c, http.StatusOK, "Presets retrieved", presets)
}

// ApplyPreset godoc
// @Summary      Apply a business preset
// @Description  Replaces both branding and content with the preset's documents
// @Tags         admin
// @Produce      json
// @Param        key  path      string  true  "Preset key"
// @Success      200  {object}  response.Response{data=domain.BusinessPreset}
// @Failure      404  {object}  response.Response
// @Router       /admin/config/presets/{key}/apply [post]
// @Security     BearerAuth
func (h *ConfigHandler) ApplyPreset(c *gin.Context) {
	actorID := c.GetInt64(string(domain.KeyUserID))
	key := c.Param("key")

	preset, err := h.configUC.ApplyPreset(c, actorID, key)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Preset applied", preset)
}
