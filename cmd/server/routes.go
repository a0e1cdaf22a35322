package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/widget_svc/internal/groups"
	"github.com/MarkoPoloResearchLab/widget_svc/internal/httpapi"
	"github.com/MarkoPoloResearchLab/widget_svc/internal/storage"
	"github.com/MarkoPoloResearchLab/widget_svc/internal/widget"
	"github.com/MarkoPoloResearchLab/widget_svc/pkg/iconcdn"
)

const (
	adminRoutePrefix = "/api"
	userRoutePrefix  = "/api"

	adminRouteConfig          = "/config"
	adminRouteGroups          = "/groups"
	adminRoutePublicWidgets   = "/public-widgets"
	adminRoutePublicWidgetID  = "/public-widgets/:id"
	adminRouteGroupWidgets    = "/group-widgets"
	adminRouteGroupWidgetID   = "/group-widgets/:id"
	userRoutePersonalSettings = "/personal-settings"
	userRoutePublicSlot       = "/dashboard/public/:slot"
	userRouteGroupSlot        = "/dashboard/group/:slot"
	userRoutePersonalWidget   = "/dashboard/personal"
	userRouteIconProbe        = "/proxy-icon/:icon"
)

func registerRoutes(router *gin.Engine, database *gorm.DB, serverConfig ServerConfig, logger *zap.Logger) {
	configStore := storage.NewAppConfigStore(database)
	directory := groups.NewDirectory(database)

	codec := widget.NewCodec(configStore, logger)
	legacy := widget.NewLegacyAdapter(configStore)
	resolver := widget.NewResolver(codec, legacy)
	writer := widget.NewWriter(codec, legacy, directory)
	aggregator := widget.NewOriginAggregator(codec, legacy, configStore)

	sessionManager := httpapi.NewSessionManager(serverConfig.SessionSecret)
	prober := iconcdn.NewHTTPProber(nil, serverConfig.IconCDNBaseURL)

	configHandlers := httpapi.NewConfigHandlers(configStore, directory, logger)
	publicWidgetHandlers := httpapi.NewPublicWidgetHandlers(codec, legacy, writer, aggregator, logger)
	groupWidgetHandlers := httpapi.NewGroupWidgetHandlers(codec, legacy, writer, directory, aggregator, logger)
	personalSettingsHandlers := httpapi.NewPersonalSettingsHandlers(configStore, aggregator, logger)
	dashboardHandlers := httpapi.NewDashboardHandlers(resolver, aggregator, directory, configStore, logger)
	iconProxyHandlers := httpapi.NewIconProxyHandlers(prober, logger)

	adminGroup := router.Group(adminRoutePrefix)
	adminGroup.Use(httpapi.AdminAuthMiddleware(serverConfig.AdminBearerToken))
	adminGroup.GET(adminRouteConfig, configHandlers.GetConfig)
	adminGroup.POST(adminRouteConfig, configHandlers.SetAdminConfig)
	adminGroup.GET(adminRouteGroups, configHandlers.GetGroups)
	adminGroup.GET(adminRoutePublicWidgets, publicWidgetHandlers.ListPublicWidgets)
	adminGroup.POST(adminRoutePublicWidgets, publicWidgetHandlers.SetPublicWidget)
	adminGroup.DELETE(adminRoutePublicWidgetID, publicWidgetHandlers.DeletePublicWidget)
	adminGroup.GET(adminRouteGroupWidgets, groupWidgetHandlers.ListGroupWidgets)
	adminGroup.POST(adminRouteGroupWidgets, groupWidgetHandlers.SetGroupWidget)
	adminGroup.DELETE(adminRouteGroupWidgetID, groupWidgetHandlers.DeleteGroupWidget)

	userGroup := router.Group(userRoutePrefix)
	userGroup.Use(sessionManager.RequireUser())
	userGroup.GET(userRoutePersonalSettings, personalSettingsHandlers.GetSettings)
	userGroup.POST(userRoutePersonalSettings, personalSettingsHandlers.SetSettings)
	userGroup.GET(userRoutePublicSlot, dashboardHandlers.PublicSlot)
	userGroup.GET(userRouteGroupSlot, dashboardHandlers.GroupSlot)
	userGroup.GET(userRoutePersonalWidget, dashboardHandlers.PersonalSlot)
	userGroup.GET(userRouteIconProbe, iconProxyHandlers.ProbeIcon)
}
