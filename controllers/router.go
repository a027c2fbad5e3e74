package controllers

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/WWJD/logger"
	"github.com/WWJD/middlewares"
)

type RouterConfig struct {
	CORSOrigins []string
	// Limiter guards the endpoints that write or call upstream services.
	Limiter     middlewares.Limiter
	Tracing     bool
	ServiceName string
	Log         *logger.Logger
}

func SetupRouter(ctl *Controller, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Tracing {
		router.Use(otelgin.Middleware(cfg.ServiceName))
	}
	router.Use(middlewares.RequestLogger(cfg.Log))
	router.Use(middlewares.CORS(cfg.CORSOrigins))

	limited := func(c *gin.Context) { c.Next() }
	if cfg.Limiter != nil {
		limited = middlewares.RateLimitMiddleware(cfg.Limiter, middlewares.ClientIPKey, cfg.Log)
	}

	router.GET("/ping", Ping)
	router.POST("/auth/google", limited, ctl.GoogleSignIn)

	router.GET("/situations", ctl.ListSituations)
	router.POST("/situations", limited, ctl.CreateSituation)
	router.GET("/situations/:id", ctl.GetSituation)
	router.GET("/situations/:id/related", ctl.GetRelatedSituations)
	router.GET("/situations/:id/ratings", ctl.GetSituationRatings)

	router.POST("/ratings", limited, ctl.CreateRating)

	router.GET("/prayer-requests", ctl.GetPrayerWall)
	router.POST("/prayer-requests/:id/pray", limited, ctl.Pray)

	auth := router.Group("/")
	auth.Use(middlewares.CheckAuth(ctl.secret, ctl.store))
	{
		auth.GET("/users/me", ctl.GetUserProfile)

		// saved guidance
		auth.GET("/user/saved", ctl.GetSaved)
		auth.POST("/user/saved", ctl.SaveGuidance)
		auth.DELETE("/user/saved", ctl.UnsaveGuidance)

		// followed topics
		auth.GET("/user/topics", ctl.GetTopics)
		auth.POST("/user/topics", ctl.FollowTopic)
		auth.DELETE("/user/topics", ctl.UnfollowTopic)
		auth.GET("/user/topics/feed", ctl.GetTopicFeed)

		auth.GET("/user/settings", ctl.GetSettings)
		auth.PUT("/user/settings", ctl.UpdateSettings)
		auth.POST("/user/push-token", ctl.StorePushToken)

		auth.POST("/prayer-requests", limited, ctl.CreatePrayerRequest)
		auth.DELETE("/prayer-requests/:id", ctl.ClosePrayerRequest)
	}

	return router
}
