package server

import (
	"context"
	"net/http"
	"time"

	"github.com/cavos-labs/forma-app/internal/checkout"
	"github.com/cavos-labs/forma-app/internal/config"
	"github.com/cavos-labs/forma-app/internal/membership"
	"github.com/cavos-labs/forma-app/internal/payment"
	"github.com/cavos-labs/forma-app/internal/session"
	"github.com/cavos-labs/forma-app/internal/upstream"
	"github.com/cavos-labs/forma-app/internal/workout"

	"github.com/gin-gonic/gin"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	config *config.Config
}

func New(cfg *config.Config, client *upstream.Client, sessions *session.Manager, stripe checkout.SessionCreator) (*Server, error) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())

	membershipHandler := membership.NewHandler(client, cfg.DevFallbackData)
	paymentHandler := payment.NewHandler(client)
	workoutHandler := workout.NewHandler(client)
	checkoutHandler := checkout.NewHandler(stripe, client, sessions, cfg.PublicBaseURL)
	auth := &authHandler{
		client:   client,
		sessions: sessions,
		onSignOut: []func(string){
			membershipHandler.Forget,
			paymentHandler.Forget,
			workoutHandler.Forget,
		},
	}

	public := router.Group("/auth")
	public.Use(RateLimitMiddleware(5, 10))
	{
		public.POST("/signin", auth.SignIn)
		public.POST("/signup", auth.SignUp)
		public.POST("/signout", auth.SignOut)
		public.POST("/forgot-password", auth.ForgotPassword)
		public.POST("/reset-password", auth.ResetPassword)
	}

	authenticated := router.Group("/app")
	authenticated.Use(session.Middleware(sessions), session.PrefsMiddleware(sessions))
	{
		authenticated.GET("/me", auth.Me)
		authenticated.PUT("/prefs", auth.UpdatePrefs)

		// The feature screens need a paid-up gym; checkout does not.
		active := authenticated.Group("")
		active.Use(session.RequireActiveGym())
		{
			active.GET("/memberships", membershipHandler.List)
			active.POST("/memberships/refresh", membershipHandler.Refresh)
			active.POST("/memberships/overlay/create-user", membershipHandler.OpenCreateUser)
			active.POST("/memberships/:membershipID/overlay/edit-user", membershipHandler.OpenEditUser)
			active.POST("/memberships/:membershipID/overlay/receipt", membershipHandler.OpenReceipt)
			active.POST("/memberships/overlay/receipt-error", membershipHandler.ReceiptImageError)
			active.DELETE("/memberships/overlay", membershipHandler.CloseOverlay)
			active.POST("/members", membershipHandler.CreateMember)
			active.PUT("/members/:userID", membershipHandler.UpdateMember)

			active.GET("/payments", paymentHandler.List)
			active.POST("/payments/refresh", paymentHandler.Refresh)
			active.POST("/payments/:paymentID/approve", paymentHandler.Approve)
			active.POST("/payments/:paymentID/overlay/reject", paymentHandler.OpenRejectPrompt)
			active.POST("/payments/overlay/reject/confirm", paymentHandler.ConfirmReject)
			active.POST("/payments/:paymentID/overlay/receipt", paymentHandler.OpenReceipt)
			active.POST("/payments/overlay/receipt-error", paymentHandler.ReceiptImageError)
			active.DELETE("/payments/overlay", paymentHandler.CloseOverlay)

			active.GET("/workouts", workoutHandler.Calendar)
			active.POST("/workouts", workoutHandler.Create)
			active.PUT("/workouts/:workoutID", workoutHandler.Update)
			active.DELETE("/workouts/:workoutID", workoutHandler.Delete)
			active.GET("/workouts/:workoutID/sections", workoutHandler.Sections)
		}
	}

	pay := router.Group("/checkout")
	pay.Use(session.Middleware(sessions))
	{
		pay.POST("/session", checkoutHandler.CreateSession)
		pay.POST("/activate", checkoutHandler.Activate)
	}

	proxy, err := apiProxy(client.BaseURL(), client.APIKey())
	if err != nil {
		return nil, err
	}
	passthrough := router.Group("/api")
	passthrough.Use(session.Middleware(sessions))
	passthrough.Any("/*path", proxy)

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		config: cfg,
	}, nil
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
