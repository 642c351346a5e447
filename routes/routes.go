package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goodplay/goodplay-backend/handlers"
	"github.com/goodplay/goodplay-backend/middleware"
	"github.com/goodplay/goodplay-backend/models"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	User        *handlers.UserHandler
	Session     *handlers.SessionHandler
	Wallet      *handlers.WalletHandler
	Payment     *handlers.PaymentHandler
	Donation    *handlers.DonationHandler
	Onlus       *handlers.OnlusHandler
	Team        *handlers.TeamHandler
	Tournament  *handlers.TournamentHandler
	Mode        *handlers.ModeHandler
	Achievement *handlers.AchievementHandler
	Admin       *handlers.AdminHandler
	WebSocket   *handlers.WebSocketHandler
}

func SetupRoutes(router *chi.Mux, h Handlers, jwtSecret []byte) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Payment-Signature"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticated := middleware.Authenticate(jwtSecret)
	adminOnly := middleware.Authorize(models.RoleAdmin)

	router.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.Post("/forgot-password", h.Auth.ForgotPassword)
		r.Post("/reset-password", h.Auth.ResetPassword)
	})

	router.Route("/api/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/me", h.User.GetMe)
			r.Put("/me", h.User.UpdateMe)
			r.Get("/{userID}", h.User.GetByID)
		})
		r.Group(func(r chi.Router) {
			r.Use(authenticated, adminOnly)
			r.Get("/", h.User.List)
		})
	})

	router.Route("/api/sessions", func(r chi.Router) {
		r.Use(authenticated)
		r.Post("/", h.Session.Record)
		r.Get("/", h.Session.List)
		r.Post("/{sessionID}/convert", h.Session.Convert)
	})

	router.Route("/api/wallet", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/", h.Wallet.GetWallet)
			r.Get("/transactions", h.Wallet.Transactions)
			r.Put("/daily-limit", h.Wallet.SetDailyLimit)
		})
		r.Group(func(r chi.Router) {
			r.Use(authenticated, adminOnly)
			r.Post("/{userID}/adjust", h.Wallet.AdminAdjust)
		})
	})

	router.Route("/api/payments", func(r chi.Router) {
		// Provider webhook authenticates via signature, not JWT.
		r.Post("/webhook", h.Payment.Webhook)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Post("/intents", h.Payment.CreateIntent)
		})
	})

	router.Route("/api/donations", func(r chi.Router) {
		r.Use(authenticated)
		r.Post("/", h.Donation.Donate)
		r.Get("/", h.Donation.ListMine)
	})

	router.Route("/api/onlus", func(r chi.Router) {
		r.Get("/", h.Onlus.ListOrganizations)
		r.Get("/{onlusID}", h.Onlus.GetOrganization)
		r.Get("/{onlusID}/donations", h.Donation.ListByOnlus)

		r.Route("/applications", func(r chi.Router) {
			r.Use(authenticated)
			r.Post("/", h.Onlus.CreateApplication)
			r.Get("/", h.Onlus.ListOwnApplications)
			r.Post("/{applicationID}/documents", h.Onlus.UploadDocument)
			r.Post("/{applicationID}/submit", h.Onlus.SubmitApplication)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticated, adminOnly)
			r.Get("/applications/pending", h.Onlus.ListPendingApplications)
			r.Post("/applications/{applicationID}/approve", h.Onlus.ApproveApplication)
			r.Post("/applications/{applicationID}/reject", h.Onlus.RejectApplication)
		})
	})

	router.Route("/api/compliance", func(r chi.Router) {
		r.Use(authenticated, adminOnly)
		r.Post("/review", h.Onlus.ReviewAllCompliance)
		r.Post("/review/{onlusID}", h.Onlus.ReviewCompliance)
	})

	router.Route("/api/teams", func(r chi.Router) {
		r.Get("/leaderboard", h.Team.Leaderboard)
		r.Get("/{teamID}", h.Team.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Post("/", h.Team.Create)
			r.Post("/{teamID}/join", h.Team.Join)
			r.Post("/{teamID}/leave", h.Team.Leave)
			r.Post("/{teamID}/contribute", h.Team.Contribute)
			r.Post("/{teamID}/logo", h.Team.UploadLogo)
		})
	})

	router.Route("/api/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.List)
		r.Get("/{tournamentID}", h.Tournament.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Post("/{tournamentID}/enroll", h.Tournament.Enroll)
			r.Post("/{tournamentID}/scores", h.Tournament.ReportScore)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticated, adminOnly)
			r.Post("/", h.Tournament.Create)
			r.Post("/{tournamentID}/start", h.Tournament.Start)
			r.Post("/{tournamentID}/complete", h.Tournament.Complete)
			r.Post("/{tournamentID}/cancel", h.Tournament.Cancel)
		})
	})

	router.Route("/api/modes", func(r chi.Router) {
		r.Get("/", h.Mode.List)
		r.Get("/active", h.Mode.ListActive)
		r.Get("/{modeID}", h.Mode.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticated, adminOnly)
			r.Post("/", h.Mode.Create)
			r.Put("/{modeID}", h.Mode.Update)
			r.Put("/{modeID}/active", h.Mode.SetActive)
		})
	})

	router.Route("/api/social/achievements", func(r chi.Router) {
		r.Get("/", h.Achievement.List)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Get("/me", h.Achievement.ListMine)
			r.Post("/{achievementID}/claim", h.Achievement.Claim)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticated, adminOnly)
			r.Post("/", h.Achievement.Create)
		})
	})

	router.Route("/api/admin/financial", func(r chi.Router) {
		r.Use(authenticated, adminOnly)
		r.Get("/report", h.Admin.FinancialReport)
	})

	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeTournament)
}
