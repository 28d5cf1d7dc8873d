package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"onethy/config"
	controller "onethy/controllers"
	"onethy/middleware"
	"onethy/utils"
)

var requestLog = logger.Config{
	Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
}

func SetupAuthRoutes(app *fiber.App, db *gorm.DB, protected fiber.Handler) {
	authController := controller.NewAuthController(db)
	billingController := controller.NewBillingController(db)

	// Public endpoints
	auth := app.Group("/auth", logger.New(requestLog))
	auth.Post("/register", authController.Register)
	auth.Post("/login", authController.Login)
	app.Get("/plans", billingController.GetPlans)

	// Protected auth endpoints
	auth.Get("/me", protected, authController.GetCurrentUser)
	auth.Post("/change-password", protected, authController.ChangePassword)

	utils.Logger("routes").Info("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB, protected fiber.Handler) {
	agentController := controller.NewAgentController(db)
	dashboardController := controller.NewDashboardController(db)
	billingController := controller.NewBillingController(db)
	contactController := controller.NewContactController(db)
	campaignController := controller.NewCampaignController(db)
	ticketController := controller.NewTicketController(db)
	channelController := controller.NewChannelController(db)
	teamController := controller.NewTeamController(db)
	conversationController := controller.NewConversationController(db)
	noteController := controller.NewNoteController(db)
	macroController := controller.NewMacroController(db)

	// Auth is attached per prefix; unmatched paths must reach the 404 handler.
	limit := middleware.TenantRateLimiter(config.AppConfig.RateLimitMax, middleware.RateLimitStorage(config.AppConfig.Redis))
	requests := logger.New(requestLog)
	group := func(prefix string) fiber.Router {
		return app.Group(prefix, protected, limit, requests)
	}

	// Dashboard routes
	dashboard := group("/dashboard")
	dashboard.Get("/stats", dashboardController.GetDashboardStats)
	dashboard.Get("/recent-campaigns", dashboardController.GetRecentCampaigns)

	// Account
	agents := group("/agents")
	agents.Get("/", agentController.ListAgents)
	agents.Post("/", agentController.CreateAgent)

	subscription := group("/subscription")
	subscription.Get("/", billingController.GetSubscription)
	subscription.Post("/", billingController.Subscribe)
	subscription.Post("/cancel", billingController.CancelSubscription)

	inbox := group("/inbox")

	// Contacts are reachable both at the top level and under the inbox
	for _, contacts := range []fiber.Router{group("/contacts"), inbox.Group("/contacts")} {
		contacts.Get("/", contactController.GetContacts)
		contacts.Post("/", contactController.CreateContact)
		contacts.Get("/:id", contactController.GetContact)
		contacts.Put("/:id", contactController.UpdateContact)
		contacts.Delete("/:id", contactController.DeleteContact)
		contacts.Get("/:id/attributes", contactController.GetAttributes)
		contacts.Post("/:id/attributes", contactController.SetAttribute)
		contacts.Put("/:id/attributes/:attributeId", contactController.UpdateAttribute)
		contacts.Delete("/:id/attributes/:attributeId", contactController.DeleteAttribute)
	}

	// Campaign routes
	campaign := group("/campaigns")
	campaign.Post("/", campaignController.CreateCampaign)
	campaign.Get("/", campaignController.GetCampaigns)
	campaign.Get("/:id", campaignController.GetCampaign)
	campaign.Put("/:id", campaignController.UpdateCampaign)
	campaign.Delete("/:id", campaignController.DeleteCampaign)

	// Support tickets
	ticket := group("/tickets")
	ticket.Get("/", ticketController.GetTickets)
	ticket.Post("/", ticketController.CreateTicket)
	ticket.Get("/:id", ticketController.GetTicket)
	ticket.Put("/:id", ticketController.UpdateTicket)

	// Channel routes
	channel := group("/channels")
	channel.Get("/", channelController.GetChannels)
	channel.Post("/", channelController.CreateChannel)
	channel.Get("/:id", channelController.GetChannel)
	channel.Put("/:id", channelController.UpdateChannel)
	channel.Delete("/:id", channelController.DeleteChannel)

	// Team routes
	team := group("/teams")
	team.Get("/", teamController.GetTeams)
	team.Post("/", teamController.CreateTeam)
	team.Get("/:id", teamController.GetTeam)
	team.Put("/:id", teamController.UpdateTeam)
	team.Delete("/:id", teamController.DeleteTeam)
	team.Post("/:id/members", teamController.AddMember)
	team.Delete("/:id/members/:userId", teamController.RemoveMember)

	// Inbox routes
	inbox.Post("/inbound", conversationController.ReceiveInbound)
	inbox.Put("/messages/:id/status", conversationController.UpdateMessageStatus)

	conversations := inbox.Group("/conversations")
	conversations.Get("/", conversationController.GetConversations)
	conversations.Post("/", conversationController.CreateConversation)
	conversations.Get("/:id", conversationController.GetConversation)
	conversations.Put("/:id", conversationController.UpdateConversation)
	conversations.Post("/:id/assign-to-me", conversationController.AssignToMe)
	conversations.Post("/:id/mark-as-read", conversationController.MarkAsRead)
	conversations.Get("/:id/messages", conversationController.GetMessages)
	conversations.Post("/:id/messages", conversationController.SendMessage)
	conversations.Get("/:id/notes", noteController.GetNotes)
	conversations.Post("/:id/notes", noteController.CreateNote)
	conversations.Post("/:id/macros/:macroId/apply", macroController.ApplyMacro)

	inbox.Put("/notes/:id", noteController.UpdateNote)
	inbox.Delete("/notes/:id", noteController.DeleteNote)

	macros := inbox.Group("/macros")
	macros.Get("/", macroController.GetMacros)
	macros.Post("/", macroController.CreateMacro)
	macros.Put("/:id", macroController.UpdateMacro)
	macros.Delete("/:id", macroController.DeleteMacro)

	utils.Logger("routes").Info("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Setup health check and metrics endpoints
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	protected := middleware.Protected(db)
	SetupAuthRoutes(app, db, protected)
	SetupAPIRoutes(app, db, protected)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "The requested resource was not found",
		})
	})
}
