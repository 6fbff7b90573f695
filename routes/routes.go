package routes

import (
	"net/http"
	"time"

	_ "github.com/Dosada05/foosball-tournament/docs" // регистрирует swagger spec
	"github.com/Dosada05/foosball-tournament/handlers"
	"github.com/Dosada05/foosball-tournament/middleware"
	"github.com/Dosada05/foosball-tournament/services"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

func SetupRoutes(
	router chi.Router,
	allowedOrigins []string,
	tokenParser middleware.TokenParser,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	historyHandler *handlers.HistoryHandler,
	predictionHandler *handlers.PredictionHandler,
	teamHandler *handlers.TeamHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", handlers.Healthz)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Живая лента без таймаута, соединение долгоживущее
	router.Get("/ws/live", webSocketHandler.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Post("/auth/login", authHandler.Login)

		r.Route("/tournament", func(r chi.Router) {
			r.Get("/", tournamentHandler.Snapshot)
			r.Get("/standings", tournamentHandler.Standings)
			r.Get("/highlights", tournamentHandler.Highlights)
			r.Get("/goal-stats", tournamentHandler.GoalStats)
			r.Get("/podium", tournamentHandler.Podium)
			r.Get("/matches/recent", tournamentHandler.RecentMatches)
			r.Get("/matches/upcoming", tournamentHandler.UpcomingMatches)
			r.Get("/teams/{teamID}", tournamentHandler.GetTeam)

			// Только для организатора
			r.Group(func(r chi.Router) {
				r.Use(organizerOnly(tokenParser)...)

				r.Post("/", tournamentHandler.Create)
				r.Patch("/matches/{matchID}/score", tournamentHandler.UpdateScore)
				r.Post("/matches/{matchID}/finish", tournamentHandler.FinishMatch)
				r.Post("/matches/{matchID}/result", tournamentHandler.RecordResult)
				r.Post("/playoff", tournamentHandler.StartPlayoff)
				r.Post("/finals", tournamentHandler.AdvanceToFinals)
				r.Post("/archive", tournamentHandler.Archive)
				r.Post("/end-early", tournamentHandler.EndEarly)
			})
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", historyHandler.List)
			r.Get("/{tournamentID}", historyHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(organizerOnly(tokenParser)...)

				r.Post("/{tournamentID}/load", historyHandler.Load)
				r.Delete("/{tournamentID}", historyHandler.Delete)
			})
		})

		r.With(organizerOnly(tokenParser)...).Delete("/data", historyHandler.ClearAll)

		r.Route("/predictions", func(r chi.Router) {
			r.Get("/", predictionHandler.List)
			r.Post("/", predictionHandler.Add)
			r.Get("/distribution", predictionHandler.Distribution)
			r.Get("/results", predictionHandler.Results)
		})

		r.Route("/teams", func(r chi.Router) {
			r.Post("/generate", teamHandler.Generate)
			r.Post("/validate", teamHandler.Validate)
		})
	})
}

func organizerOnly(tokenParser middleware.TokenParser) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		middleware.Authenticate(tokenParser),
		middleware.Authorize(services.RoleOrganizer),
	}
}
