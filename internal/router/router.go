package router

import (
	"database/sql"
	"net/http"

	mem "med-adherence/internal/adapters/storage/memory"
	pg "med-adherence/internal/adapters/storage/postgres"
	"med-adherence/internal/domain/doselog"
	"med-adherence/internal/domain/medications"
	"med-adherence/internal/domain/users"
	"med-adherence/internal/middleware"
	"med-adherence/internal/ports/formulary"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "med-adherence/docs" // registro del spec swagger
)

type Options struct {
	Logger zerolog.Logger

	// Opcional: si viene, usa Postgres. Si no, in-memory (dev/tests).
	DB *sql.DB

	// Opcional: directorio externo de medicamentos. nil = sin lookup.
	Formulary formulary.Resolver
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(opts.Logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	var (
		userRepo users.Repository
		medsRepo medications.Repository
		logRepo  doselog.Repository
	)

	if opts.DB != nil {
		userRepo = pg.NewUsersRepo(opts.DB)
		medsRepo = pg.NewMedicationsRepo(opts.DB)
		logRepo = pg.NewDoselogRepo(opts.DB)
	} else {
		userRepo = mem.NewUserRepo()
		medsRepo = mem.NewMedicationsRepo()
		logRepo = mem.NewDoselogRepo()
	}

	// Services por módulo
	usersSvc := users.NewService(userRepo)
	medsSvc := medications.NewService(medsRepo, opts.Formulary, opts.Logger)
	doselogSvc := doselog.NewService(logRepo)

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc)
	medications.RegisterRoutes(r, medsSvc, usersSvc)
	doselog.RegisterRoutes(r, doselogSvc, usersSvc, medsSvc)

	return r
}
