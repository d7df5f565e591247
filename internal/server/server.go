package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/anjali918/Student-Management-System/internal/auth"
	"github.com/anjali918/Student-Management-System/internal/storage"
)

type Server struct {
	cfg Config
	mux *http.ServeMux
	log zerolog.Logger

	authsvc  *auth.Service
	users    auth.UserStore
	students storage.StudentStore
	courses  storage.CourseStore

	mongoClient *mongo.Client

	rlLoginIP  *multiLimiter
	rlLoginID  *multiLimiter
	rlSignupIP *multiLimiter
}

// New builds the production server backed by MongoDB. An unreachable
// database is not fatal: the process starts, logs a warning, and serves with
// store-backed requests failing per-request until the database comes back.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Server, error) {
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client, err := storage.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.MongoDB)

	users := auth.NewMongoUserStore(db, cfg.UsersCollection)
	students := storage.NewMongoStudentStore(db, cfg.StudentsCollection)
	courses := storage.NewMongoCourseStore(db, cfg.CoursesCollection)

	s, err := NewWithStores(cfg, log, users, students, courses)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	s.mongoClient = client

	if err := storage.Ping(ctx, client); err != nil {
		log.Warn().Err(err).Msg("mongodb unreachable, serving degraded")
		return s, nil
	}
	log.Info().Str("db", cfg.MongoDB).Msg("connected to mongodb")

	if err := users.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("users index creation failed")
	}
	if err := students.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("students index creation failed")
	}
	if err := courses.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("courses index creation failed")
	}
	if err := s.ensureBootstrapAdmin(ctx); err != nil {
		log.Warn().Err(err).Msg("bootstrap admin creation failed")
	}
	return s, nil
}

// NewWithStores wires the server onto explicit store implementations. Tests
// use it with the in-memory stores.
func NewWithStores(cfg Config, log zerolog.Logger, users auth.UserStore, students storage.StudentStore, courses storage.CourseStore) (*Server, error) {
	cfg.setDefaults()

	signer, err := auth.NewJWTSigner([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		mux:      http.NewServeMux(),
		log:      log,
		authsvc:  auth.NewService(users, signer, log),
		users:    users,
		students: students,
		courses:  courses,
	}

	s.rlLoginIP = newMultiLimiter(perWindow(10, time.Minute), 10, time.Hour)
	s.rlLoginID = newMultiLimiter(perWindow(5, time.Minute), 5, time.Hour)
	s.rlSignupIP = newMultiLimiter(perWindow(5, time.Minute), 5, time.Hour)

	s.routes()
	return s, nil
}

// Close releases the database connection, if any.
func (s *Server) Close(ctx context.Context) error {
	if s.mongoClient == nil {
		return nil
	}
	return s.mongoClient.Disconnect(ctx)
}

// ServeHTTP applies the cross-cutting stages: panic isolation, CORS, and the
// authentication stage of the access gate for every non-public /api route.
// Role policies are enforced per route in routes.go.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error().Any("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
			apiError(w, http.StatusInternalServerError, "internal server error")
		}
	}()

	s.addDefaultHeaders(w, r)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if strings.HasPrefix(r.URL.Path, "/api/") && !s.isPublic(r.URL.Path) {
		auth.AuthRequired(s.authsvc)(s.mux).ServeHTTP(w, r)
		return
	}
	s.mux.ServeHTTP(w, r)
}

func (s *Server) Handler() http.Handler {
	return s
}

func (s *Server) isPublic(path string) bool {
	switch path {
	case "/health", "/api/health", "/api/auth/signup", "/api/auth/login":
		return true
	default:
		return false
	}
}

func (s *Server) addDefaultHeaders(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
}

// ensureBootstrapAdmin creates the configured admin account if it is absent.
func (s *Server) ensureBootstrapAdmin(ctx context.Context) error {
	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		return nil
	}
	if _, err := s.users.FindByEmail(ctx, s.cfg.AdminEmail); err == nil {
		return nil
	}
	u, err := s.authsvc.CreateUser(ctx, auth.SignupRequest{
		Name:     s.cfg.AdminName,
		Email:    s.cfg.AdminEmail,
		Password: s.cfg.AdminPassword,
		Role:     auth.RoleAdmin,
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("email", u.Email).Msg("bootstrap admin created")
	return nil
}
