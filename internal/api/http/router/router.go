package router

import (
	"github.com/gorilla/mux"

	"github.com/imagify/imagify-server/internal/api/http/handler"
	"github.com/imagify/imagify-server/internal/api/http/middleware"
	"github.com/imagify/imagify-server/internal/logger"
	"github.com/imagify/imagify-server/internal/model"
	"github.com/imagify/imagify-server/internal/service"
)

// Router wires HTTP routes to their handlers and middleware.
type Router struct {
	authService    *service.Auth
	tokenService   *service.TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates a new Router instance.
func New(
	authService *service.Auth,
	tokenService *service.TokenService,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		tokenService:   tokenService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register builds the mux router with logging on every route and bearer
// authentication on the user subtree.
func (r *Router) Register() *mux.Router {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenService, r.contextManager, r.logger)

	root := mux.NewRouter()
	root.Use(logging.Handle)

	r.registerAuthRoutes(root)
	r.registerUserRoutes(root, authenticate)

	return root
}

func (r *Router) registerAuthRoutes(root *mux.Router) {
	authHandler := handler.NewAuth(r.authService, r.logger)

	auth := root.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/register", authHandler.Register).Methods("POST")
	auth.HandleFunc("/verify", authHandler.VerifyEmail).Methods("POST")
	auth.HandleFunc("/resend-code", authHandler.ResendCode).Methods("POST")
	auth.HandleFunc("/login", authHandler.Login).Methods("POST")
	auth.HandleFunc("/google", authHandler.GoogleSignIn).Methods("POST")
	auth.HandleFunc("/refresh", authHandler.Refresh).Methods("POST")
	auth.HandleFunc("/sign-out", authHandler.SignOut).Methods("POST")
	auth.HandleFunc("/forgot-password", authHandler.ForgotPassword).Methods("POST")
	auth.HandleFunc("/verify-reset-code", authHandler.VerifyResetCode).Methods("POST")
	auth.HandleFunc("/set-new-password", authHandler.SetNewPassword).Methods("POST")
}

func (r *Router) registerUserRoutes(root *mux.Router, authenticate *middleware.Authenticate) {
	userHandler := handler.NewUser(r.authService, r.contextManager, r.logger)

	users := root.PathPrefix("/api/users").Subrouter()
	users.Use(authenticate.Handle)
	users.HandleFunc("/me", userHandler.Me).Methods("GET")
	users.HandleFunc("/me", userHandler.UpdateProfile).Methods("PATCH")
	users.HandleFunc("/me", userHandler.DeleteAccount).Methods("DELETE")
	users.HandleFunc("/me/profile-pic", userHandler.UpdateProfilePicture).Methods("PUT")
	users.HandleFunc("/me/password", userHandler.ChangePassword).Methods("PUT")
}
