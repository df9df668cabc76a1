package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/recipic-shop/recipic/internal/auth/service"
	"github.com/recipic-shop/recipic/internal/auth/store"
	"github.com/recipic-shop/recipic/pkg/httpx"
	"github.com/recipic-shop/recipic/pkg/jwtx"
	"github.com/recipic-shop/recipic/pkg/slogx"

	_ "github.com/recipic-shop/recipic/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	issuer       string
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store              store.Store
	AuthService        *service.AuthService
	SocialLoginService *service.SocialLoginService

	// Frontend redirect targets for the social login callback.
	SocialSuccessURL string
	SocialFailureURL string
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	issuer, buildVersion string,
	corsOrigins []string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		issuer:       issuer,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain. Authn runs once per request: a valid
	// bearer populates the auth context, anything else passes through
	// anonymous and the per-route RequireAuth guards decide.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORSMiddleware(corsOrigins),
		httpx.AuthnMiddleware(verifier),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAccount()
	r.registerSessions()
	r.registerSocial()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Recipic Auth Service API
//	@version		0.1.0
//	@description	Authentication and session service for the Recipic recipe platform: email/password signup with
//	@description	activation, social login, and JWT access/refresh token pairs with rotation.
//	@description
//	@description				All tokens are signed with EdDSA (Ed25519) and can be verified using the JWKS endpoint.
//
//	@contact.name				Recipic Team
//	@contact.url				https://github.com/recipic-shop/recipic
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAccount() {
	h := &AccountHandler{AuthService: r.AuthService}

	// Account creation endpoints get strict per-IP limits (abuse surface).
	r.Mux.Handle("POST /auth/signup",
		httpx.Chain(http.HandlerFunc(h.HandleSignup),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Resend triggers outbound mail, so it stays on the strict profile too.
	r.Mux.Handle("POST /auth/resend-activation",
		httpx.Chain(http.HandlerFunc(h.HandleResendActivation),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /auth/activate",
		httpx.Chain(http.HandlerFunc(h.HandleActivate),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// Signup forms poll this while typing, so it gets the moderate profile.
	r.Mux.Handle("GET /auth/check-email",
		httpx.Chain(http.HandlerFunc(h.HandleCheckEmail),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSessions() {
	h := &SessionHandler{AuthService: r.AuthService}

	// POST /auth/login - strict rate limit by IP (authentication attempts)
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/reissue - moderate; clients rotate at most once per access TTL
	r.Mux.Handle("POST /auth/reissue",
		httpx.Chain(http.HandlerFunc(h.HandleReissue),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /auth/logout - requires a valid access token
	securedLogout := httpx.Chain(http.HandlerFunc(h.HandleLogout),
		httpx.RequireAuth,
		httpx.RateLimitByMember(httpx.ModerateLimit),
	)
	r.Mux.Handle("POST /auth/logout", securedLogout)

	r.Mux.Handle("GET /auth/autologin",
		httpx.Chain(http.HandlerFunc(h.HandleAutoLogin),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	me := &MeHandler{AuthService: r.AuthService}
	securedMe := httpx.Chain(http.HandlerFunc(me.HandleMe),
		httpx.RequireAuth,
		httpx.RateLimitByMember(httpx.LenientLimit),
	)
	r.Mux.Handle("GET /auth/me", securedMe)

	securedUpdate := httpx.Chain(http.HandlerFunc(me.HandleUpdateMe),
		httpx.RequireAuth,
		httpx.RateLimitByMember(httpx.ModerateLimit),
	)
	r.Mux.Handle("PUT /auth/me", securedUpdate)

	securedDelete := httpx.Chain(http.HandlerFunc(me.HandleDeleteMe),
		httpx.RequireAuth,
		httpx.RateLimitByMember(httpx.ModerateLimit),
	)
	r.Mux.Handle("DELETE /auth/me", securedDelete)

	// PUT /auth/password - strict, password material in flight
	securedPassword := httpx.Chain(http.HandlerFunc(me.HandleChangePassword),
		httpx.RequireAuth,
		httpx.RateLimitByMember(httpx.StrictLimit),
	)
	r.Mux.Handle("PUT /auth/password", securedPassword)
}

func (r *Router) registerSocial() {
	h := &SocialHandler{
		SocialService: r.SocialLoginService,
		SuccessURL:    r.SocialSuccessURL,
		FailureURL:    r.SocialFailureURL,
	}

	r.Mux.Handle("GET /auth/oauth2/{provider}",
		httpx.Chain(http.HandlerFunc(h.HandleAuthorize),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /login/oauth2/code/{provider}",
		httpx.Chain(http.HandlerFunc(h.HandleCallback),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// GET /jwks.json - public endpoint with high limit
	r.Mux.Handle("GET /.well-known/jwks.json",
		httpx.Chain(JWKSHandler(r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
