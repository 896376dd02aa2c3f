// Package guidepress is a travel-guide publishing engine built with Go, Echo, and templ.
// Guide pages carry schema.org structured data in the document head and a
// scroll-spy table of contents that the browser client keeps in sync.
//
// Users provide their own templ templates via the ViewFuncs struct,
// and guidepress handles the handler logic, middleware, and database operations.
package guidepress

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages. Guide and home views receive an open view model;
// the handler closes it once the component has been written.
type ViewFuncs struct {
	Home           func(v *HomeView) templ.Component
	HomePartial    func(v *HomeView) templ.Component
	Guide          func(v *PageView) templ.Component
	GuidePartial   func(v *PageView) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(guides []Guide, message string, csrfToken string) templ.Component
	AdminForm      func(g Guide, csrfToken string) templ.Component
	AdminImages    func(images []Image, csrfToken string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// App is the central guidepress application. It wires together the store,
// cache, handlers, middleware, and user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *GuideCache
	Views  ViewFuncs

	loginLimiter *LoginLimiter
	customRoutes []func(*App)
}

// New creates a new guidepress App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetPrefix("guidepress")
	e.Logger.SetLevel(log.INFO)

	a := &App{
		Config: cfg,
		Echo:   e,
		Views:  views,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init opens the store and registers middleware and routes without
// starting the listener. Start calls it; tests call it directly.
func (a *App) Init() error {
	if err := a.Config.Validate(); err != nil {
		return err
	}

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("guidepress: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewGuideCache(a.Store, a.Config.GuideCacheTTL)
	a.loginLimiter = NewLoginLimiter(5, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and serves until the listener stops.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Framework assets (the wasm bootstrap) are served under /public/ and
	// fall through to the user's static dir for everything else.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/guide.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.Config.StaticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/guides/", handleGuidesRedirect)
	e.GET("/guides/:slug/", a.handleGuide)
	e.GET("/guides/:slug/schema.json", a.handleGuideSchema)

	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/guide/:slug/", a.handleAdminGuide)
	e.POST("/admin/save/", a.handleAdminSave)
	e.DELETE("/admin/guide/:slug/", a.handleAdminDelete)
	e.GET("/admin/images/", a.handleImageList)
	e.POST("/admin/images/upload/", a.handleImageUpload)
	e.DELETE("/admin/images/:filename/", a.handleImageDelete)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
