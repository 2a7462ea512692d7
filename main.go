package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	socketio "github.com/zishang520/socket.io/v2/socket"

	"github.com/Darshanscodehub/CodeCollab/collab"
	"github.com/Darshanscodehub/CodeCollab/handlers/api/execute"
	"github.com/Darshanscodehub/CodeCollab/handlers/api/rooms"
	"github.com/Darshanscodehub/CodeCollab/handlers/api/snippets"
	"github.com/Darshanscodehub/CodeCollab/handlers/auth"
	"github.com/Darshanscodehub/CodeCollab/handlers/websocket"
	authMiddleware "github.com/Darshanscodehub/CodeCollab/middleware"
	"github.com/Darshanscodehub/CodeCollab/runner"
	"github.com/Darshanscodehub/CodeCollab/stores"
)

// handleUI serves the static frontend from FRONTEND_PATH. Page routes
// without an extension fall back to <name>.html so the editor's clean
// URLs keep working.
func handleUI() http.HandlerFunc {
	frontendPath := os.Getenv("FRONTEND_PATH")
	if frontendPath == "" {
		frontendPath = "./public"
	}

	return func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		if path == "" {
			path = "index.html"
		}
		full := filepath.Join(frontendPath, filepath.Clean("/"+path))
		if info, err := os.Stat(full); err != nil || info.IsDir() {
			if strings.Contains(path, ".") {
				http.NotFound(w, r)
				return
			}
			full = filepath.Join(frontendPath, path+".html")
			if _, err := os.Stat(full); err != nil {
				http.NotFound(w, r)
				return
			}
		}
		http.ServeFile(w, r, full)
	}
}

func setupRouter(store stores.Store, hub *collab.Hub, codeRunner *runner.Runner) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length", "X-CSRF-Token", "Token", "session", "Origin", "Host", "Connection", "Accept-Encoding", "Accept-Language", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Post("/signup", auth.HandleSignup(store))
	r.Post("/login", auth.HandleLogin(store))
	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", auth.HandleGitHubLogin)
		r.Get("/callback", auth.HandleGitHubCallback)
	})

	r.Post("/run", execute.HandleRun(codeRunner))
	r.Get("/api/rooms", rooms.HandleList(hub))

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.AuthJWT)
		r.Route("/snippets", func(r chi.Router) {
			r.Post("/", snippets.HandleCreate(store))
			r.Get("/", snippets.HandleList(store))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", snippets.HandleGet(store))
				r.Put("/", snippets.HandleUpdate(store))
				r.Delete("/", snippets.HandleDelete(store))
			})
		})
		r.Get("/files", snippets.HandleListFiles(store))
		r.Post("/folders", snippets.HandleCreateFolder(store))
	})

	return r
}

func waitForShutdown(ioo *socketio.Server, cancel context.CancelFunc) {
	exit := make(chan struct{})
	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				close(exit)
				return
			}
		}
	}()

	<-exit
	cancel()
	ioo.Close(nil)
	logrus.Info("Shutting down...")
	os.Exit(0)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	listenAddress := flag.String("listen", ":3000", "The address to listen on.")
	logLevel := flag.String("loglevel", "info", "The log level (debug, info, warn, error).")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	auth.Init()
	store := stores.GetStore()

	ctx, cancel := context.WithCancel(context.Background())
	hub := collab.NewHub(collab.NewRegistry())
	go hub.Run(ctx)

	scratchDir := os.Getenv("RUNNER_TEMP_DIR")
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	codeRunner := runner.New(scratchDir, 10*time.Second)

	r := setupRouter(store, hub, codeRunner)

	ioo := websocket.SetupSocketIO(hub)
	r.Mount("/socket.io/", ioo.ServeHandler(nil))
	r.NotFound(handleUI())

	logrus.WithField("addr", *listenAddress).Info("starting server")
	go func() {
		if err := http.ListenAndServe(*listenAddress, r); err != nil {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	logrus.Debug("Server is running in the background")
	waitForShutdown(ioo, cancel)
}
