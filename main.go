package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"rrt-planner/rrt"
	"rrt-planner/scene"
)

// plannerServer holds the obstacle set shared by requests that bring none
type plannerServer struct {
	mu     sync.RWMutex
	scene  *scene.Scene
	index  *rrt.ObstacleIndex
	logger *log.Logger
}

func newPlannerServer(logger *log.Logger) *plannerServer {
	s := &plannerServer{logger: logger}
	s.setScene(&scene.Scene{})
	return s
}

// setScene replaces the shared scene, dropping obstacles hidden inside others
func (s *plannerServer) setScene(sc *scene.Scene) {
	sc.Obstacles = scene.RemoveContained(sc.Obstacles)
	index := rrt.NewObstacleIndex(sc.Obstacles)

	s.mu.Lock()
	s.scene = sc
	s.index = index
	s.mu.Unlock()
}

func (s *plannerServer) shared() (*scene.Scene, *rrt.ObstacleIndex) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scene, s.index
}

func newHandler(s *plannerServer) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	router.HandleFunc("/obstacles", s.getObstaclesHandler).Methods(http.MethodGet)
	router.HandleFunc("/obstacles", s.putObstaclesHandler).Methods(http.MethodPut)
	router.HandleFunc("/route", s.routeHandler).Methods(http.MethodPost)
	router.HandleFunc("/route/geojson", s.routeGeoJSONHandler).Methods(http.MethodPost)
	router.HandleFunc("/route/svg", s.routeSVGHandler).Methods(http.MethodPost)

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	obstacles := flag.String("obstacles", "", "GeoJSON or SVG scene file, or a directory of them, loaded at start-up")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)
	server := newPlannerServer(logger)

	logger.Println("========================================")
	logger.Println("🚀 RRT Motion Planner Server")
	logger.Println("========================================")

	if *obstacles != "" {
		logger.Printf("Loading scene from %s...\n", *obstacles)
		var sc *scene.Scene
		var err error
		if info, statErr := os.Stat(*obstacles); statErr == nil && info.IsDir() {
			sc, err = scene.LoadDir(*obstacles)
		} else {
			sc, err = scene.LoadFile(*obstacles)
		}
		if err == nil {
			err = rrt.ValidateObstacles(sc.Obstacles)
		}
		if err != nil {
			logger.Fatalf("❌ Failed to load scene: %v\n", err)
		}
		before := len(sc.Obstacles)
		server.setScene(sc)
		loaded, _ := server.shared()
		logger.Printf("✅ Loaded %d obstacles (%d before pruning contained ones)\n",
			len(loaded.Obstacles), before)
		logger.Printf("   Bounds: (%.1f, %.1f) %.1fx%.1f\n",
			loaded.Bounds.X, loaded.Bounds.Y, loaded.Bounds.Width, loaded.Bounds.Height)
	} else {
		logger.Println("ℹ️  No scene file given; requests must carry their own obstacles")
		logger.Println("   or PUT /obstacles first")
	}
	logger.Println("")

	logger.Printf("Server starting on %s\n", *addr)
	logger.Println("")
	logger.Println("Endpoints:")
	logger.Println("  GET  /health          - Check server status")
	logger.Println("  GET  /obstacles       - Current shared scene")
	logger.Println("  PUT  /obstacles       - Replace shared scene")
	logger.Println("  POST /route           - Plan a path")
	logger.Println("  POST /route/geojson   - Plan a path, answer as GeoJSON")
	logger.Println("  POST /route/svg       - Plan a path, answer as SVG")
	logger.Println("")
	logger.Println("CORS enabled for all origins")
	logger.Println("========================================")
	logger.Println("")

	if err := http.ListenAndServe(*addr, newHandler(server)); err != nil {
		logger.Fatal(err)
	}
}
