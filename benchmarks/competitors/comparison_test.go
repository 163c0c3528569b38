// Package competitors benchmarks pulsar's routing tree and middleware
// chain against Gin, Echo, Fiber, and fasthttp on the same request
// shapes, grounded on bolt/benchmarks/benchmark_test.go's
// scenario set (static route, dynamic route, middleware chain) and
// shockwave/benchmarks/competitors's fasthttp/gorilla-websocket
// baselines.
//
// Run with: go test -bench=. -benchmem ./benchmarks/competitors
package competitors

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gofiber/fiber/v2"
	"github.com/labstack/echo/v4"
	"github.com/valyala/fasthttp"

	"github.com/yourusername/pulsar"
	"github.com/yourusername/pulsar/extract"
	"github.com/yourusername/pulsar/middleware"
	"github.com/yourusername/pulsar/route"
)

type simpleResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func pulsarStaticTree() route.Handler {
	root := route.New("ping").Get(pulsar.HandlerFunc(func(*pulsar.Request) (*pulsar.Response, error) {
		return pulsar.JSON(simpleResponse{Message: "pong"})
	}))
	return route.Handler{Root: route.Compile(root)}
}

func pulsarDynamicTree() route.Handler {
	root := route.New("users/<id>").Get(pulsar.HandlerFunc(func(req *pulsar.Request) (*pulsar.Response, error) {
		id, err := extract.PathValue[string](req, "id")
		if err != nil {
			return nil, err
		}
		return pulsar.JSON(userResponse{ID: 123, Name: "User", Email: id + "@example.com"})
	}))
	return route.Handler{Root: route.Compile(root)}
}

func pulsarMiddlewareTree() route.Handler {
	root := route.New("data").Get(pulsar.HandlerFunc(func(*pulsar.Request) (*pulsar.Response, error) {
		return pulsar.JSON(simpleResponse{Message: "ok"})
	}))
	passthrough := pulsar.MiddlewareFunc(func(req *pulsar.Request, next *pulsar.Next) (*pulsar.Response, error) {
		return next.Call(req)
	})
	for i := 0; i < 5; i++ {
		root.Hook(passthrough)
	}
	root.Hook(middleware.Recovery())
	return route.Handler{Root: route.Compile(root)}
}

func pulsarRequest(method, path string) *pulsar.Request {
	u, _ := url.Parse(path)
	return pulsar.NewRequest(method, u, "HTTP/1.1", http.Header{}, nil)
}

// --- Scenario 1: static route ---

func BenchmarkPulsar_StaticRoute(b *testing.B) {
	h := pulsarStaticTree()
	req := pulsarRequest("GET", "/ping")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := h.Handle(req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGin_StaticRoute(b *testing.B) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, simpleResponse{Message: "pong"})
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	w := httptest.NewRecorder()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Body.Reset()
		r.ServeHTTP(w, req)
	}
}

func BenchmarkEcho_StaticRoute(b *testing.B) {
	e := echo.New()
	e.GET("/ping", func(c echo.Context) error {
		return c.JSON(200, simpleResponse{Message: "pong"})
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	rec := httptest.NewRecorder()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec.Body.Reset()
		e.ServeHTTP(rec, req)
	}
}

func BenchmarkFiber_StaticRoute(b *testing.B) {
	app := fiber.New()
	app.Get("/ping", func(c *fiber.Ctx) error {
		return c.JSON(simpleResponse{Message: "pong"})
	})

	req := httptest.NewRequest("GET", "/ping", nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = app.Test(req, -1)
	}
}

func BenchmarkFastHTTP_StaticRoute(b *testing.B) {
	handler := func(ctx *fasthttp.RequestCtx) {
		ctx.SetContentType("application/json")
		ctx.WriteString(`{"message":"pong"}`)
	}
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/ping")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler(ctx)
	}
}

// --- Scenario 2: dynamic route with path parameter ---

func BenchmarkPulsar_DynamicRoute(b *testing.B) {
	h := pulsarDynamicTree()
	req := pulsarRequest("GET", "/users/123")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := h.Handle(req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGin_DynamicRoute(b *testing.B) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.GET("/users/:id", func(c *gin.Context) {
		id := c.Param("id")
		c.JSON(200, userResponse{ID: 123, Name: "User", Email: id + "@example.com"})
	})

	req := httptest.NewRequest("GET", "/users/123", nil)
	w := httptest.NewRecorder()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Body.Reset()
		r.ServeHTTP(w, req)
	}
}

func BenchmarkEcho_DynamicRoute(b *testing.B) {
	e := echo.New()
	e.GET("/users/:id", func(c echo.Context) error {
		id := c.Param("id")
		return c.JSON(200, userResponse{ID: 123, Name: "User", Email: id + "@example.com"})
	})

	req := httptest.NewRequest("GET", "/users/123", nil)
	rec := httptest.NewRecorder()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec.Body.Reset()
		e.ServeHTTP(rec, req)
	}
}

func BenchmarkFiber_DynamicRoute(b *testing.B) {
	app := fiber.New()
	app.Get("/users/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		return c.JSON(userResponse{ID: 123, Name: "User", Email: id + "@example.com"})
	})

	req := httptest.NewRequest("GET", "/users/123", nil)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = app.Test(req, -1)
	}
}

// --- Scenario 3: middleware chain (5 pass-through + recovery) ---

func BenchmarkPulsar_Middleware(b *testing.B) {
	h := pulsarMiddlewareTree()
	req := pulsarRequest("GET", "/data")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := h.Handle(req); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGin_Middleware(b *testing.B) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	passthrough := func(c *gin.Context) { c.Next() }
	for i := 0; i < 5; i++ {
		r.Use(passthrough)
	}
	r.Use(gin.Recovery())
	r.GET("/data", func(c *gin.Context) {
		c.JSON(200, simpleResponse{Message: "ok"})
	})

	req := httptest.NewRequest("GET", "/data", nil)
	w := httptest.NewRecorder()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Body.Reset()
		r.ServeHTTP(w, req)
	}
}
