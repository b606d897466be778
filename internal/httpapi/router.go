package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// pathID peels the identifier out of /<prefix>/{id} or /<prefix>/{id}/<suffix>.
// Empty return means the path did not match.
func pathID(path, prefix, suffix string) string {
	rest := strings.TrimPrefix(path, prefix)
	if rest == path {
		return ""
	}
	if suffix != "" {
		if !strings.HasSuffix(rest, suffix) {
			return ""
		}
		rest = strings.TrimSuffix(rest, suffix)
	}
	if rest == "" || strings.Contains(rest, "/") {
		return ""
	}
	return rest
}

// RegisterVehicleRoutes 注册车辆管理路由（需登录）
func (r *Router) RegisterVehicleRoutes(v *VehiclesHandler, m *AuthMiddleware) {
	r.Handle("/api/v1/vehicles", m.Require(func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			v.List(w, req)
		case http.MethodPost:
			v.Register(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))

	r.Handle("/api/v1/vehicles/", m.Require(func(w http.ResponseWriter, req *http.Request) {
		// /api/v1/vehicles/{id}/status
		if id := pathID(req.URL.Path, "/api/v1/vehicles/", "/status"); id != "" {
			if req.Method != http.MethodPatch && req.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			v.SetStatus(w, req, id)
			return
		}
		// /api/v1/vehicles/{id}
		id := pathID(req.URL.Path, "/api/v1/vehicles/", "")
		if id == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		v.Get(w, req, id)
	}))
}

// RegisterAssignmentRoutes 注册行程指派路由（需登录）
func (r *Router) RegisterAssignmentRoutes(a *AssignmentsHandler, m *AuthMiddleware) {
	r.Handle("/api/v1/assignments", m.Require(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		a.Create(w, req)
	}))

	r.Handle("/api/v1/assignments/", m.Require(func(w http.ResponseWriter, req *http.Request) {
		vehicleID := pathID(req.URL.Path, "/api/v1/assignments/", "")
		if vehicleID == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch req.Method {
		case http.MethodGet:
			a.Get(w, req, vehicleID)
		case http.MethodDelete:
			a.Delete(w, req, vehicleID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
}

// RegisterPublicRoutes 注册匿名公开路由（扫码落地页）
func (r *Router) RegisterPublicRoutes(p *PublicHandler, m *AuthMiddleware) {
	r.Handle("/api/v1/public/vehicles/", m.Optional(func(w http.ResponseWriter, req *http.Request) {
		// /api/v1/public/vehicles/{id}/scan
		if id := pathID(req.URL.Path, "/api/v1/public/vehicles/", "/scan"); id != "" {
			if req.Method != http.MethodPost {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			p.Scan(w, req, id)
			return
		}
		// /api/v1/public/vehicles/{id}
		id := pathID(req.URL.Path, "/api/v1/public/vehicles/", "")
		if id == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		p.Resolve(w, req, id)
	}))
}

// RegisterAnalyticsRoutes 注册统计路由（需登录）
func (r *Router) RegisterAnalyticsRoutes(a *AnalyticsHandler, m *AuthMiddleware) {
	r.Handle("/api/v1/analytics/vehicle-scans", m.Require(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		a.VehicleScans(w, req)
	}))

	r.Handle("/api/v1/analytics/vehicle-scans/export", m.Require(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		a.ExportVehicleScans(w, req)
	}))
}
