package runs

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/trikesim/core/eventlog"
	"github.com/kilianp07/trikesim/core/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

// validRunID accepts the ids produced by the simulator: letters, digits,
// dashes and underscores.
func validRunID(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

type handler struct {
	store   eventlog.Store
	dataDir string
}

// NewRouter exposes finished runs read-only:
//
//	GET /health
//	GET /runs
//	GET /runs/:id/summary
//	GET /runs/:id/kpis
//	GET /runs/:id/events?entity_kind=&entity_id=&kind=&from=&to=
func NewRouter(store eventlog.Store, dataDir string) *gin.Engine {
	h := &handler{store: store, dataDir: dataDir}
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
	r.GET("/runs", h.list)
	r.GET("/runs/:id/summary", h.file("summary.json"))
	r.GET("/runs/:id/kpis", h.file("kpis.json"))
	r.GET("/runs/:id/events", h.events)
	return r
}

func (h *handler) list(c *gin.Context) {
	entries, err := os.ReadDir(h.dataDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	ids := []string{}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(h.dataDir, e.Name(), "summary.json")); err == nil {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	c.JSON(http.StatusOK, gin.H{"runs": ids})
}

func (h *handler) file(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if !validRunID(id) {
			writeError(c, http.StatusBadRequest, "invalid run id")
			return
		}
		data, err := os.ReadFile(filepath.Join(h.dataDir, id, name))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			writeError(c, http.StatusNotFound, "run "+id+": "+strings.TrimSuffix(name, ".json")+" not found")
			return
		case err != nil:
			writeError(c, http.StatusInternalServerError, "internal error")
			return
		}
		c.Data(http.StatusOK, "application/json", data)
	}
}

func (h *handler) events(c *gin.Context) {
	id := c.Param("id")
	if !validRunID(id) {
		writeError(c, http.StatusBadRequest, "invalid run id")
		return
	}
	q := eventlog.Query{
		RunID:      id,
		EntityKind: c.Query("entity_kind"),
		EntityID:   c.Query("entity_id"),
		Kind:       model.EventKind(strings.ToUpper(c.Query("kind"))),
	}
	for param, dst := range map[string]*int64{"from": &q.From, "to": &q.To} {
		s := c.Query(param)
		if s == "" {
			continue
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid "+param)
			return
		}
		*dst = v
	}
	recs, err := h.store.Query(c.Request.Context(), q)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if recs == nil {
		recs = []eventlog.Record{}
	}
	c.JSON(http.StatusOK, recs)
}
