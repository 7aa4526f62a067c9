// Package metrics keeps process-wide counters and renders them in the
// Prometheus text exposition format.
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

type counter struct {
	name string
	help string
	val  atomic.Uint64
}

var counters []*counter

func newCounter(name, help string) *counter {
	c := &counter{name: name, help: help}
	counters = append(counters, c)
	return c
}

var (
	documentsCreated = newCounter("documents_created_total", "Documents created with their first version")
	versionsAppended = newCounter("document_versions_appended_total", "Ledger entries written")
	versionConflicts = newCounter("document_version_conflicts_total", "Version number collisions that forced a retry")
	sharesCreated    = newCounter("shares_created_total", "Share links issued")
	sharesExpired    = newCounter("shares_expired_total", "Expired share links removed")
	downloads        = newCounter("downloads_total", "Document downloads streamed")

	uploadBytes = newHistogram("upload_size_bytes", "Uploaded payload size in bytes",
		[]float64{64 << 10, 256 << 10, 1 << 20, 4 << 20, 10 << 20, 25 << 20})
)

func IncDocumentsCreated() { documentsCreated.val.Add(1) }
func IncVersionsAppended() { versionsAppended.val.Add(1) }
func IncVersionConflicts() { versionConflicts.val.Add(1) }
func IncSharesCreated()    { sharesCreated.val.Add(1) }
func IncDownloads()        { downloads.val.Add(1) }

// AddSharesExpired counts share tokens removed by the sweeper.
func AddSharesExpired(n int64) {
	if n > 0 {
		sharesExpired.val.Add(uint64(n))
	}
}

// ObserveUploadBytes records the size of an uploaded payload.
func ObserveUploadBytes(size int64) {
	uploadBytes.Observe(float64(max(size, 0)))
}

// Handler serves Render on GET /metrics.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", []byte(Render()))
	}
}

// Render returns every metric in registration order.
func Render() string {
	var b strings.Builder
	for _, c := range counters {
		header(&b, c.name, c.help, "counter")
		fmt.Fprintf(&b, "%s %d\n", c.name, c.val.Load())
	}
	uploadBytes.render(&b)
	return b.String()
}

func header(b *strings.Builder, name, help, kind string) {
	fmt.Fprintf(b, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
}

// histogram stores per-bucket counts; cumulative counts are derived on render.
type histogram struct {
	name   string
	help   string
	bounds []float64

	mu    sync.Mutex
	hits  []uint64 // len(bounds)+1, last slot is +Inf
	sum   float64
	total uint64
}

func newHistogram(name, help string, bounds []float64) *histogram {
	return &histogram{name: name, help: help, bounds: bounds, hits: make([]uint64, len(bounds)+1)}
}

func (h *histogram) Observe(v float64) {
	idx := sort.SearchFloat64s(h.bounds, v)
	h.mu.Lock()
	h.hits[idx]++
	h.sum += v
	h.total++
	h.mu.Unlock()
}

// cumulative returns the running bucket counts, ending with the +Inf bucket.
func (h *histogram) cumulative() (counts []uint64, sum float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	counts = make([]uint64, len(h.hits))
	var running uint64
	for i, n := range h.hits {
		running += n
		counts[i] = running
	}
	return counts, h.sum
}

func (h *histogram) render(b *strings.Builder) {
	counts, sum := h.cumulative()
	header(b, h.name, h.help, "histogram")
	for i, bound := range h.bounds {
		fmt.Fprintf(b, "%s_bucket{le=%q} %d\n", h.name, strconv.FormatFloat(bound, 'f', -1, 64), counts[i])
	}
	total := counts[len(counts)-1]
	fmt.Fprintf(b, "%s_bucket{le=\"+Inf\"} %d\n", h.name, total)
	fmt.Fprintf(b, "%s_sum %s\n%s_count %d\n", h.name, strconv.FormatFloat(sum, 'f', -1, 64), h.name, total)
}
