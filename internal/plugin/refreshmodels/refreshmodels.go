// Package refreshmodels adds a POST /api/nsw/refresh-models route to the
// engine's HTTP surface. Character LoRAs are downloaded at job time, after
// the engine has already cached its list of available models at startup;
// without an explicit clear, workflow validation rejects the new filenames
// with "value_not_in_list" errors.
package refreshmodels

import (
	"log"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// ListingCache is the engine's record of which model files are currently
// selectable. Whoever owns the listing exposes it here as a single
// capability: it can be cleared.
type ListingCache interface {
	Clear()
}

// Register adds the refresh route to r, clearing cache on each call.
func Register(r gin.IRouter, cache ListingCache) {
	r.POST("/api/nsw/refresh-models", func(c *gin.Context) {
		if cache == nil {
			log.Printf("[nsw] Model listing cache not configured")
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "model listing cache not configured",
			})
			return
		}

		cache.Clear()
		log.Printf("[nsw] Cleared model listing cache")
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// FilenameListCache is a mutex-guarded filename listing keyed by model
// folder, the shape the engine keeps per folder ("loras", "checkpoints").
type FilenameListCache struct {
	mu      sync.Mutex
	entries map[string][]string
}

// NewFilenameListCache creates an empty listing cache.
func NewFilenameListCache() *FilenameListCache {
	return &FilenameListCache{
		entries: make(map[string][]string),
	}
}

// Store records the filename listing for a folder.
func (c *FilenameListCache) Store(folder string, filenames []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[folder] = filenames
}

// Lookup returns the cached listing for a folder, if any.
func (c *FilenameListCache) Lookup(folder string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	filenames, ok := c.entries[folder]
	return filenames, ok
}

// Clear drops every cached listing so the next lookup rebuilds from disk.
func (c *FilenameListCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]string)
}
