package monitor

import (
	"os"
	"runtime"
	"time"

	"admission-workflow-api/config"

	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

// RegisterMonitorPage mounts a minimal operations page: a status endpoint
// plus a token-gated log tail. The token comes from MONITOR_TOKEN; with no
// token set the log route stays disabled.
func RegisterMonitorPage(router *gin.Engine) {
	router.GET("/monitor", func(c *gin.Context) {
		c.Data(200, "text/html; charset=utf-8", []byte(monitorPage))
	})

	router.GET("/monitor/status", func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		c.JSON(200, gin.H{
			"status":         "ok",
			"uptime_seconds": int(time.Since(startedAt).Seconds()),
			"goroutines":     runtime.NumGoroutine(),
			"heap_alloc_mb":  float64(m.HeapAlloc) / (1024 * 1024),
			"go_version":     runtime.Version(),
		})
	})

	router.GET("/monitor/logs", func(c *gin.Context) {
		token := os.Getenv("MONITOR_TOKEN")
		if token == "" || c.Query("token") != token {
			c.JSON(401, gin.H{"error": "Unauthorized"})
			return
		}
		logData, err := os.ReadFile(config.LogFilePath())
		if err != nil {
			c.JSON(500, gin.H{"error": "Unable to read log"})
			return
		}
		c.Data(200, "text/plain; charset=utf-8", logData)
	})
}

const monitorPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <title>Admission API Monitor</title>
  <style>
    body { background: #111; color: #ddd; font-family: monospace; padding: 2rem; }
    h1 { color: #7aa2f7; }
    pre { background: #1a1a1a; padding: 1rem; border-radius: 6px; }
  </style>
</head>
<body>
  <h1>Admission Workflow API</h1>
  <pre id="status">loading...</pre>
  <script>
    function refresh() {
      fetch('/monitor/status')
        .then(res => res.json())
        .then(data => {
          document.getElementById('status').textContent = JSON.stringify(data, null, 2);
        });
    }
    refresh();
    setInterval(refresh, 5000);
  </script>
</body>
</html>`
