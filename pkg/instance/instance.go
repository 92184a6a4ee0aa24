package instance

import "os"

// GetID identifies this worker instance in logs. Deployments set WORKER_ID
// per replica; locally the default is enough.
func GetID() string {
	if id := os.Getenv("WORKER_ID"); id != "" {
		return id
	}
	return "worker-0"
}
