package common

import (
	"os"
	"sync"
)

const DefaultServiceName = "creativehub"

var (
	instanceOnce sync.Once
	instance     string
)

func GetServiceName() string {
	if name := os.Getenv("SERVICE_NAME"); name != "" {
		return name
	}
	return DefaultServiceName
}

// GetServiceInstance is the hostname, resolved once.
func GetServiceInstance() string {
	instanceOnce.Do(func() {
		hostname, err := os.Hostname()
		if err != nil || hostname == "" {
			hostname = "unknown"
		}
		instance = hostname
	})
	return instance
}
