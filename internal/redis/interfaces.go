package redis

import "dispatch/internal/service"

// Ensure concrete types implement the service ports.
var (
	_ service.LocationStore  = (*LocationStore)(nil)
	_ service.NearbyLocator  = (*LocationStore)(nil)
	_ service.DispatchLocker = (*LockStore)(nil)
)
