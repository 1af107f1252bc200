package memory

import (
	"dispatch/internal/repository"
	"dispatch/internal/service"
)

// Ensure concrete types implement the service ports.
var (
	_ service.LocationStore           = (*LocationStore)(nil)
	_ service.DispatchLocker          = (*LockStore)(nil)
	_ service.RiderRegistry           = (*RiderRegistry)(nil)
	_ service.OrderLedger             = (*OrderLedger)(nil)
	_ service.EventSink               = (*OrderJournal)(nil)
	_ repository.OrderEventRepository = (*OrderJournal)(nil)
)
