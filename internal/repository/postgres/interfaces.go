package postgres

import (
	"dispatch/internal/repository"
	"dispatch/internal/service"
)

var (
	_ repository.RiderRepository      = (*RiderRepository)(nil)
	_ repository.OrderEventRepository = (*OrderEventRepository)(nil)
	_ service.EventSink               = (*OrderEventRepository)(nil)
)
