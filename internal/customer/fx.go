package customer

import (
	"github.com/smallbiznis/rescart/internal/customer/repository"
	"github.com/smallbiznis/rescart/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
