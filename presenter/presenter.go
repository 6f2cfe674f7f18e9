package presenter

import (
	"time"

	adminhandler "github.com/lendora/backoffice/internal/handler/admin"
	edithandler "github.com/lendora/backoffice/internal/handler/edit"
	lendinghandler "github.com/lendora/backoffice/internal/handler/lending"
	privatehandler "github.com/lendora/backoffice/internal/handler/private"
	customerrepo "github.com/lendora/backoffice/internal/repository/customer"
	editrepo "github.com/lendora/backoffice/internal/repository/edit"
	loanrepo "github.com/lendora/backoffice/internal/repository/loan"
	segmentrepo "github.com/lendora/backoffice/internal/repository/segment"
	staffrepo "github.com/lendora/backoffice/internal/repository/staff"
	"github.com/lendora/backoffice/internal/service"
	customersrv "github.com/lendora/backoffice/internal/service/customer"
	editsrv "github.com/lendora/backoffice/internal/service/edit"
	loansrv "github.com/lendora/backoffice/internal/service/loan"
	privatesrv "github.com/lendora/backoffice/internal/service/private"
	segmentsrv "github.com/lendora/backoffice/internal/service/segment"
	staffsrv "github.com/lendora/backoffice/internal/service/staff"

	"github.com/lendora/backoffice/config"
	"github.com/lendora/backoffice/pkg/notify"
	"github.com/lendora/backoffice/pkg/telemetry"

	"gorm.io/gorm"
)

type Presenter struct {
	PrivatePresenter *privatehandler.PrivateHandler
	AdminPresenter   *adminhandler.AdminHandler
	LendingPresenter *lendinghandler.LendingHandler
	EditPresenter    *edithandler.EditHandler

	LoanService service.LoanServices
}

func NewPresenter(
	db *gorm.DB,
	cfg *config.Config,
	tel *telemetry.OpenTelemetry,
) Presenter {
	// Repository
	staffRepositoryMeter := tel.MeterProvider.Meter("staff-repository-meter")
	staffRepositoryTracer := tel.TracerProvider.Tracer("staff-repository-tracer")
	staffRepository := staffrepo.NewStaffRepository(
		db,
		staffRepositoryMeter,
		staffRepositoryTracer,
		tel.Log,
	)

	customerRepositoryMeter := tel.MeterProvider.Meter("customer-repository-meter")
	customerRepositoryTracer := tel.TracerProvider.Tracer("customer-repository-tracer")
	customerRepository := customerrepo.NewCustomerRepository(
		db,
		customerRepositoryMeter,
		customerRepositoryTracer,
		tel.Log,
	)

	segmentRepositoryMeter := tel.MeterProvider.Meter("segment-repository-meter")
	segmentRepositoryTracer := tel.TracerProvider.Tracer("segment-repository-tracer")
	segmentRepository := segmentrepo.NewSegmentConfigRepository(
		db,
		segmentRepositoryMeter,
		segmentRepositoryTracer,
		tel.Log,
	)

	loanRepositoryMeter := tel.MeterProvider.Meter("loan-repository-meter")
	loanRepositoryTracer := tel.TracerProvider.Tracer("loan-repository-tracer")
	loanRepository := loanrepo.NewLoanRepository(
		db,
		loanRepositoryMeter,
		loanRepositoryTracer,
		tel.Log,
	)

	editRepositoryMeter := tel.MeterProvider.Meter("edit-repository-meter")
	editRepositoryTracer := tel.TracerProvider.Tracer("edit-repository-tracer")
	editRepository := editrepo.NewPendingEditRepository(
		db,
		editRepositoryMeter,
		editRepositoryTracer,
		tel.Log,
	)

	sender := notify.NewLogSender(tel.Log)

	// Service
	privateServiceMeter := tel.MeterProvider.Meter("private-service-meter")
	privateServiceTracer := tel.TracerProvider.Tracer("private-service-trace")
	privateService := privatesrv.NewPrivateService(
		db,
		cfg.JWT_SECRET_KEY,
		staffRepository,
		privateServiceMeter,
		privateServiceTracer,
		tel.Log,
	)

	segmentServiceMeter := tel.MeterProvider.Meter("segment-service-meter")
	segmentServiceTracer := tel.TracerProvider.Tracer("segment-service-trace")
	segmentService := segmentsrv.NewSegmentService(
		db,
		segmentRepository,
		segmentServiceMeter,
		segmentServiceTracer,
		tel.Log,
	)

	staffServiceMeter := tel.MeterProvider.Meter("staff-service-meter")
	staffServiceTracer := tel.TracerProvider.Tracer("staff-service-trace")
	staffService := staffsrv.NewStaffService(
		db,
		staffRepository,
		staffServiceMeter,
		staffServiceTracer,
		tel.Log,
	)

	customerServiceMeter := tel.MeterProvider.Meter("customer-service-meter")
	customerServiceTracer := tel.TracerProvider.Tracer("customer-service-trace")
	customerService := customersrv.NewCustomerService(
		db,
		customerRepository,
		customerServiceMeter,
		customerServiceTracer,
		tel.Log,
	)

	loanServiceMeter := tel.MeterProvider.Meter("loan-service-meter")
	loanServiceTracer := tel.TracerProvider.Tracer("loan-service-trace")
	loanService := loansrv.NewLoanService(
		db,
		loanRepository,
		customerRepository,
		segmentRepository,
		staffRepository,
		staffService,
		sender,
		time.Now,
		loanServiceMeter,
		loanServiceTracer,
		tel.Log,
	)

	editServiceMeter := tel.MeterProvider.Meter("edit-service-meter")
	editServiceTracer := tel.TracerProvider.Tracer("edit-service-trace")
	editService := editsrv.NewEditService(
		db,
		editRepository,
		time.Now,
		editServiceMeter,
		editServiceTracer,
		tel.Log,
	)

	// Handler
	privateHandlerMeter := tel.MeterProvider.Meter("private-handler-meter")
	privateHandlerTracer := tel.TracerProvider.Tracer("private-handler-trace")
	privateHandler := privatehandler.NewPrivateHandler(
		privateService,
		privateHandlerMeter,
		privateHandlerTracer,
		tel.Log,
	)

	adminHandlerMeter := tel.MeterProvider.Meter("admin-handler-meter")
	adminHandlerTracer := tel.TracerProvider.Tracer("admin-handler-trace")
	adminHandler := adminhandler.NewAdminHandler(
		segmentService,
		staffService,
		customerService,
		adminHandlerMeter,
		adminHandlerTracer,
		tel.Log,
	)

	lendingHandlerMeter := tel.MeterProvider.Meter("lending-handler-meter")
	lendingHandlerTracer := tel.TracerProvider.Tracer("lending-handler-trace")
	lendingHandler := lendinghandler.NewLendingHandler(
		loanService,
		lendingHandlerMeter,
		lendingHandlerTracer,
		tel.Log,
	)

	editHandlerMeter := tel.MeterProvider.Meter("edit-handler-meter")
	editHandlerTracer := tel.TracerProvider.Tracer("edit-handler-trace")
	editHandler := edithandler.NewEditHandler(
		editService,
		editHandlerMeter,
		editHandlerTracer,
		tel.Log,
	)

	return Presenter{
		PrivatePresenter: privateHandler,
		AdminPresenter:   adminHandler,
		LendingPresenter: lendingHandler,
		EditPresenter:    editHandler,

		LoanService: loanService,
	}
}
