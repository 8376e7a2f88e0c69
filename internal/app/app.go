package app

import (
	"context"
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/openretail/poscore/config"
	"github.com/openretail/poscore/internal/billing"
	"github.com/openretail/poscore/internal/catalog"
	"github.com/openretail/poscore/internal/domain"
	"github.com/openretail/poscore/internal/ledger"
	"github.com/openretail/poscore/internal/printer"
	"github.com/openretail/poscore/internal/scale"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

// Application is the process composition root. It owns the store handle,
// the event bus and every coordinator lifecycle; the UI layer only talks
// to the components it hands out.
type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	sched     *cron.Cron
	bus       EventBus.Bus

	catalogRepo catalog.Repository
	ledgerRepo  ledger.Repository
	sessions    *billing.Manager
	selector    *billing.Selector
	committer   *billing.Committer
	reorderer   *catalog.Reorderer
	monitor     *scale.Monitor
	renderer    *billing.ReceiptRenderer
}

var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ BusProvider       = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig { return a.appConfig }
func (a *Application) DB() *gorm.DB              { return a.gormDB }
func (a *Application) Bus() EventBus.Bus         { return a.bus }
func (a *Application) Scheduler() *cron.Cron     { return a.sched }

func (a *Application) Catalog() catalog.Repository   { return a.catalogRepo }
func (a *Application) Ledger() ledger.Repository     { return a.ledgerRepo }
func (a *Application) Sessions() *billing.Manager    { return a.sessions }
func (a *Application) Selector() *billing.Selector   { return a.selector }
func (a *Application) Committer() *billing.Committer { return a.committer }
func (a *Application) Reorderer() *catalog.Reorderer { return a.reorderer }
func (a *Application) Scale() *scale.Monitor         { return a.monitor }

// OverrideDB replaces the application's database handle (used in tests).
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
}

func (a *Application) Init(cfg *config.AppConfig) error {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	a.initLogger(cfg)

	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	a.gormDB, err = getDatabase(cfg.Database, cfg.System.Workdir)
	if err != nil {
		return err
	}
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	return a.initComponents(cfg)
}

// initComponents wires the billing engine over an already opened database.
// Split from Init so tests can run the full engine against an in-memory
// store without touching the logger or workdir.
func (a *Application) initComponents(cfg *config.AppConfig) error {
	a.bus = EventBus.New()

	a.catalogRepo = catalog.NewGormRepository(a.gormDB)
	a.ledgerRepo = ledger.NewGormRepository(a.gormDB)
	a.reorderer = catalog.NewReorderer(a.gormDB)

	a.sessions = billing.NewManager(cfg.Billing.Customers, a.bus)

	a.monitor = scale.NewMonitor(scale.SimReader{})
	a.selector = billing.NewSelector(a.sessions, a.monitor, a.bus)

	renderer, err := billing.NewReceiptRenderer(billing.ReceiptLayout{
		Width:      cfg.Billing.ReceiptWidth,
		NameWidth:  cfg.Billing.ReceiptNameWidth,
		PriceWidth: cfg.Billing.ReceiptPriceWidth,
		QtyWidth:   cfg.Billing.ReceiptQtyWidth,
		AmtWidth:   cfg.Billing.ReceiptAmtWidth,
	})
	if err != nil {
		return err
	}
	a.renderer = renderer

	a.committer = billing.NewCommitter(
		a.gormDB,
		a.sessions,
		a.catalogRepo,
		a.ledgerRepo,
		a.renderer,
		printer.LogSink{},
		a.bus,
		billing.Options{
			AllowEmptyCommit: cfg.Billing.AllowEmptyCommit,
			StrictResolve:    cfg.Billing.StrictResolve,
		},
	)

	a.initJob()
	return nil
}

func (a *Application) initLogger(cfg *config.AppConfig) {
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}
		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}
	zap.ReplaceGlobals(logger)
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEBUG_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		if err := a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	} else {
		if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	}
	return nil
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

// SetReceiptSink swaps the receipt device, e.g. for the physical driver.
func (a *Application) SetReceiptSink(sink billing.ReceiptSink) {
	cfg := a.appConfig
	a.committer = billing.NewCommitter(
		a.gormDB, a.sessions, a.catalogRepo, a.ledgerRepo,
		a.renderer, sink, a.bus,
		billing.Options{
			AllowEmptyCommit: cfg.Billing.AllowEmptyCommit,
			StrictResolve:    cfg.Billing.StrictResolve,
		},
	)
}

// StartBackgroundJobs starts the scheduler and, when enabled, the scale
// monitor.
func (a *Application) StartBackgroundJobs(ctx context.Context) {
	a.sched.Start()
	if a.appConfig.Scale.Enabled {
		a.monitor.Start(ctx, a.appConfig.Scale.Interval())
	}
}

// Release releases application resources.
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.monitor != nil {
		a.monitor.Stop()
	}
	_ = zap.L().Sync()
}
