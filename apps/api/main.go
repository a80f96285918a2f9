package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/tradelore/tradelore/apps/api/echo"
	"github.com/tradelore/tradelore/core"
	"github.com/tradelore/tradelore/core/activity"
	"github.com/tradelore/tradelore/core/audit"
	"github.com/tradelore/tradelore/core/notification"
	"github.com/tradelore/tradelore/core/resource"
	"github.com/tradelore/tradelore/core/user"
	emailsvc "github.com/tradelore/tradelore/services/email"
	logsvc "github.com/tradelore/tradelore/services/logger"
	"github.com/tradelore/tradelore/services/realtime"
	storagesvc "github.com/tradelore/tradelore/services/storage"
	"github.com/tradelore/tradelore/storage/database"
	sqlxrepos "github.com/tradelore/tradelore/storage/database/sqlx"
)

const shutdownTimeout = 20 * time.Second

func main() {
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	// set up DB
	if err := database.CreateIfNotExist(core.Conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(core.Conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error(fmt.Sprintf("closing database: %v", err), err)
		}
	}()
	if err = database.Migrate(db.DB); err != nil {
		logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	var fileStore core.FileStore
	if core.Conf.Storage.Provider == "s3" {
		fileStore, err = storagesvc.NewS3Store(core.Conf)
	} else {
		fileStore, err = storagesvc.NewLocalStore(core.Conf)
	}
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up file store: %v", err), err)
	}

	var broker notification.Broker
	if rb, err := realtime.NewRedisBroker(core.Conf, logger); err != nil {
		if !core.Conf.Debug {
			logger.Fatal(fmt.Sprintf("connecting to redis: %v", err), err)
		}
		logger.Warn(fmt.Sprintf("redis unavailable, falling back to in-process broker: %v", err))
		broker = realtime.NewInProcBroker()
	} else {
		broker = rb
	}

	auditSvc := audit.NewService(sqlxrepos.NewAuditRepository(db), logger)
	usrSvc := user.NewService(sqlxrepos.NewUserRepository(db), mailSvc)
	resourceSvc := resource.NewService(sqlxrepos.NewResourceRepository(db), auditSvc)
	activitySvc := activity.NewService(sqlxrepos.NewActivityRepository(db))
	notifSvc := notification.NewService(sqlxrepos.NewNotificationRepository(db), broker, usrSvc, logger)

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Address:         core.Conf.Server.Address(),
		Logger:          logger,
		FileStore:       fileStore,
		UserSvc:         usrSvc,
		ResourceSvc:     resourceSvc,
		ActivitySvc:     activitySvc,
		NotificationSvc: notifSvc,
		AuditSvc:        auditSvc,
		SignalShutdown:  func() { shutdown <- syscall.SIGTERM },
	})
	go server.Start()

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = server.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}
