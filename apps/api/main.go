package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/girgism/khedma/apps/api/echo"
	"github.com/girgism/khedma/core"
	"github.com/girgism/khedma/core/attendance"
	"github.com/girgism/khedma/core/notification"
	"github.com/girgism/khedma/core/school"
	"github.com/girgism/khedma/core/user"
	emailsvc "github.com/girgism/khedma/services/email"
	logsvc "github.com/girgism/khedma/services/logger"
	"github.com/girgism/khedma/storage/kvdb"
)

func main() {
	std := log.New(os.Stdout, "KHEDMA-API : ", log.LstdFlags|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, core.Conf)
	logger.Enable(!(core.Conf.Debug || core.Conf.TestMode))

	if err := run(logger); err != nil {
		logger.Fatal("server error", err)
	}
}

func run(logger core.Logger) error {
	// set up the store
	db, err := kvdb.Open(core.Conf.Storage.Dir)
	if err != nil {
		return err
	}
	defer db.Close()

	// another process (the admin CLI) may rewrite a collection under us
	for _, key := range []string{"users", "levels", "classes", "children", "servants", "attendance_records", "points_settings", "notifications"} {
		key := key
		db.Watch(key, func() { logger.Info("external change detected on collection: " + key) })
	}

	usrRepo := kvdb.NewUserRepository(db)
	schRepo := kvdb.NewSchoolRepository(db)
	attRepo := kvdb.NewAttendanceRepository(db)
	notifRepo := kvdb.NewNotificationRepository(db)

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	usrSvc := user.NewService(usrRepo, mailSvc)
	schSvc := school.NewService(schRepo)
	attSvc := attendance.NewService(attRepo, schRepo)
	notifSvc := notification.NewService(notifRepo, usrRepo, mailSvc)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Address:         core.Conf.Server.Address(),
			Logger:          logger,
			UserSvc:         usrSvc,
			SchoolSvc:       schSvc,
			AttendanceSvc:   attSvc,
			NotificationSvc: notifSvc,
			Revision:        db.Revision,
		},
	)

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errc:
		return err
	case sig := <-quit:
		logger.Info("shutting down on signal: " + sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Stop(ctx)
}
