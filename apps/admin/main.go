package main

import (
	"log"
	"os"

	"github.com/tradelore/tradelore/core"
	"github.com/tradelore/tradelore/core/notification"
	"github.com/tradelore/tradelore/core/user"
	emailsvc "github.com/tradelore/tradelore/services/email"
	"github.com/tradelore/tradelore/storage/database"
	sqlxrepos "github.com/tradelore/tradelore/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	usrRepo := sqlxrepos.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo, emailsvc.NewConsoleService())

	// announcements are stored only; connected clients pick them up on
	// their next fetch
	notifSvc := notification.NewService(sqlxrepos.NewNotificationRepository(db), nil, usrSvc, nopLogger{})

	// start CLI
	cli := commandLine{
		db:       db.DB,
		usrRepo:  usrRepo,
		notifSvc: notifSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

type nopLogger struct{}

func (nopLogger) Warn(string, ...interface{}) {}
