package main

import (
	"context"
	"expvar"
	"fmt"
	"io"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	echoapi "github.com/escolaware/horario/apps/api/echo"
	"github.com/escolaware/horario/core"
	"github.com/escolaware/horario/core/audit"
	"github.com/escolaware/horario/core/schedule"
	"github.com/escolaware/horario/core/snapshot"
	"github.com/escolaware/horario/core/user"
	logsvc "github.com/escolaware/horario/services/logger"
	"github.com/escolaware/horario/storage/database"
	pgrepos "github.com/escolaware/horario/storage/database/postgres"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers; stdout plus a rotating file
	logOut := io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   "log/api.log",
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	})
	logger := logsvc.NewRollbarLogger(
		log.New(logOut, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.PrepareDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Fatal("Failed to close DB", err)
		}
	}()

	// slot layout
	layout, err := schedule.LoadLayout(conf.LayoutFile)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading slot layout: %v", err), err)
	}

	// set up services
	usrSvc := user.NewService(pgrepos.NewUserRepository(db))
	auditSvc := audit.NewService(pgrepos.NewAuditRepository(db))
	schedSvc := schedule.NewService(pgrepos.NewScheduleRepository(db), auditSvc, layout)
	snapSvc := snapshot.NewService(pgrepos.NewSnapshotRepository(db), auditSvc, layout)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:        conf,
		Logger:      logger,
		UserSvc:     usrSvc,
		ScheduleSvc: schedSvc,
		AuditSvc:    auditSvc,
		SnapshotSvc: snapSvc,
	})

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shut down and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
