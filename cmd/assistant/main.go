package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nany306/bunny-assistant/internal/bot"
	"github.com/nany306/bunny-assistant/internal/config"
	"github.com/nany306/bunny-assistant/internal/repository"
	"github.com/nany306/bunny-assistant/internal/server"
	"github.com/nany306/bunny-assistant/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db, cfg.IDMode)
	transactionRepo := repository.NewTransactionRepository(db)

	plannerSvc := service.NewPlannerService(eventRepo)
	ledgerSvc := service.NewLedgerService(transactionRepo)
	reminderSvc := service.NewReminderService(eventRepo, transactionRepo)

	if err := plannerSvc.Seed(ctx, time.Now()); err != nil {
		log.Printf("seed: %v", err)
	}

	api := server.New()
	go func() {
		log.Printf("[info] http api listening on %s", cfg.HTTPAddr)
		if err := api.Run(cfg.HTTPAddr); err != nil {
			log.Fatalf("http: %v", err)
		}
	}()

	if cfg.TelegramToken == "" {
		log.Println("[info] TELEGRAM_TOKEN not set, bot disabled")
		<-ctx.Done()
		log.Println("Shutdown complete.")
		return
	}

	telegramBot, err := bot.New(cfg.TelegramToken, userRepo, plannerSvc, ledgerSvc, reminderSvc)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	scheduler := service.NewSchedulerService(time.Local)
	report := func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := telegramBot.SendDailyReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("report: %v", err)
		}
	}
	scheduled := false
	if cfg.ReportTime != "" {
		if _, err := scheduler.ScheduleDaily(cfg.ReportTime, report); err != nil {
			log.Fatalf("schedule daily report: %v", err)
		}
		scheduled = true
	} else if cfg.ReportInterval > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.ReportInterval, report); err != nil {
			log.Fatalf("schedule reports: %v", err)
		}
		scheduled = true
	}
	if scheduled {
		scheduler.Start()
		defer scheduler.Stop()
	}

	log.Println("Assistant started.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
